/*
 * libplot.go, part of gopmhc.
 *
 * Copyright 2024 The gopmhc authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

//Package libplot draws some plots of a template library and of template searches.
package libplot

import (
	"fmt"
	"image/color"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/library"
	"github.com/rmera/gopmhc/selector"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Size is the width and height of the plots.
var Size = 5 * vg.Inch

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func histPlot(data []float64, bins int, title, xlabel, plotname string) error {
	if len(data) == 0 {
		return fmt.Errorf("histPlot: no data for %q", title)
	}
	p := basicPlot(title, xlabel, "Templates")
	h, err := plotter.NewHist(plotter.Values(data), bins)
	if err != nil {
		return err
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(h)
	return p.Save(Size, Size, plotname)
}

//PeptideLengths plots a histogram of the peptide lengths of the class c templates in S to
//the file plotname. The format is taken from the extension of plotname (png, svg, pdf...).
func PeptideLengths(S *library.Snapshot, c pmhc.Class, plotname string) error {
	lens := S.PeptideLengths(c)
	min, max := 7.0, 25.0
	for _, v := range lens {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return histPlot(lens, int(max-min)+1, fmt.Sprintf("Peptide lengths, MHC class %v", c), "Length", plotname)
}

//Resolutions plots a histogram of the resolutions of the class c templates in S.
func Resolutions(S *library.Snapshot, c pmhc.Class, plotname string) error {
	return histPlot(S.Resolutions(c), 20, fmt.Sprintf("Resolution, MHC class %v", c), "Resolution (A)", plotname)
}

//Scores plots the scores of the ranked candidates of a template search as a bar chart.
//Self-matches are drawn in red.
func Scores(R *selector.Result, title, plotname string) error {
	if R == nil || len(R.Ranked) == 0 {
		return fmt.Errorf("Scores: no candidates to plot")
	}
	p := basicPlot(title, "Template", "Score")
	names := make([]string, 0, len(R.Ranked))
	for i, c := range R.Ranked {
		bar, err := plotter.NewBarChart(plotter.Values{c.Score}, vg.Points(15))
		if err != nil {
			return err
		}
		bar.XMin = float64(i) //one bar per position in the nominal axis
		bar.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
		if c.SelfMatch {
			bar.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
		}
		p.Add(bar)
		names = append(names, c.Template.ID)
	}
	p.NominalX(names...)
	return p.Save(Size, Size, plotname)
}
