/*
 * stats.go, part of gopmhc.
 *
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

package library

import (
	"fmt"
	"sort"
	"strings"

	pmhc "github.com/rmera/gopmhc"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Histogram is a histogram with arbitrary bins.
type Histogram struct {
	normalized bool
	total      int
	Dividers   []float64
	Counts     []float64
}

//NewHistogram returns a new histogram from the dividers and rawdata given.
//Values outside the dividers are left out. rawdata is not modified.
func NewHistogram(dividers []float64, rawdata []float64) *Histogram {
	H := &Histogram{Dividers: append([]float64(nil), dividers...)}
	data := append([]float64(nil), rawdata...)
	sort.Float64s(data)
	//stat.Histogram just panics instead of omitting the values that are off limits
	//so we remove them here before the call.
	maxi := sort.SearchFloat64s(data, dividers[len(dividers)-1])
	mini := sort.SearchFloat64s(data, dividers[0])
	data = data[mini:maxi]
	H.total = len(data)
	H.Counts = stat.Histogram(nil, H.Dividers, data, nil)
	return H
}

//Total returns the number of data points in the histogram.
func (H *Histogram) Total() int {
	return H.total
}

//Normalize divides every count by the number of data points.
func (H *Histogram) Normalize() {
	if H.total <= 0 || H.normalized {
		return
	}
	floats.Scale(1/float64(H.total), H.Counts)
	H.normalized = true
}

//String prints a -hopefully- pretty string representation of
//the histogram, in 2 lines.
func (H *Histogram) String() string {
	d := make([]string, 0, len(H.Counts))
	h := make([]string, 0, len(H.Counts))
	for i, v := range H.Counts {
		d = append(d, fmt.Sprintf("%5.1f-%5.1f", H.Dividers[i], H.Dividers[i+1]))
		h = append(h, fmt.Sprintf("%11.3f", v))
	}
	return fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

//Stats summarizes the templates of one class.
type Stats struct {
	Class          pmhc.Class
	Templates      int
	Alleles        int
	WithAnchors    int
	PeptideLenMean float64
	PeptideLenStd  float64
	ResolutionMean float64 //only structures with known resolution count
	ResolutionMed  float64
	PeptideLengths *Histogram //one bin per length, from 7 to 25
}

//PeptideLengths returns the lengths of the peptides of the class c templates.
func (S *Snapshot) PeptideLengths(c pmhc.Class) []float64 {
	var ret []float64
	for _, t := range S.Templates(c) {
		ret = append(ret, float64(len(t.Peptide)))
	}
	return ret
}

//Resolutions returns the resolutions of the class c templates. Unknown (0) resolutions are left out.
func (S *Snapshot) Resolutions(c pmhc.Class) []float64 {
	var ret []float64
	for _, t := range S.Templates(c) {
		if t.Resolution > 0 {
			ret = append(ret, t.Resolution)
		}
	}
	return ret
}

//Stats returns some statistics for the class c templates in the snapshot.
func (S *Snapshot) Stats(c pmhc.Class) *Stats {
	ret := &Stats{Class: c, Templates: len(S.Templates(c)), Alleles: len(S.Alleles(c))}
	for _, t := range S.Templates(c) {
		if t.HasAnchors() {
			ret.WithAnchors++
		}
	}
	lens := S.PeptideLengths(c)
	switch {
	case len(lens) > 1:
		ret.PeptideLenMean, ret.PeptideLenStd = stat.MeanStdDev(lens, nil)
	case len(lens) == 1:
		ret.PeptideLenMean = lens[0]
	}
	res := S.Resolutions(c)
	if len(res) > 0 {
		sort.Float64s(res)
		ret.ResolutionMean = stat.Mean(res, nil)
		ret.ResolutionMed = stat.Quantile(0.5, stat.Empirical, res, nil)
	}
	dividers := make([]float64, 0, 20)
	for l := 7; l <= 26; l++ {
		dividers = append(dividers, float64(l)-0.5)
	}
	ret.PeptideLengths = NewHistogram(dividers, lens)
	return ret
}

//String returns a human-readable summary.
func (S *Stats) String() string {
	return fmt.Sprintf("MHC class %v: %d templates, %d alleles, %d with anchors\npeptide length: %.2f +/- %.2f\nresolution: mean %.2f A, median %.2f A\n%s",
		S.Class, S.Templates, S.Alleles, S.WithAnchors, S.PeptideLenMean, S.PeptideLenStd, S.ResolutionMean, S.ResolutionMed, S.PeptideLengths)
}
