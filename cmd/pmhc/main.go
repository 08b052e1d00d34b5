/*
 * main.go, part of gopmhc.
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

//pmhc builds libraries of peptide/MHC templates from IMGT structures, and
//chooses templates from them to model new peptide/MHC complexes.
//
//Usage:
//
//	pmhc clean [flags] [ID...]
//	pmhc select [flags] targets-file
//	pmhc stats [flags]
//	pmhc add [flags] ID cleaned-pdb
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/clean"
	"github.com/rmera/gopmhc/libplot"
	"github.com/rmera/gopmhc/library"
	"github.com/rmera/gopmhc/modeling"
	"github.com/rmera/gopmhc/selector"
	"github.com/rmera/gopmhc/targets"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s clean|select|stats|add [flags] [args]\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "Use %s <command> -h for the flags of each command.\n", filepath.Base(os.Args[0]))
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "clean":
		err = cleanCmd(os.Args[2:])
	case "select":
		err = selectCmd(os.Args[2:])
	case "stats":
		err = statsCmd(os.Args[2:])
	case "add":
		err = addCmd(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func parseClass(s string) pmhc.Class {
	c, err := pmhc.ParseClass(s)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

//openLibrary loads the library in name, or returns an empty one if the file doesn't exist.
func openLibrary(name string) (*library.Library, error) {
	if _, err := os.Stat(name); os.IsNotExist(err) {
		return library.New(), nil
	}
	return library.LoadFile(name)
}

func cleanCmd(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	class := fs.String("class", "I", "MHC class of the structures, I or II.")
	O := clean.DefaultOptions(pmhc.ClassI)
	fs.StringVar(&O.InDir, "in", O.InDir, "Directory with the raw structures.")
	fs.StringVar(&O.OutDir, "out", O.OutDir, "Directory for the cleaned structures.")
	fs.StringVar(&O.BadDir, "bad", O.BadDir, "Directory for copies of the rejected structures.\nEmpty means no copies.")
	fs.StringVar(&O.LogDir, "logdir", O.LogDir, "Directory for the rejection log.")
	fs.StringVar(&O.Prefix, "prefix", O.Prefix, "Prefix of the raw structure file names.")
	fs.StringVar(&O.Suffix, "suffix", O.Suffix, "Suffix of the raw structure file names.")
	fs.IntVar(&O.Workers, "workers", O.Workers, "Number of structures cleaned at the same time.")
	fs.BoolVar(&O.Verbose, "v", false, "Print what is being done.")
	libname := fs.String("lib", "pmhc_library.json.zst", "Library file. Templates are added to it if it exists.")
	fasta := fs.String("fasta", "", "If given, write the receptor sequences of the library to this FASTA file.")
	canonical := fs.Bool("canonical-anchors", false, "Give canonical anchors to the templates without anchors.")
	fs.Parse(args)
	O.Class = parseClass(*class)
	lib, err := openLibrary(*libname)
	if err != nil {
		return err
	}
	ids := fs.Args()
	if len(ids) == 0 {
		ids, err = clean.Discover(O.InDir, O.Prefix, O.Suffix)
		if err != nil {
			return err
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	C := clean.New(O, lib)
	R := C.Batch(ctx, ids)
	log.Printf("Class %v: %v. Rejections logged to %s", O.Class, R, C.Log().Name())
	if *canonical {
		n, failed := lib.FillAnchors(modeling.Canonical{})
		log.Printf("Canonical anchors given to %d templates", n)
		for id, err := range failed {
			log.Printf("No anchors for %s: %v", id, err)
		}
	}
	if err := lib.SaveFile(*libname); err != nil {
		return err
	}
	if *fasta != "" {
		f, err := os.Create(*fasta)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := lib.WriteFASTA(f); err != nil {
			return err
		}
		return f.Close()
	}
	return nil
}

func selectCmd(args []string) error {
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	class := fs.String("class", "I", "MHC class of the targets, I or II.")
	libname := fs.String("lib", "pmhc_library.json.zst", "Library file.")
	sO := selector.DefaultOptions()
	fs.IntVar(&sO.BestN, "n", sO.BestN, "Number of templates to report for each target.")
	fs.BoolVar(&sO.ExcludeSelf, "exclude-self", false, "Don't use templates with the same ID as the target.")
	tO := targets.DefaultOptions(pmhc.ClassI)
	delim := fs.String("delim", "\t", "Field delimiter of the targets file.")
	fs.BoolVar(&tO.Header, "header", tO.Header, "The targets file has a header line.")
	fs.IntVar(&tO.Peptide, "pepcol", tO.Peptide, "Column of the peptides, from 0.")
	fs.IntVar(&tO.Alleles, "allelecol", tO.Alleles, "Column of the alleles (';'-separated). -1 for none.")
	fs.IntVar(&tO.Anchors, "anchorcol", tO.Anchors, "Column of the anchors (','-separated). -1 for none.")
	fs.IntVar(&tO.ID, "idcol", tO.ID, "Column of the target IDs. -1 for none.")
	fs.IntVar(&tO.Heavy, "heavycol", tO.Heavy, "Column of the heavy (alpha) chain sequences. -1 for none.")
	fs.IntVar(&tO.Light, "lightcol", tO.Light, "Column of the beta chain sequences (class II). -1 for none.")
	canonical := fs.Bool("canonical-anchors", false, "Give canonical anchors to targets without anchors.")
	jobs := fs.String("jobs", "", "If given, write the modeling input for the best template of each target in this directory.")
	plots := fs.String("plots", "", "If given, plot the scores of the templates of each target to <plots>_<ID>.png.")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	tO.Class = parseClass(*class)
	if d := []rune(*delim); len(d) == 1 {
		tO.Delimiter = d[0]
	} else if *delim == `\t` {
		tO.Delimiter = '\t'
	} else {
		return fmt.Errorf("select: bad delimiter %q", *delim)
	}
	lib, err := library.LoadFile(*libname)
	if err != nil {
		return err
	}
	snap := lib.Snapshot()
	ts, err := targets.ReadFile(fs.Arg(0), tO)
	if err != nil {
		return err
	}
	for _, T := range ts {
		if *canonical {
			if err := modeling.ResolveAnchors(T, modeling.Canonical{}); err != nil {
				log.Printf("%v", err)
			}
		}
		R, err := selector.FindTemplate(T, snap, sO)
		if err != nil {
			log.Printf("%v", err)
			continue
		}
		names := make([]string, 0, len(R.Ranked))
		for _, c := range R.Ranked {
			names = append(names, fmt.Sprintf("%s(%.1f)", c.Template.ID, c.Score))
		}
		fmt.Printf("%s\t%s\t%s\tself-match:%v\n", T.ID, T.Peptide, strings.Join(names, " "), R.SelfMatch)
		if *plots != "" {
			if err := libplot.Scores(R, "Templates for "+T.ID, *plots+"_"+T.ID+".png"); err != nil {
				log.Printf("%v", err)
			}
		}
		if *jobs == "" {
			continue
		}
		J, err := modeling.Prepare(T, R.Best().Template, nil)
		if err != nil {
			log.Printf("%v", err)
			continue
		}
		dir, err := J.Write(*jobs)
		if err != nil {
			return err
		}
		log.Printf("Job %s for %s written to %s", J.ID, T.ID, dir)
	}
	return nil
}

func statsCmd(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	libname := fs.String("lib", "pmhc_library.json.zst", "Library file.")
	plots := fs.String("plots", "", "If given, plot peptide lengths and resolutions to <plots>_<class>_{length,resolution}.png.")
	fs.Parse(args)
	lib, err := library.LoadFile(*libname)
	if err != nil {
		return err
	}
	snap := lib.Snapshot()
	for _, c := range []pmhc.Class{pmhc.ClassI, pmhc.ClassII} {
		if len(snap.Templates(c)) == 0 {
			continue
		}
		fmt.Println(snap.Stats(c))
		if *plots == "" {
			continue
		}
		base := fmt.Sprintf("%s_%v_", *plots, c)
		if err := libplot.PeptideLengths(snap, c, base+"length.png"); err != nil {
			log.Printf("%v", err)
		}
		if err := libplot.Resolutions(snap, c, base+"resolution.png"); err != nil {
			log.Printf("%v", err)
		}
	}
	return nil
}

//addCmd puts an already cleaned structure in the library.
func addCmd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	class := fs.String("class", "I", "MHC class of the structure, I or II.")
	libname := fs.String("lib", "pmhc_library.json.zst", "Library file. It is created if it doesn't exist.")
	alleles := fs.String("alleles", "", "Alleles of the structure, ';'-separated.")
	anchors := fs.String("anchors", "", "Anchor positions in the peptide, ','-separated, from 1.")
	fs.Parse(args)
	if fs.NArg() != 2 || *alleles == "" {
		fs.Usage()
		os.Exit(2)
	}
	var anch []int
	for _, v := range strings.Split(*anchors, ",") {
		if strings.TrimSpace(v) == "" {
			continue
		}
		a, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("bad anchor %q: %w", v, err)
		}
		anch = append(anch, a)
	}
	lib, err := openLibrary(*libname)
	if err != nil {
		return err
	}
	if err := lib.AddStructure(fs.Arg(0), parseClass(*class), strings.Split(*alleles, ";"), fs.Arg(1), anch); err != nil {
		return err
	}
	return lib.SaveFile(*libname)
}
