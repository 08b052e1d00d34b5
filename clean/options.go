/*
 * options.go, part of gopmhc.
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

package clean

import (
	"log"
	"path/filepath"
	"runtime"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/chains"
)

//Options for the cleaning of structures.
type Options struct {
	Class  pmhc.Class
	InDir  string
	OutDir string //cleaned structures go here
	BadDir string //rejected structures are copied here, uncompressed. Empty means no copy.
	LogDir string //the rejection log goes here
	Prefix string //the source for ID is InDir/Prefix+ID+Suffix
	Suffix string
	//Workers is the number of goroutines used by Batch.
	Workers int
	Verbose bool
	Logger  *log.Logger
	Chains  *chains.Options
	//Two consecutive residues with the N of the second further than this from
	//the CA of the first are not bonded.
	GapThreshold float64
	//Only atoms closer than GrooveSearch are considered in the binding groove check.
	GrooveSearch float64
	//A ligand closer than this to the peptide CAs can be in the groove.
	GrooveJunkDist float64
	//Anchors known for some IDs. They are put in the templates, if valid.
	Anchors map[string][]int
}

//DefaultOptions returns the default options for cleaning structures of the
//given class, as downloaded from IMGT/3Dstructure-DB.
func DefaultOptions(class pmhc.Class) *Options {
	r := new(Options)
	r.Class = class
	r.InDir = "."
	r.OutDir = "."
	r.LogDir = "."
	r.Prefix = "IMGT-"
	r.Suffix = ".pdb.gz"
	r.Workers = runtime.NumCPU() //all available CPUs
	r.Logger = log.Default()
	r.Chains = chains.DefaultOptions()
	r.GapThreshold = 3.0
	r.GrooveSearch = 18
	r.GrooveJunkDist = 6
	return r
}

//Source returns the name of the raw file for the structure id.
func (O *Options) Source(id string) string {
	return filepath.Join(O.InDir, O.Prefix+id+O.Suffix)
}

//LogName returns the name of the rejection log for the class in O.
func (O *Options) LogName() string {
	return filepath.Join(O.LogDir, "log_MHC"+O.Class.String()+".csv")
}

func (O *Options) logger() *log.Logger {
	if O.Logger == nil {
		return log.Default()
	}
	return O.Logger
}
