/*
 * atomicdata.go, part of gopmhc.
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

package pmhc

import "fmt"

//A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

//The 20 canonical aminoacids. SEC is not here on purpose,
//a selenocysteine in a peptide is non-canonical for our purposes.
var canonical = map[string]bool{
	"ALA": true, "CYS": true, "ASP": true, "GLU": true, "PHE": true,
	"GLY": true, "HIS": true, "ILE": true, "LYS": true, "LEU": true,
	"MET": true, "ASN": true, "PRO": true, "GLN": true, "ARG": true,
	"SER": true, "THR": true, "VAL": true, "TRP": true, "TYR": true,
}

//Water residue names as they appear in PDB files.
var waters = map[string]bool{
	"HOH": true,
	"WAT": true,
	"DOD": true,
}

//Modified describes a post-translationally (or chemically) modified residue
//that can be turned back into its canonical parent by renaming it and
//dropping the atoms the parent doesn't have.
type Modified struct {
	Parent string
	Drop   []string
}

//ModifiedResidues are the modified residues that are reverted to their
//canonical parent when cleaning a structure.
var ModifiedResidues = map[string]Modified{
	"SEP": {"SER", []string{"P", "O1P", "O2P", "O3P", "HA", "HB2", "HB3"}}, //phosphoserine
	"CSO": {"CYS", []string{"OD"}},                                          //S-hydroxycysteine
	"F2F": {"PHE", []string{"F1", "F2"}},                                    //difluorophenylalanine
}

//OneLetter returns the one-letter code for the aminoacid with the 3-letter
//name res, or 'X' if res is not an aminoacid.
func OneLetter(res string) byte {
	if c, ok := three2OneLetter[res]; ok {
		return c
	}
	return 'X'
}

//IsCanonical returns true if res is the name of one of the 20 canonical aminoacids.
func IsCanonical(res string) bool {
	return canonical[res]
}

//IsWater returns true if res is a water residue name.
func IsWater(res string) bool {
	return waters[res]
}

//This tries to guess a chemical element symbol from a PDB atom name. Mostly based on AMBER names.
//It only deals with some common bio-elements.
func symbolFromName(name string) (string, error) {
	symbol := ""
	if len(name) == 0 {
		return symbol, fmt.Errorf("Couldn't guess symbol from empty PDB name")
	}
	if len(name) == 4 || name[0] == 'H' { //I thiiink only Hs can have 4-char names in amber.
		symbol = "H"
	} else if name[0] == 'C' {
		switch name {
		case "CU":
			symbol = "Cu"
		case "CO":
			symbol = "Co"
		case "CL":
			symbol = "Cl"
		default:
			symbol = "C"
		}
	} else if name[0] == 'N' {
		if name == "NA" {
			symbol = "Na"
		} else {
			symbol = "N"
		}
	} else if name[0] == 'O' {
		symbol = "O"
	} else if name[0] == 'P' {
		symbol = "P"
	} else if name[0] == 'S' {
		if name == "SE" {
			symbol = "Se"
		} else {
			symbol = "S"
		}
	} else if name[0] == 'F' {
		symbol = "F"
	} else if len(name) > 1 && name[0:2] == "ZN" {
		symbol = "Zn"
	}
	if symbol == "" {
		return symbol, fmt.Errorf("Couldn't guess symbol from PDB name %s", name)
	}
	return symbol, nil
}
