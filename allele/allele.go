/*
 * allele.go, part of gopmhc.
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

//Package allele reduces allele names to the most specific form available in a set of alleles.
package allele

import "strings"

//Species holds the truncation lengths used for the allele names of one species,
//from the longest (most specific) to the shortest.
type Species struct {
	Name        string
	Marker      string //allele names of the species start with this
	Truncations []int
}

//Table is the list of species known to Normalize. Markers are checked in order,
//so a marker that is a prefix of another one has to come after it.
var Table = []Species{
	{"human", "HLA", []int{8, 6, 4}},     //HLA-A*02:01 -> HLA-A*02 -> HLA-A* -> HLA-
	{"mouse", "H2", []int{4, 3}},         //H2-Kb -> H2-K -> H2-
	{"rat", "RT1", []int{5, 4}},
	{"bovine", "BoLA", []int{10, 7, 5}},
	{"swine", "SLA", []int{9, 6, 4}},
	{"chicken", "MH1-B", []int{8, 6}},
	{"chicken", "MH1-N", []int{9, 6}},
	{"chicken", "BF2", []int{6, 4}},
	{"macaque", "Mamu", []int{13, 9, 5}},
	{"equine", "Eqca", []int{10, 4}},
}

//SpeciesOf returns the species entry for the allele name, and false if the name
//doesn't start with any known marker.
func SpeciesOf(name string) (Species, bool) {
	for _, v := range Table {
		if strings.HasPrefix(name, v.Marker) {
			return v, true
		}
	}
	return Species{}, false
}

//contained returns true if s is a substring of any of the available alleles.
func contained(s string, available []string) bool {
	for _, v := range available {
		if strings.Contains(v, s) {
			return true
		}
	}
	return false
}

//Normalize returns a new slice where each name is reduced to something that can be
//found (as a substring) among the available alleles. A name that can already be found
//is kept. Otherwise, the name is truncated to each of the lengths for its species, longest first, and the first
//truncation that can be found is used. If none can, the shortest truncation is used.
//Names from unknown species are kept as they are. names is not modified.
func Normalize(names []string, available []string) []string {
	ret := make([]string, 0, len(names))
	for _, name := range names {
		ret = append(ret, normalize(name, available))
	}
	return ret
}

func normalize(name string, available []string) string {
	if contained(name, available) {
		return name
	}
	sp, ok := SpeciesOf(name)
	if !ok {
		return name
	}
	for _, l := range sp.Truncations {
		if t := truncate(name, l); contained(t, available) {
			return t
		}
	}
	return truncate(name, sp.Truncations[len(sp.Truncations)-1])
}

func truncate(s string, l int) string {
	if len(s) <= l {
		return s
	}
	return s[:l]
}

//Matches returns true if the allele matches the normalized name, i.e. if
//normalized is a substring of allele.
func Matches(normalized, allele string) bool {
	return normalized != "" && strings.Contains(allele, normalized)
}

//AnyMatch returns true if any of the normalized names matches any of the alleles.
func AnyMatch(normalized, alleles []string) bool {
	for _, n := range normalized {
		for _, a := range alleles {
			if Matches(n, a) {
				return true
			}
		}
	}
	return false
}
