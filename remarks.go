/*
 * remarks.go, part of gopmhc.
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

import (
	"strconv"
	"strings"
)

//IMGT chain descriptions, as given in REMARK 410 records.
const (
	ClassIAlpha  = "I-ALPHA"
	ClassIIAlpha = "II-ALPHA"
	ClassIIBeta  = "II-BETA"
)

//AlleleHit is one allele assigned by IMGT to a G-domain of a chain, with
//its percentage of identity.
type AlleleHit struct {
	Domain   string //G-ALPHA1, G-ALPHA2, G-ALPHA or G-BETA
	Genus    string
	Species  string
	Name     string
	Identity float64
}

//IMGTChain is the REMARK 410 block for one chain.
type IMGTChain struct {
	ID          string
	Description string //I-ALPHA, II-ALPHA, II-BETA, or whatever IMGT says.
	Alleles     []AlleleHit
	rows        [][]string
}

//remark410Rows returns the REMARK 410 lines in header, split in fields, without
//the "REMARK 410" part. Empty rows are dropped.
func remark410Rows(header []string) [][]string {
	var rows [][]string
	for _, line := range header {
		if !strings.HasPrefix(line, "REMARK 410") {
			continue
		}
		row := strings.Fields(line)
		if len(row) <= 2 {
			continue
		}
		rows = append(rows, row[2:])
	}
	return rows
}

//IMGTChains parses the REMARK 410 lines in header into one block per chain,
//in the order in which they appear. Each block starts with a
//"Chain ID 1AO7_A (1AO7A)" line. Rows before the first of those are ignored.
func IMGTChains(header []string) []*IMGTChain {
	var ret []*IMGTChain
	var current *IMGTChain
	for _, row := range remark410Rows(header) {
		if len(row) == 4 && row[0] == "Chain" && row[1] == "ID" {
			id := row[2][len(row[2])-1:]
			current = nil
			for _, v := range ret { //a second block for the same chain replaces the first one
				if v.ID == id {
					current = v
					current.rows = nil
				}
			}
			if current == nil {
				current = &IMGTChain{ID: id}
				ret = append(ret, current)
			}
			current.rows = append(current.rows, row)
			continue
		}
		if current != nil {
			current.rows = append(current.rows, row)
		}
	}
	for _, v := range ret {
		if len(v.rows) > 1 && len(v.rows[1]) > 3 {
			v.Description = v.rows[1][3]
		}
		v.Alleles = domainAlleles(v.rows)
	}
	return ret
}

//domainAlleles collects the "gene and allele" rows that follow a
//"G-DOMAIN IMGT domain description G-..." row. Any other G-DOMAIN row ends the domain.
func domainAlleles(rows [][]string) []AlleleHit {
	var ret []AlleleHit
	key := ""
	for _, row := range rows {
		if len(row) < 5 || row[0] != "G-DOMAIN" {
			continue
		}
		if row[3] == "description" && strings.HasPrefix(row[4], "G-") {
			key = row[4]
			continue
		}
		if key == "" {
			continue
		}
		if row[2] != "gene" || row[3] != "and" || row[4] != "allele" {
			key = ""
			continue
		}
		//Allele info always comes in groups of 4: genus, species, allele, percentage.
		fields := row[5:]
		for b := 0; b+3 < len(fields); b += 4 {
			perc := strings.NewReplacer("(", "", "%)", "", ",", "").Replace(fields[b+3])
			ident, err := strconv.ParseFloat(perc, 64)
			if err != nil {
				ident = 0
			}
			ret = append(ret, AlleleHit{Domain: key, Genus: fields[b], Species: fields[b+1], Name: strings.TrimSuffix(fields[b+2], ","), Identity: ident})
		}
	}
	return ret
}

//AlleleNames returns the names of the alleles of the chain in the given domains (all domains if
//none is given), without repetitions, in the order they first appear.
func (I *IMGTChain) AlleleNames(domains ...string) []string {
	var ret []string
	for _, v := range I.Alleles {
		if len(domains) > 0 && !isInString(domains, v.Domain) {
			continue
		}
		if !isInString(ret, v.Name) {
			ret = append(ret, v.Name)
		}
	}
	return ret
}

//IMGTChainsByDescription returns the blocks in chains with the given description.
func IMGTChainsByDescription(chains []*IMGTChain, desc string) []*IMGTChain {
	var ret []*IMGTChain
	for _, v := range chains {
		if v.Description == desc {
			ret = append(ret, v)
		}
	}
	return ret
}

//PeptideRange is a peptide fused to another chain, according to the IMGT remarks.
//Start and End are the residue numbers, both included.
type PeptideRange struct {
	Chain      string
	Start, End int
}

//FusedPeptides returns the peptides that the REMARK 410 lines in header annotate as part of
//another chain, as in "[PEPTIDE(1-27)[D1]". Chains are given in the order of their blocks.
func FusedPeptides(header []string) []PeptideRange {
	var ret []PeptideRange
	for _, c := range IMGTChains(header) {
		for _, row := range c.rows {
			joined := strings.Join(row, "")
			if !strings.Contains(joined, "PEPTIDE(") && !strings.Contains(joined, "[PEPTIDE") {
				continue
			}
			open := strings.Index(joined, "(")
			if open < 0 {
				continue
			}
			rest := joined[open+1:]
			cl := strings.Index(rest, ")")
			if cl < 0 {
				continue
			}
			lims := strings.Split(rest[:cl], "-")
			if len(lims) != 2 {
				continue
			}
			s, err1 := strconv.Atoi(lims[0])
			e, err2 := strconv.Atoi(lims[1])
			if err1 != nil || err2 != nil {
				continue
			}
			pr := PeptideRange{Chain: c.ID, Start: s, End: e}
			//the last annotation for a chain wins.
			if n := len(ret); n > 0 && ret[n-1].Chain == c.ID {
				ret[n-1] = pr
			} else {
				ret = append(ret, pr)
			}
		}
	}
	return ret
}

//Resolution returns the resolution in A given in the "REMARK   2 RESOLUTION." line of the
//header, or 0 if there is no such line or it can't be read (e.g. "NOT APPLICABLE").
func Resolution(header []string) float64 {
	for _, line := range header {
		if !strings.HasPrefix(line, "REMARK   2") || !strings.Contains(line, "RESOLUTION.") {
			continue
		}
		f := strings.Fields(line[strings.Index(line, "RESOLUTION.")+len("RESOLUTION."):])
		if len(f) == 0 {
			continue
		}
		r, err := strconv.ParseFloat(f[0], 64)
		if err != nil {
			return 0
		}
		return r
	}
	return 0
}
