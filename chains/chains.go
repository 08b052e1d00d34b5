/*
 * chains.go, part of gopmhc.
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

//Package chains tells which chains of a peptide/MHC structure are the peptide
//and the receptor.
package chains

import (
	"fmt"
	"sort"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/contacts"
)

//Options for the chain classification.
type Options struct {
	MinPeptideLen  int //the peptide must be strictly longer than this
	MaxPeptideLen  int //and strictly shorter than this
	MinReceptorLen int //receptor chains must be strictly longer than this
	Cutoff         float64
	//If not empty, only these chains can be receptor chains.
	Allowed []string
}

//DefaultOptions returns the default options for chain classification.
func DefaultOptions() *Options {
	return &Options{MinPeptideLen: 6, MaxPeptideLen: 26, MinReceptorLen: 120, Cutoff: contacts.DefaultCutoff}
}

//FindPeptideChain returns the ID of the first chain (in file order) with more than minLen and
//less than maxLen residues, and no hetero residues other than water. When several
//chains qualify, they are most likely copies of the same peptide, so the first one is as good as any.
func FindPeptideChain(S *pmhc.Structure, minLen, maxLen int) (string, error) {
	for _, c := range S.Chains {
		if c.Len() > minLen && c.Len() < maxLen && !c.HasHeteroResidues() {
			return c.ID, nil
		}
	}
	return "", pmhc.NewError(pmhc.AmbiguousStructure, S.ID, "Could not find a suitable peptide chain")
}

//FindReceptorChains returns the receptor chains in contact with the peptide chain pep,
//followed by pep. For class I that is [heavy, pep], with the heavy chain being the
//chain with the most contacts with the peptide. For class II it is [alpha, beta, pep], the two
//chains with most contacts, sorted by ID. Chains with the same number of contacts are taken in the order they appear
//in the structure.
func FindReceptorChains(S *pmhc.Structure, pep string, class pmhc.Class, O *Options) ([]string, error) {
	if O == nil {
		O = DefaultOptions()
	}
	pc := S.Chain(pep)
	if pc == nil {
		return nil, pmhc.NewError(pmhc.AmbiguousStructure, S.ID, fmt.Sprintf("no peptide chain %q", pep))
	}
	nums := make([]int, 0, pc.Len())
	for _, r := range pc.Residues {
		nums = append(nums, r.Num)
	}
	partners := contacts.Partners(contacts.AnchorContacts(S, O.Cutoff, pep, nums), pep)
	cands := Rank(S, partners, pep, O)
	var need int
	switch class {
	case pmhc.ClassI:
		need = 1
	case pmhc.ClassII:
		need = 2
	default:
		return nil, pmhc.NewError(pmhc.MalformedInput, S.ID, fmt.Sprintf("unknown MHC class %v", class))
	}
	if len(cands) < need {
		return nil, pmhc.NewError(pmhc.AmbiguousStructure, S.ID, fmt.Sprintf("Could not locate Alpha chain: %d receptor chain(s) in contact with the peptide, %d needed", len(cands), need))
	}
	ret := append([]string(nil), cands[:need]...)
	sort.Strings(ret)
	return append(ret, pep), nil
}

//Rank returns the ids of the chains in partners (chain id to number of contacts) that
//could be receptor chains according to O, sorted by decreasing contact count.
//The order of the chains in S breaks ties.
func Rank(S *pmhc.Structure, partners map[string]int, pep string, O *Options) []string {
	var ret []string
	for _, c := range S.Chains {
		if c.ID == pep || partners[c.ID] == 0 || c.Len() <= O.MinReceptorLen || isInString(ret, c.ID) {
			continue
		}
		if len(O.Allowed) > 0 && !isInString(O.Allowed, c.ID) {
			continue
		}
		ret = append(ret, c.ID)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return partners[ret[i]] > partners[ret[j]]
	})
	return ret
}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
