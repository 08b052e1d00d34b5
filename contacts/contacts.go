/*
 * contacts.go, part of gopmhc.
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

//Package contacts finds atomic contacts between the chains of a structure.
package contacts

import (
	"math"
	"sort"

	pmhc "github.com/rmera/gopmhc"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

//DefaultCutoff is the distance, in A, under which two atoms are in contact.
const DefaultCutoff = 5.0

//End is one of the atoms in a contact.
type End struct {
	Chain   string
	ResNum  int
	ResName string
	Atom    string
}

//Contact is a pair of atoms from different chains closer than some cutoff.
type Contact struct {
	A, B End
	Dist float64
}

//ChainPair is an unordered pair of chain ids. A is always the smaller one.
type ChainPair struct {
	A, B string
}

//NewChainPair returns the ChainPair for a and b.
func NewChainPair(a, b string) ChainPair {
	if b < a {
		a, b = b, a
	}
	return ChainPair{A: a, B: b}
}

//Compute returns all the contacts, at cutoff A or less, between atoms of different chains
//in the first model of S. Each pair of atoms is reported once, and A is the atom
//that comes first in the structure.
func Compute(S *pmhc.Structure, cutoff float64) []Contact {
	return compute(S, cutoff, nil)
}

//AnchorContacts is like Compute, but only returns the contacts involving the residues
//of chain pepChain numbered as in anchors. The peptide atom is always A.
func AnchorContacts(S *pmhc.Structure, cutoff float64, pepChain string, anchors []int) []Contact {
	in := func(s *site) bool {
		if s.chainID != pepChain {
			return false
		}
		for _, v := range anchors {
			if s.res.Num == v {
				return true
			}
		}
		return false
	}
	cs := compute(S, cutoff, in)
	for i, v := range cs {
		if v.A.Chain != pepChain || !isIn(anchors, v.A.ResNum) {
			cs[i].A, cs[i].B = v.B, v.A
		}
	}
	return cs
}

//ChainContacts returns the number of contacts between each pair of chains.
func ChainContacts(cs []Contact) map[ChainPair]int {
	ret := make(map[ChainPair]int)
	for _, v := range cs {
		ret[NewChainPair(v.A.Chain, v.B.Chain)]++
	}
	return ret
}

//Partners returns, for each chain in contact with chain, the number of contacts between them.
func Partners(cs []Contact, chain string) map[string]int {
	ret := make(map[string]int)
	for _, v := range cs {
		switch chain {
		case v.A.Chain:
			ret[v.B.Chain]++
		case v.B.Chain:
			ret[v.A.Chain]++
		}
	}
	return ret
}

//LowestDist returns the lowest distance between a point in test and one in clash,
//and the indexes of both points. If either set is empty, the distance is +Inf.
func LowestDist(test, clash []r3.Vec) (dist float64, indexes [2]int) {
	dist = math.Inf(1)
	for i, a1 := range test {
		for j, a2 := range clash {
			dt := r3.Norm(r3.Sub(a1, a2))
			if dt < dist {
				dist = dt
				indexes[0] = i
				indexes[1] = j
			}
		}
	}
	return
}

func compute(S *pmhc.Structure, cutoff float64, query func(*site) bool) []Contact {
	all := newSites(S)
	if len(all) == 0 {
		return nil
	}
	//The tree reorders the slice it gets, so it gets a copy.
	tree := kdtree.New(append(sites(nil), all...), false)
	type pair struct {
		a, b *site
		d2   float64
	}
	var found []pair
	for _, q := range all {
		if query != nil && !query(q) {
			continue
		}
		keeper := kdtree.NewDistKeeper(cutoff * cutoff)
		tree.NearestSet(keeper, q)
		for _, c := range keeper.Heap {
			if c.Comparable == nil { //the keeper's sentinel
				continue
			}
			n := c.Comparable.(*site)
			if n.chain == q.chain {
				continue
			}
			//a pair where both atoms are queried is found twice, we keep it only once.
			if (query == nil || query(n)) && n.idx < q.idx {
				continue
			}
			a, b := q, n
			if b.idx < a.idx {
				a, b = b, a
			}
			found = append(found, pair{a: a, b: b, d2: c.Dist})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].a.idx != found[j].a.idx {
			return found[i].a.idx < found[j].a.idx
		}
		return found[i].b.idx < found[j].b.idx
	})
	ret := make([]Contact, 0, len(found))
	for _, v := range found {
		ret = append(ret, Contact{A: v.a.end(), B: v.b.end(), Dist: math.Sqrt(v.d2)})
	}
	return ret
}

func isIn(s []int, v int) bool {
	for _, i := range s {
		if i == v {
			return true
		}
	}
	return false
}
