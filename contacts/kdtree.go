/*
 * kdtree.go, part of gopmhc.
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

package contacts

import (
	pmhc "github.com/rmera/gopmhc"
	"gonum.org/v1/gonum/spatial/kdtree"
)

//site is an atom in the k-d tree.
type site struct {
	pos     [3]float64
	idx     int //order of the atom in the structure
	chain   int //index of the chain in the structure
	chainID string
	res     *pmhc.Residue
	atom    *pmhc.Atom
}

func (s *site) end() End {
	return End{Chain: s.chainID, ResNum: s.res.Num, ResName: s.res.Name, Atom: s.atom.Name}
}

//Compare returns the signed distance of s from the plane passing through c and
//perpendicular to the dimension d.
func (s *site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*site)
	return s.pos[d] - q.pos[d]
}

//Dims returns the number of dimensions described by the receiver.
func (s *site) Dims() int { return 3 }

//Distance returns the squared Euclidean distance between c and the receiver.
func (s *site) Distance(c kdtree.Comparable) float64 {
	q := c.(*site)
	var sum float64
	for dim, v := range s.pos {
		d := v - q.pos[dim]
		sum += d * d
	}
	return sum
}

//sites satisfies kdtree.Interface.
type sites []*site

func newSites(S *pmhc.Structure) sites {
	ret := make(sites, 0, S.Len())
	for ci, c := range S.Chains {
		for _, r := range c.Residues {
			for _, a := range r.Atoms {
				ret = append(ret, &site{
					pos:     [3]float64{a.Coord.X, a.Coord.Y, a.Coord.Z},
					idx:     len(ret),
					chain:   ci,
					chainID: c.ID,
					res:     r,
					atom:    a,
				})
			}
		}
	}
	return ret
}

func (s sites) Index(i int) kdtree.Comparable         { return s[i] }
func (s sites) Len() int                               { return len(s) }
func (s sites) Pivot(d kdtree.Dim) int                 { return plane{sites: s, Dim: d}.Pivot() }
func (s sites) Slice(start, end int) kdtree.Interface { return s[start:end] }

//plane is required to help sites.
type plane struct {
	kdtree.Dim
	sites
}

func (p plane) Less(i, j int) bool {
	return p.sites[i].pos[p.Dim] < p.sites[j].pos[p.Dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.sites[i], p.sites[j] = p.sites[j], p.sites[i]
}
