/*
 * structure.go, part of gopmhc.
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
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

//Atom contains the information read for one atom of a structure.
type Atom struct {
	ID        int
	Name      string
	AltLoc    byte
	Symbol    string
	Occupancy float64
	Bfactor   float64
	Charge    string
	Coord     r3.Vec
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	return &N
}

//Residue is a residue (aminoacid, ligand, water...) in a chain.
type Residue struct {
	Name  string
	Num   int
	ICode byte
	Het   bool //is hetatm in the pdb file?
	Atoms []*Atom
}

//Atom returns the first atom in the residue with the given name, or nil
//if there is no such atom.
func (R *Residue) Atom(name string) *Atom {
	for _, v := range R.Atoms {
		if v.Name == name {
			return v
		}
	}
	return nil
}

//IsWater returns true if the residue is a water molecule.
func (R *Residue) IsWater() bool {
	return IsWater(R.Name)
}

//IsCanonical returns true if the residue is one of the 20 canonical aminoacids.
func (R *Residue) IsCanonical() bool {
	return IsCanonical(R.Name)
}

//Coords returns the coordinates of all atoms in the residue.
func (R *Residue) Coords() []r3.Vec {
	ret := make([]r3.Vec, 0, len(R.Atoms))
	for _, v := range R.Atoms {
		ret = append(ret, v.Coord)
	}
	return ret
}

//DropAtoms removes from the residue all atoms with names in names.
//it returns the number of atoms removed.
func (R *Residue) DropAtoms(names []string) int {
	kept := R.Atoms[:0]
	removed := 0
	for _, v := range R.Atoms {
		if isInString(names, v.Name) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	R.Atoms = kept
	return removed
}

//Copy returns a deep copy of the residue.
func (R *Residue) Copy() *Residue {
	N := &Residue{Name: R.Name, Num: R.Num, ICode: R.ICode, Het: R.Het}
	N.Atoms = make([]*Atom, 0, len(R.Atoms))
	for _, v := range R.Atoms {
		N.Atoms = append(N.Atoms, v.Copy())
	}
	return N
}

//Chain is an ordered sequence of residues with a chain identifier.
type Chain struct {
	ID       string
	Residues []*Residue
}

//Len returns the number of residues in the chain, waters and ligands included.
func (C *Chain) Len() int {
	return len(C.Residues)
}

//Sequence returns the one-letter sequence of the chain. Non-aminoacid
//residues are given as 'X'. Waters are ignored.
func (C *Chain) Sequence() string {
	var b strings.Builder
	for _, v := range C.Residues {
		if v.IsWater() {
			continue
		}
		b.WriteByte(OneLetter(v.Name))
	}
	return b.String()
}

//HasHeteroResidues returns true if the chain contains a HETATM residue other than water.
func (C *Chain) HasHeteroResidues() bool {
	for _, v := range C.Residues {
		if v.Het && !v.IsWater() {
			return true
		}
	}
	return false
}

//NonCanonical returns the names of the residues in the chain that are not one of
//the 20 canonical aminoacids. Waters count as non-canonical here.
func (C *Chain) NonCanonical() []string {
	var ret []string
	for _, v := range C.Residues {
		if v.Name != "" && !v.IsCanonical() {
			ret = append(ret, v.Name)
		}
	}
	return ret
}

//Residue returns the residue with number num (and no insertion code), or nil
func (C *Chain) Residue(num int) *Residue {
	for _, v := range C.Residues {
		if v.Num == num && (v.ICode == ' ' || v.ICode == 0) {
			return v
		}
	}
	return nil
}

//CAs returns the coordinates of the alpha carbons of the chain.
func (C *Chain) CAs() []r3.Vec {
	ret := make([]r3.Vec, 0, len(C.Residues))
	for _, v := range C.Residues {
		if a := v.Atom("CA"); a != nil {
			ret = append(ret, a.Coord)
		}
	}
	return ret
}

//Gaps returns the indexes (in C.Residues) of the residues whose N atom
//lies further than threshold from the last CA seen before it. In a continuous
//chain that distance is about 2.5 A, so a larger one means missing residues.
//The first residue is compared with the first atom of the chain.
func (C *Chain) Gaps(threshold float64) []int {
	var gaps []int
	var prev *Atom
	for _, r := range C.Residues {
		if len(r.Atoms) > 0 {
			prev = r.Atoms[0]
			break
		}
	}
	if prev == nil {
		return nil
	}
	for i, r := range C.Residues {
		for _, a := range r.Atoms {
			if a.Name == "N" && r3.Norm(r3.Sub(a.Coord, prev.Coord)) > threshold {
				gaps = append(gaps, i)
			}
			if a.Name == "CA" {
				prev = a
			}
		}
	}
	return gaps
}

//Renumber sets the residue numbers of the chain to 1..n, in order,
//and clears the insertion codes. It uses a first pass with negative
//numbers so no residue ever shares its number with another during the
//process.
func (C *Chain) Renumber() {
	for i, v := range C.Residues {
		v.Num = -(i + 1)
		v.ICode = ' '
	}
	for _, v := range C.Residues {
		v.Num = -v.Num
	}
}

//Copy returns a deep copy of the chain.
func (C *Chain) Copy() *Chain {
	N := &Chain{ID: C.ID, Residues: make([]*Residue, 0, len(C.Residues))}
	for _, v := range C.Residues {
		N.Residues = append(N.Residues, v.Copy())
	}
	return N
}

//Structure is a (multi-chain) macromolecular structure, as read from a PDB file.
//Only the first model is kept in Chains, other models, if present, are in Extra.
type Structure struct {
	ID     string
	Header []string //all the lines before the first coordinate record, without newline.
	Chains []*Chain
	Extra  [][]*Chain
}

//Chain returns the first chain with the given id, or nil if there is none.
func (S *Structure) Chain(id string) *Chain {
	for _, v := range S.Chains {
		if v.ID == id {
			return v
		}
	}
	return nil
}

//ChainIDs returns the ids of the chains in the structure, in order.
//Duplicated ids are given as many times as they appear.
func (S *Structure) ChainIDs() []string {
	ret := make([]string, 0, len(S.Chains))
	for _, v := range S.Chains {
		ret = append(ret, v.ID)
	}
	return ret
}

//Len returns the total number of atoms in the first model.
func (S *Structure) Len() int {
	n := 0
	for _, c := range S.Chains {
		for _, r := range c.Residues {
			n += len(r.Atoms)
		}
	}
	return n
}

//Renumber renumbers each chain so it starts at 1 and is continuous.
func (S *Structure) Renumber() {
	for _, v := range S.Chains {
		v.Renumber()
	}
}

//CollapseModels drops every model but the first. It returns the number
//of models dropped.
func (S *Structure) CollapseModels() int {
	n := len(S.Extra)
	S.Extra = nil
	return n
}

//DedupChains keeps only the first instance of each chain id, in the order in which they
//first appear. It returns the number of chains removed.
func (S *Structure) DedupChains() int {
	seen := make(map[string]bool, len(S.Chains))
	kept := make([]*Chain, 0, len(S.Chains))
	for _, v := range S.Chains {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		kept = append(kept, v)
	}
	removed := len(S.Chains) - len(kept)
	S.Chains = kept
	return removed
}

//KeepChains removes all chains with ids not in ids, and puts the remaining
//ones in the order given by ids. Chains with blank ids are always removed.
func (S *Structure) KeepChains(ids []string) {
	kept := make([]*Chain, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if c := S.Chain(id); c != nil {
			kept = append(kept, c)
		}
	}
	S.Chains = kept
}

//RenameChains renames the chains with ids in from to the corresponding
//ids in to. Names are first changed to placeholders, so it doesn't matter
//if a new name is already in use by one of the chains being renamed.
func (S *Structure) RenameChains(from, to []string) error {
	if len(from) != len(to) {
		return fmt.Errorf("RenameChains: %d chains to rename, %d new names", len(from), len(to))
	}
	placeholder := func(i int) string { return fmt.Sprintf("\x00%d", i) }
	for i, id := range from {
		c := S.Chain(id)
		if c == nil {
			return fmt.Errorf("RenameChains: no chain %q in structure %s", id, S.ID)
		}
		c.ID = placeholder(i)
	}
	for i := range from {
		S.Chain(placeholder(i)).ID = to[i]
	}
	return nil
}

//FreeChainID returns the first uppercase letter not used as chain id in the
//structure, or the empty string if all of them are taken.
func (S *Structure) FreeChainID() string {
	for l := 'A'; l <= 'Z'; l++ {
		if S.Chain(string(l)) == nil {
			return string(l)
		}
	}
	return ""
}

//Sequences returns the one-letter sequence of each chain, by chain id.
func (S *Structure) Sequences() map[string]string {
	ret := make(map[string]string, len(S.Chains))
	for _, v := range S.Chains {
		ret[v.ID] = v.Sequence()
	}
	return ret
}

//Copy returns a deep copy of the structure. The header is copied too.
func (S *Structure) Copy() *Structure {
	N := &Structure{ID: S.ID}
	N.Header = append([]string(nil), S.Header...)
	for _, v := range S.Chains {
		N.Chains = append(N.Chains, v.Copy())
	}
	for _, m := range S.Extra {
		cm := make([]*Chain, 0, len(m))
		for _, v := range m {
			cm = append(cm, v.Copy())
		}
		N.Extra = append(N.Extra, cm)
	}
	return N
}

//Same as the previous, but with strings.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
