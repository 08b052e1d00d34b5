/*
 * clean.go, part of gopmhc.
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

//Package clean turns raw pMHC structures, as distributed by IMGT/3Dstructure-DB,
//into templates: structures with only the receptor chain(s), named H (and L for
//MHC class II) and the peptide chain, named P, all numbered from 1, with
//no gaps or non-canonical residues in the peptide, and nothing but water
//between the peptide and the MHC.
//
//Structures that can't be cleaned are rejected. The reason is logged
//to a CSV file, one per MHC class, and processing goes on.
package clean

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/chains"
	"github.com/rmera/gopmhc/contacts"
	"github.com/rmera/gopmhc/library"
	"gonum.org/v1/gonum/spatial/r3"
)

//Rejection reasons, as written to the log.
const (
	ReasonSource       = "source file absent/empty"
	ReasonUnparsable   = "Could not parse structure"
	ReasonFused        = "Could not cut peptide from MHC chain"
	ReasonNoPeptide    = "Could not find a suitable peptide chain"
	ReasonNoReceptor   = "Could not locate Alpha chain"
	ReasonPeptideGap   = "Peptide chain is missing residues"
	ReasonNonCanonical = "Non canonical residues in the peptide chain"
	ReasonGroove       = "Heteroatoms in binding groove between the peptide and MHC"
	ReasonReformat     = "Could not reformat structure"
	ReasonShape        = "Structure did not pass the test."
	ReasonWrite        = "Could not write cleaned structure"
	ReasonAlleles      = "Could not find allele type"
	ReasonLibrary      = "Could not add template to library"
	ReasonPanic        = "Unexpected error"
)

//Cleaned is a structure that went through Prepare.
type Cleaned struct {
	Structure *pmhc.Structure
	Receptor  []string //the chain IDs, before renaming, of the heavy (and light) chains
	Peptide   string   //same for the peptide chain
}

//Labels returns the chain IDs of a cleaned structure of class c, in order.
func Labels(c pmhc.Class) []string {
	if c == pmhc.ClassII {
		return []string{"H", "L", "P"}
	}
	return []string{"H", "P"}
}

//Prepare takes a structure as read from a raw file and cleans it, in place.
//It fails with an *pmhc.Error carrying one of the rejection reasons if
//the structure can't be used as a template.
func Prepare(S *pmhc.Structure, O *Options) (*Cleaned, error) {
	if O == nil {
		O = DefaultOptions(pmhc.ClassI)
	}
	copts := *O.Chains
	id := S.ID
	verbose := func(format string, a ...interface{}) {
		if O.Verbose {
			O.logger().Printf("%s: "+format, append([]interface{}{id}, a...)...)
		}
	}
	if n := RevertModified(S); n > 0 {
		verbose("%d modified residues reverted", n)
	}
	if n := S.CollapseModels(); n > 0 {
		verbose("%d extra models removed", n)
	}
	if n := S.DedupChains(); n > 0 {
		verbose("%d duplicated chains removed", n)
	}
	S.Renumber()
	if err := SplitFusedPeptides(S, O.GapThreshold); err != nil {
		verbose("%v", err)
		return nil, pmhc.NewError(pmhc.AmbiguousStructure, id, ReasonFused)
	}
	pep, err := chains.FindPeptideChain(S, copts.MinPeptideLen, copts.MaxPeptideLen)
	if err != nil {
		return nil, pmhc.NewError(pmhc.AmbiguousStructure, id, ReasonNoPeptide)
	}
	copts.Allowed = append([]string(nil), O.Chains.Allowed...)
	if O.Class == pmhc.ClassI && len(copts.Allowed) == 0 {
		alphas := pmhc.IMGTChainsByDescription(pmhc.IMGTChains(S.Header), pmhc.ClassIAlpha)
		if len(alphas) == 0 {
			verbose("no %s chain in the remarks", pmhc.ClassIAlpha)
			return nil, pmhc.NewError(pmhc.AmbiguousStructure, id, ReasonNoReceptor)
		}
		//Annotated chains can all be gone if S was already cleaned, then any chain goes.
		for _, v := range alphas {
			if S.Chain(v.ID) != nil {
				copts.Allowed = append(copts.Allowed, v.ID)
			}
		}
	}
	rec, err := chains.FindReceptorChains(S, pep, O.Class, &copts)
	if err != nil {
		verbose("%v", err)
		return nil, pmhc.NewError(pmhc.AmbiguousStructure, id, ReasonNoReceptor)
	}
	rec = rec[:len(rec)-1]
	pc := S.Chain(pep)
	if g := pc.Gaps(O.GapThreshold); len(g) > 0 {
		verbose("gaps in peptide chain %s before residue(s) %v", pep, g)
		return nil, pmhc.NewError(pmhc.ValidationFailure, id, ReasonPeptideGap)
	}
	if nc := pc.NonCanonical(); len(nc) > 0 {
		verbose("non-canonical residues in peptide: %v", nc)
		return nil, pmhc.NewError(pmhc.ValidationFailure, id, ReasonNonCanonical)
	}
	junk, err := GrooveLigands(S, O.Class, rec, pep, O)
	if err != nil || len(junk) > 0 {
		verbose("groove: %v %v", junk, err)
		return nil, pmhc.NewError(pmhc.ValidationFailure, id, ReasonGroove)
	}
	old := append(append([]string(nil), rec...), pep)
	S.KeepChains(old)
	if err := S.RenameChains(old, Labels(O.Class)); err != nil {
		verbose("%v", err)
		return nil, pmhc.NewError(pmhc.ValidationFailure, id, ReasonReformat)
	}
	S.Renumber()
	if err := CheckShape(S, O.Class, &copts); err != nil {
		verbose("%v", err)
		return nil, pmhc.NewError(pmhc.ValidationFailure, id, ReasonShape)
	}
	return &Cleaned{Structure: S, Receptor: rec, Peptide: pep}, nil
}

//RevertModified turns the modified residues in ModifiedResidues back into
//their canonical parents. It returns the number of residues changed.
func RevertModified(S *pmhc.Structure) int {
	n := 0
	for _, c := range S.Chains {
		for _, r := range c.Residues {
			m, ok := pmhc.ModifiedResidues[r.Name]
			if !ok {
				continue
			}
			r.Name = m.Parent
			r.DropAtoms(m.Drop)
			r.Het = false
			n++
		}
	}
	return n
}

//SplitFusedPeptides moves the peptides that the remarks annotate as fused to another
//chain to new chains. A split peptide ends before its first gap, if any. Nothing is done
//if the annotated range covers the whole chain, or if the chain is not in S, as
//happens with structures that were already cleaned. Both chains are renumbered.
func SplitFusedPeptides(S *pmhc.Structure, gapThreshold float64) error {
	for _, pr := range pmhc.FusedPeptides(S.Header) {
		c := S.Chain(pr.Chain)
		if c == nil {
			continue
		}
		var in, out []*pmhc.Residue
		for _, r := range c.Residues {
			if r.Num >= pr.Start && r.Num <= pr.End {
				in = append(in, r)
			} else {
				out = append(out, r)
			}
		}
		if len(in) == 0 {
			return fmt.Errorf("SplitFusedPeptides: no residues %d-%d in chain %s", pr.Start, pr.End, pr.Chain)
		}
		if len(out) == 0 {
			continue
		}
		newid := S.FreeChainID()
		if newid == "" {
			return fmt.Errorf("SplitFusedPeptides: no free chain ID in %s", S.ID)
		}
		pep := &pmhc.Chain{ID: newid, Residues: in}
		if g := pep.Gaps(gapThreshold); len(g) > 0 {
			pep.Residues = pep.Residues[:g[0]]
		}
		if pep.Len() == 0 {
			return fmt.Errorf("SplitFusedPeptides: empty peptide in chain %s", pr.Chain)
		}
		c.Residues = out
		c.Renumber()
		pep.Renumber()
		S.Chains = append(S.Chains, pep)
	}
	return nil
}

//landmarks returns the chain ID and residue numbers whose CAs mark the floor
//of the binding groove.
func landmarks(class pmhc.Class, receptor []string) (string, []int) {
	if class == pmhc.ClassII && len(receptor) > 1 {
		return receptor[1], []int{12, 29}
	}
	return receptor[0], []int{8}
}

//GrooveLigands returns the non-aminoacid, non-water residues of S that lie in the
//binding groove, between the peptide chain pep and the floor of the groove,
//given as chain/name/number. Only residues outside the peptide chain and the
//chain holding the groove floor residues are considered. It fails if the peptide
//is nowhere near the floor of the groove.
func GrooveLigands(S *pmhc.Structure, class pmhc.Class, receptor []string, pep string, O *Options) ([]string, error) {
	if len(receptor) == 0 {
		return nil, fmt.Errorf("GrooveLigands: no receptor chains")
	}
	lchain, lres := landmarks(class, receptor)
	lc := S.Chain(lchain)
	pc := S.Chain(pep)
	if lc == nil || pc == nil {
		return nil, fmt.Errorf("GrooveLigands: missing chain %s or %s", lchain, pep)
	}
	var floor []r3.Vec
	for _, n := range lres {
		if r := lc.Residue(n); r != nil {
			if a := r.Atom("CA"); a != nil {
				floor = append(floor, a.Coord)
			}
		}
	}
	pcas := pc.CAs()
	baseline, _ := contacts.LowestDist(pcas, floor)
	if baseline > O.GrooveSearch {
		return nil, fmt.Errorf("GrooveLigands: peptide not within %.1f A of the groove floor", O.GrooveSearch)
	}
	var ret []string
	for _, c := range S.Chains {
		if c.ID == lchain || c.ID == pep {
			continue
		}
		for _, r := range c.Residues {
			if r.IsCanonical() || r.IsWater() {
				continue
			}
			coords := r.Coords()
			jp, _ := contacts.LowestDist(coords, pcas)
			jf, _ := contacts.LowestDist(coords, floor)
			if jp < O.GrooveJunkDist && jp < baseline && jf < baseline {
				ret = append(ret, fmt.Sprintf("%s/%s%d", c.ID, r.Name, r.Num))
			}
		}
	}
	return ret, nil
}

//CheckShape verifies that S looks like a cleaned structure of class c: exactly the chains
//given by Labels, in order, receptor chains longer than O.MinReceptorLen, a peptide with
//a length between O.MinPeptideLen and O.MaxPeptideLen (both excluded) and every
//chain numbered from 1 to its length.
func CheckShape(S *pmhc.Structure, c pmhc.Class, O *chains.Options) error {
	labels := Labels(c)
	ids := S.ChainIDs()
	if len(ids) != len(labels) {
		return fmt.Errorf("CheckShape: chains %v, expected %v", ids, labels)
	}
	for i, v := range labels {
		if ids[i] != v {
			return fmt.Errorf("CheckShape: chains %v, expected %v", ids, labels)
		}
	}
	for _, ch := range S.Chains {
		l := ch.Len()
		if ch.ID == "P" {
			if l <= O.MinPeptideLen || l >= O.MaxPeptideLen {
				return fmt.Errorf("CheckShape: peptide with %d residues", l)
			}
		} else if l <= O.MinReceptorLen {
			return fmt.Errorf("CheckShape: receptor chain %s with %d residues", ch.ID, l)
		}
		if l == 0 || ch.Residues[0].Num != 1 || ch.Residues[l-1].Num != l {
			return fmt.Errorf("CheckShape: chain %s not numbered 1-%d", ch.ID, l)
		}
	}
	return nil
}

//Alleles returns the alleles that the IMGT remarks in header assign to the
//structure. For class I, those of the G-ALPHA1 and G-ALPHA2 domains of the heavy
//chain (given by its ID before cleaning), or of the first I-ALPHA chain if the heavy chain has no
//block. For class II, those of the G-ALPHA domains of II-ALPHA chains and the G-BETA
//domains of II-BETA chains.
func Alleles(header []string, c pmhc.Class, heavy string) ([]string, error) {
	blocks := pmhc.IMGTChains(header)
	var ret []string
	add := func(names []string) {
		for _, v := range names {
			if !isIn(ret, v) {
				ret = append(ret, v)
			}
		}
	}
	switch c {
	case pmhc.ClassI:
		alphas := pmhc.IMGTChainsByDescription(blocks, pmhc.ClassIAlpha)
		if len(alphas) == 0 {
			break
		}
		chosen := alphas[0]
		for _, v := range alphas {
			if v.ID == heavy {
				chosen = v
				break
			}
		}
		add(chosen.AlleleNames("G-ALPHA1", "G-ALPHA2"))
	case pmhc.ClassII:
		for _, v := range pmhc.IMGTChainsByDescription(blocks, pmhc.ClassIIAlpha) {
			add(v.AlleleNames("G-ALPHA"))
		}
		for _, v := range pmhc.IMGTChainsByDescription(blocks, pmhc.ClassIIBeta) {
			add(v.AlleleNames("G-BETA"))
		}
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("Alleles: no class %v alleles in remarks", c)
	}
	return ret, nil
}

//ErrPresent is returned by Clean, with the library's template, when the structure is
//already in the library. Nothing is written and no rejection is logged.
var ErrPresent = errors.New("template already in the library")

//Cleaner cleans structures and puts the results in a library.
type Cleaner struct {
	O   *Options
	Lib *library.Library //can be nil, then templates are only returned.
	log *RejectLog
}

//New returns a cleaner with the options O, that adds the templates to lib.
func New(O *Options, lib *library.Library) *Cleaner {
	if O == nil {
		O = DefaultOptions(pmhc.ClassI)
	}
	return &Cleaner{O: O, Lib: lib, log: NewRejectLog(O.LogName())}
}

//Log returns the rejection log of the cleaner.
func (C *Cleaner) Log() *RejectLog {
	return C.log
}

//Clean reads the raw structure id from the input directory, cleans it, writes the result
//to the output directory as id.pdb and adds the template to the library. On failure, the reason
//is logged, the raw structure is copied to the BadDir and a *pmhc.Error is returned.
//A structure already in the library is not read again: its template is returned, with ErrPresent.
func (C *Cleaner) Clean(id string) (*pmhc.Template, error) {
	O := C.O
	if t, ok := C.present(id); ok {
		return t, ErrPresent
	}
	raw, err := pmhc.ReadSource(O.Source(id))
	if err != nil {
		return nil, C.reject(id, nil, ReasonSource, pmhc.Errorf(pmhc.MalformedInput, id, ReasonSource+": %w", err))
	}
	if O.Verbose {
		O.logger().Printf("Parsing %s", id)
	}
	S, err := pmhc.PDBRead(bytes.NewReader(raw), id)
	if err != nil {
		return nil, C.reject(id, raw, ReasonUnparsable, pmhc.Errorf(pmhc.MalformedInput, id, ReasonUnparsable+": %w", err))
	}
	cl, err := Prepare(S, O)
	if err != nil {
		return nil, C.reject(id, raw, "", err)
	}
	alleles, err := Alleles(S.Header, O.Class, cl.Receptor[0])
	if err != nil {
		return nil, C.reject(id, raw, "", pmhc.NewError(pmhc.AmbiguousStructure, id, ReasonAlleles))
	}
	//The structure goes to a temporary file, and only gets its final name once
	//the template is in the library, so a file some template points to is never removed.
	tmp, err := writeTemp(O.OutDir, id, cl.Structure)
	if err != nil {
		return nil, C.reject(id, raw, ReasonWrite, pmhc.Errorf(pmhc.MalformedInput, id, ReasonWrite+": %w", err))
	}
	defer os.Remove(tmp) //fails harmlessly once renamed
	out := filepath.Join(O.OutDir, id+".pdb")
	seqs := cl.Structure.Sequences()
	T := &pmhc.Template{Resolution: pmhc.Resolution(S.Header), Path: out}
	T.ID = id
	T.Class = O.Class
	T.Alleles = alleles
	T.Peptide = seqs["P"]
	T.Heavy = seqs["H"]
	T.Light = seqs["L"]
	if a, ok := O.Anchors[id]; ok {
		if err := pmhc.ValidateAnchors(a, len(T.Peptide)); err != nil {
			O.logger().Printf("%s: anchors %v ignored: %v", id, a, err)
		} else {
			T.Anchors = append([]int(nil), a...)
		}
	}
	if C.Lib != nil {
		if err := C.Lib.Add(T); err != nil {
			//another worker could have added it in the meantime.
			if t, ok := C.present(id); ok {
				return t, ErrPresent
			}
			return nil, C.reject(id, raw, ReasonLibrary, pmhc.Errorf(pmhc.ValidationFailure, id, ReasonLibrary+": %w", err))
		}
	}
	if err := os.Rename(tmp, out); err != nil {
		if C.Lib != nil {
			C.Lib.Remove(id)
		}
		return nil, C.reject(id, raw, ReasonWrite, pmhc.Errorf(pmhc.MalformedInput, id, ReasonWrite+": %w", err))
	}
	return T, nil
}

//present returns the template id if it is in the library.
func (C *Cleaner) present(id string) (*pmhc.Template, bool) {
	if C.Lib == nil {
		return nil, false
	}
	t, ok := C.Lib.Get(id)
	if ok && C.O.Verbose {
		C.O.logger().Printf("%s already in the library, skipped", id)
	}
	return t, ok
}

//writeTemp writes S to a new file in dir and returns its name.
func writeTemp(dir, id string, S *pmhc.Structure) (string, error) {
	f, err := os.CreateTemp(dir, "."+id+"-*.pdb")
	if err != nil {
		return "", err
	}
	name := f.Name()
	err = pmhc.PDBWrite(f, S)
	if err == nil {
		err = f.Chmod(0644)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

//reject logs the rejection of id with the given reason and copies the raw file, if any,
//to the BadDir. An empty reason means the message of err. It returns err.
func (C *Cleaner) reject(id string, raw []byte, reason string, err error) error {
	if reason == "" {
		reason = err.Error()
		if e, ok := err.(*pmhc.Error); ok {
			reason = e.Reason()
		}
	}
	if C.O.Verbose {
		C.O.logger().Printf("%s rejected: %v", id, err)
	}
	if lerr := C.log.Log(id, reason); lerr != nil {
		C.O.logger().Printf("Can't log rejection of %s: %v", id, lerr)
	}
	if raw != nil && C.O.BadDir != "" {
		if werr := os.WriteFile(filepath.Join(C.O.BadDir, id+".pdb"), raw, 0644); werr != nil {
			C.O.logger().Printf("Can't copy rejected structure %s: %v", id, werr)
		}
	}
	return err
}

func isIn(container []string, test string) bool {
	for _, v := range container {
		if v == test {
			return true
		}
	}
	return false
}
