/*
 * records.go, part of gopmhc.
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
)

//Class is the MHC class of a complex.
type Class int

const (
	ClassUnknown Class = iota
	ClassI
	ClassII
)

func (C Class) String() string {
	switch C {
	case ClassI:
		return "I"
	case ClassII:
		return "II"
	}
	return "unknown"
}

//AnchorCount is the usual number of anchors for the class: 2 for class I, 4 for class II.
func (C Class) AnchorCount() int {
	switch C {
	case ClassI:
		return 2
	case ClassII:
		return 4
	}
	return 0
}

//ParseClass reads a class from strings like "I", "i", "1", "MHCI", "II", "2" or "MHCII".
func ParseClass(s string) (Class, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "MHC")
	switch s {
	case "I", "1":
		return ClassI, nil
	case "II", "2":
		return ClassII, nil
	}
	return ClassUnknown, NewError(MalformedInput, "", fmt.Sprintf("unknown MHC class %q", s))
}

//Record is the data shared by templates and targets.
type Record struct {
	ID      string   `json:"id"`
	Alleles []string `json:"alleles"`
	Class   Class    `json:"class"`
	Peptide string   `json:"peptide"`
	Heavy   string   `json:"heavy,omitempty"` //sequence of the heavy (alpha) chain, H.
	Light   string   `json:"light,omitempty"` //sequence of the light (beta) chain, L. Class II only.
	Anchors []int    `json:"anchors,omitempty"`
}

//HasAnchors returns true if the record has anchor positions.
func (R *Record) HasAnchors() bool {
	return len(R.Anchors) > 0
}

//HasReceptor returns true if the receptor sequences of the record are known.
func (R *Record) HasReceptor() bool {
	return R.Heavy != ""
}

//ValidateAnchors returns an error unless anchors are strictly increasing positions
//within [1, peplen]. An empty set of anchors is valid.
func ValidateAnchors(anchors []int, peplen int) error {
	prev := 0
	for i, v := range anchors {
		if v < 1 || v > peplen {
			return NewError(ValidationFailure, "", fmt.Sprintf("anchor %d (position %d) out of the range [1, %d]", i, v, peplen))
		}
		if v <= prev {
			return NewError(ValidationFailure, "", fmt.Sprintf("anchors not strictly increasing: %v", anchors))
		}
		prev = v
	}
	return nil
}

//Validate checks the invariants shared by templates and targets.
func (R *Record) Validate() error {
	if R.ID == "" {
		return NewError(MalformedInput, "", "record without ID")
	}
	if R.Class != ClassI && R.Class != ClassII {
		return NewError(MalformedInput, R.ID, "record without MHC class")
	}
	if R.Peptide == "" {
		return NewError(MalformedInput, R.ID, "record without peptide")
	}
	if err := ValidateAnchors(R.Anchors, len(R.Peptide)); err != nil {
		e := err.(*Error)
		e.id = R.ID
		return errDecorate(e, "Validate")
	}
	return nil
}

//Template is a cleaned structure from the library.
type Template struct {
	Record
	Resolution float64 `json:"resolution"`
	Path       string  `json:"path"` //the cleaned PDB file.
}

//Copy returns a deep copy of the template.
func (T *Template) Copy() *Template {
	N := *T
	N.Alleles = append([]string(nil), T.Alleles...)
	N.Anchors = append([]int(nil), T.Anchors...)
	return &N
}

//Target is a peptide/MHC to be modeled.
type Target struct {
	Record
}

//NewTarget returns a validated target. Anchors and sequences can be nil/empty.
//Class II targets need either both receptor sequences or none.
func NewTarget(id string, class Class, peptide string, alleles []string, anchors []int, heavy, light string) (*Target, error) {
	T := &Target{Record{ID: id, Class: class, Peptide: strings.ToUpper(peptide), Alleles: alleles, Anchors: anchors, Heavy: heavy, Light: light}}
	if err := T.Validate(); err != nil {
		return nil, errDecorate(err, "NewTarget")
	}
	return T, nil
}

//Validate checks the target, including the receptor sequences.
func (T *Target) Validate() error {
	if err := T.Record.Validate(); err != nil {
		return err
	}
	if T.Class == ClassII && (T.Heavy == "") != (T.Light == "") {
		return NewError(MalformedInput, T.ID, "class II targets need both the alpha and the beta chain sequences, or none")
	}
	if T.Class == ClassI && T.Light != "" {
		return NewError(MalformedInput, T.ID, "class I targets don't have a light chain sequence")
	}
	if len(T.Alleles) == 0 && !T.HasReceptor() {
		return NewError(MalformedInput, T.ID, "target needs alleles or receptor sequences")
	}
	return nil
}

//TemplateFromPDB builds a template from the cleaned structure in the PDB file path, which
//must have a heavy chain H, a peptide chain P and, for class II, a light chain L.
//The sequences and the resolution are read from the file.
func TemplateFromPDB(id string, class Class, alleles []string, path string) (*Template, error) {
	S, err := PDBFileRead(path)
	if err != nil {
		return nil, errDecorate(err, "TemplateFromPDB")
	}
	seqs := S.Sequences()
	T := &Template{Resolution: Resolution(S.Header), Path: path}
	T.Record = Record{ID: id, Class: class, Alleles: append([]string(nil), alleles...), Peptide: seqs["P"], Heavy: seqs["H"], Light: seqs["L"]}
	switch {
	case len(alleles) == 0:
		return nil, NewError(MalformedInput, id, "template without alleles")
	case T.Heavy == "":
		return nil, NewError(MalformedInput, id, fmt.Sprintf("no chain H in %s", path))
	case class == ClassII && T.Light == "":
		return nil, NewError(MalformedInput, id, fmt.Sprintf("no chain L in %s", path))
	}
	if err := T.Validate(); err != nil {
		return nil, errDecorate(err, "TemplateFromPDB")
	}
	return T, nil
}
