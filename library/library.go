/*
 * library.go, part of gopmhc.
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

//Package library keeps the templates available for modeling, one set per MHC class.
//A Library can be written to by one goroutine while others read consistent snapshots of it.
package library

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	pmhc "github.com/rmera/gopmhc"
)

//Library holds class I and class II templates, by ID. No ID can be in both classes.
type Library struct {
	mu      sync.RWMutex
	classI  map[string]*pmhc.Template
	classII map[string]*pmhc.Template
}

//New returns an empty library.
func New() *Library {
	return &Library{classI: make(map[string]*pmhc.Template), classII: make(map[string]*pmhc.Template)}
}

func (L *Library) class(c pmhc.Class) map[string]*pmhc.Template {
	switch c {
	case pmhc.ClassI:
		return L.classI
	case pmhc.ClassII:
		return L.classII
	}
	return nil
}

//Add puts a copy of the template t in the library. It fails if t is not
//valid, or if its ID is already in the library (in either class).
func (L *Library) Add(t *pmhc.Template) error {
	if err := t.Validate(); err != nil {
		return pmhc.Decorate(err, "Add")
	}
	L.mu.Lock()
	defer L.mu.Unlock()
	if _, ok := L.classI[t.ID]; ok {
		return pmhc.NewError(pmhc.ValidationFailure, t.ID, "template already in the class I library")
	}
	if _, ok := L.classII[t.ID]; ok {
		return pmhc.NewError(pmhc.ValidationFailure, t.ID, "template already in the class II library")
	}
	L.class(t.Class)[t.ID] = t.Copy()
	return nil
}

//AddStructure adds to the library the template id, of class c, built from the cleaned structure
//in the PDB file path (see pmhc.TemplateFromPDB). anchors can be nil. Nothing is added on error.
func (L *Library) AddStructure(id string, c pmhc.Class, alleles []string, path string, anchors []int) error {
	t, err := pmhc.TemplateFromPDB(id, c, alleles, path)
	if err != nil {
		return pmhc.Decorate(err, "AddStructure")
	}
	t.Anchors = append([]int(nil), anchors...)
	return L.Add(t) //which checks the anchors
}

//Remove removes the template with the given ID, from whatever class it is in.
//It returns false if there was no such template.
func (L *Library) Remove(id string) bool {
	L.mu.Lock()
	defer L.mu.Unlock()
	_, inI := L.classI[id]
	_, inII := L.classII[id]
	delete(L.classI, id)
	delete(L.classII, id)
	return inI || inII
}

//Get returns a copy of the template with the given ID.
func (L *Library) Get(id string) (*pmhc.Template, bool) {
	L.mu.RLock()
	defer L.mu.RUnlock()
	if t, ok := L.classI[id]; ok {
		return t.Copy(), true
	}
	if t, ok := L.classII[id]; ok {
		return t.Copy(), true
	}
	return nil, false
}

//Len returns the number of templates of class c.
func (L *Library) Len(c pmhc.Class) int {
	L.mu.RLock()
	defer L.mu.RUnlock()
	return len(L.class(c))
}

//SetAnchors sets the anchors of a template. Anchors are the only part of a
//template that can change once it is in the library.
func (L *Library) SetAnchors(id string, anchors []int) error {
	L.mu.Lock()
	defer L.mu.Unlock()
	t, ok := L.classI[id]
	if !ok {
		t, ok = L.classII[id]
	}
	if !ok {
		return pmhc.NewError(pmhc.NoCandidate, id, "no such template in library")
	}
	if err := pmhc.ValidateAnchors(anchors, len(t.Peptide)); err != nil {
		return pmhc.Decorate(err, "SetAnchors")
	}
	t.Anchors = append([]int(nil), anchors...)
	return nil
}

//Predictor gives the anchor positions of a peptide bound to an MHC.
type Predictor interface {
	PredictAnchors(peptide string, alleles []string, class pmhc.Class) ([]int, error)
}

//FillAnchors uses p to set the anchors of every template that has none. The anchors
//must be valid and as many as usual for the class (2 for class I, 4 for class II).
//It returns the number of templates updated and the IDs of the ones it failed to
//update, with their errors.
func (L *Library) FillAnchors(p Predictor) (int, map[string]error) {
	failed := make(map[string]error)
	n := 0
	for _, t := range L.Snapshot().All() {
		if t.HasAnchors() {
			continue
		}
		anchors, err := p.PredictAnchors(t.Peptide, t.Alleles, t.Class)
		if err == nil && len(anchors) != t.Class.AnchorCount() {
			err = pmhc.NewError(pmhc.ValidationFailure, t.ID, fmt.Sprintf("%d anchors predicted, %d expected", len(anchors), t.Class.AnchorCount()))
		}
		if err == nil {
			err = L.SetAnchors(t.ID, anchors)
		}
		if err != nil {
			failed[t.ID] = err
			continue
		}
		n++
	}
	return n, failed
}

//Repath moves the structure path of every template to the directory dir, keeping the
//last directory and the file name of the current path, so ".../pMHCI/1AO7.pdb" becomes
//"dir/pMHCI/1AO7.pdb".
func (L *Library) Repath(dir string) {
	L.mu.Lock()
	defer L.mu.Unlock()
	for _, m := range []map[string]*pmhc.Template{L.classI, L.classII} {
		for _, t := range m {
			if t.Path == "" {
				continue
			}
			clean := filepath.Clean(t.Path)
			parent := filepath.Base(filepath.Dir(clean))
			if parent == "." || parent == string(filepath.Separator) {
				t.Path = filepath.Join(dir, filepath.Base(clean))
				continue
			}
			t.Path = filepath.Join(dir, parent, filepath.Base(clean))
		}
	}
}

//Snapshot is a read-only copy of a library, taken at some point in time.
type Snapshot struct {
	classI  []*pmhc.Template
	classII []*pmhc.Template
}

//Snapshot returns a consistent copy of the library. Later changes to the library don't
//affect the snapshot. It panics if an ID is in both classes, which Add never allows.
func (L *Library) Snapshot() *Snapshot {
	L.mu.RLock()
	defer L.mu.RUnlock()
	S := &Snapshot{classI: sortedCopy(L.classI), classII: sortedCopy(L.classII)}
	for id := range L.classI {
		if _, ok := L.classII[id]; ok {
			panic(fmt.Sprintf("library: template %s in both classes", id))
		}
	}
	return S
}

func sortedCopy(m map[string]*pmhc.Template) []*pmhc.Template {
	ret := make([]*pmhc.Template, 0, len(m))
	for _, t := range m {
		ret = append(ret, t.Copy())
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

//Templates returns the templates of class c, sorted by ID. They must not be modified.
func (S *Snapshot) Templates(c pmhc.Class) []*pmhc.Template {
	switch c {
	case pmhc.ClassI:
		return S.classI
	case pmhc.ClassII:
		return S.classII
	}
	return nil
}

//All returns the templates of both classes, class I first.
func (S *Snapshot) All() []*pmhc.Template {
	ret := make([]*pmhc.Template, 0, len(S.classI)+len(S.classII))
	ret = append(ret, S.classI...)
	return append(ret, S.classII...)
}

//Get returns the template with the given ID, or nil.
func (S *Snapshot) Get(id string) *pmhc.Template {
	for _, t := range S.All() {
		if t.ID == id {
			return t
		}
	}
	return nil
}

//Alleles returns all the alleles of the class c templates, without repetitions, sorted.
func (S *Snapshot) Alleles(c pmhc.Class) []string {
	seen := make(map[string]bool)
	var ret []string
	for _, t := range S.Templates(c) {
		for _, a := range t.Alleles {
			if !seen[a] {
				seen[a] = true
				ret = append(ret, a)
			}
		}
	}
	sort.Strings(ret)
	return ret
}
