/*
 * selector.go, part of gopmhc.
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

//Package selector chooses, from a library of templates, the best template(s) to model
//a target peptide/MHC complex.
package selector

import (
	"fmt"
	"sort"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/allele"
)

//Pool is a read-only set of templates.
type Pool interface {
	//Templates returns the templates of the given class, sorted by ID.
	Templates(class pmhc.Class) []*pmhc.Template
}

//Options for the template selection.
type Options struct {
	BestN       int  //how many templates to return
	ExcludeSelf bool //leave out the template with the same ID as the target
	Matrix      Matrix
}

//DefaultOptions returns the default options: one template, PAM30 scoring, and
//no self-exclusion.
func DefaultOptions() *Options {
	return &Options{BestN: 1, Matrix: PAM30}
}

//Candidate is a template scored against a target.
type Candidate struct {
	Template  *pmhc.Template
	Alignment *Alignment
	Score     float64
	SelfMatch bool //the template is the target, as far as we can tell.
}

//Result is the result of a template search.
type Result struct {
	Ranked    []*Candidate       //the best candidates, best first.
	Scores    map[string]float64 //the score of every candidate, by template ID.
	SelfMatch bool               //one of the ranked templates is the target itself.
	Alleles   []string           //the target's alleles, normalized to the library.
}

//Best returns the best candidate.
func (R *Result) Best() *Candidate {
	return R.Ranked[0]
}

//FindTemplate ranks the templates of the target's class in P that share an allele with the target
//by the score of their peptide alignment with the target's, and returns the best O.BestN.
//If the target has no alleles, the templates with the same receptor sequence(s) are used instead.
//Peptides are aligned by their anchors when both have them, and position by position otherwise.
//Among templates with the same score, the one with the smallest ID is ranked first.
func FindTemplate(target *pmhc.Target, P Pool, O *Options) (*Result, error) {
	if O == nil {
		O = DefaultOptions()
	}
	M := O.Matrix
	if M == nil {
		M = PAM30
	}
	bestN := O.BestN
	if bestN < 1 {
		bestN = 1
	}
	all := P.Templates(target.Class)
	var available []string
	for _, t := range all {
		available = append(available, t.Alleles...)
	}
	R := &Result{Scores: make(map[string]float64)}
	R.Alleles = allele.Normalize(target.Alleles, available)
	var cands []*Candidate
	for _, t := range all {
		if O.ExcludeSelf && t.ID == target.ID {
			continue
		}
		if len(R.Alleles) > 0 {
			if !allele.AnyMatch(R.Alleles, t.Alleles) {
				continue
			}
		} else if !target.HasReceptor() || !sameReceptor(&target.Record, &t.Record) {
			continue
		}
		al, err := align(&target.Record, &t.Record, M)
		if err != nil {
			return nil, pmhc.Errorf(pmhc.ValidationFailure, target.ID, "aligning with template %s: %w", t.ID, err)
		}
		c := &Candidate{Template: t, Alignment: al, Score: al.Score(), SelfMatch: selfMatch(target, t, R.Alleles)}
		R.Scores[t.ID] = c.Score
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return nil, pmhc.NewError(pmhc.NoCandidate, target.ID, fmt.Sprintf("no class %v template for alleles %v", target.Class, target.Alleles))
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	if len(cands) > bestN {
		cands = cands[:bestN]
	}
	R.Ranked = cands
	for _, c := range cands {
		R.SelfMatch = R.SelfMatch || c.SelfMatch
	}
	return R, nil
}

//Align aligns the peptides of the target and template records: by anchors if both have them,
//position by position otherwise.
func Align(target, template *pmhc.Record, M Matrix) (*Alignment, error) {
	if M == nil {
		M = PAM30
	}
	return align(target, template, M)
}

func align(target, template *pmhc.Record, M Matrix) (*Alignment, error) {
	if target.HasAnchors() && template.HasAnchors() {
		return AnchorAlign(target.Peptide, template.Peptide, target.Anchors, template.Anchors, M)
	}
	return PositionalAlign(target.Peptide, template.Peptide, M), nil
}

func sameReceptor(a, b *pmhc.Record) bool {
	return a.Heavy == b.Heavy && a.Light == b.Light
}

//selfMatch returns true if the template has the target's peptide and the target's receptor sequences or,
//if those are not known, at least one of the target's (normalized) alleles.
func selfMatch(target *pmhc.Target, t *pmhc.Template, alleles []string) bool {
	if target.Peptide != t.Peptide {
		return false
	}
	if target.HasReceptor() {
		return sameReceptor(&target.Record, &t.Record)
	}
	return allele.AnyMatch(alleles, t.Alleles)
}
