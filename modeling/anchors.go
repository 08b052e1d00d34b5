/*
 * anchors.go, part of gopmhc.
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

package modeling

import (
	"fmt"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/library"
)

//AnchorPredictor predicts the anchor positions of a peptide bound to an MHC.
//Any library.Predictor is an AnchorPredictor.
type AnchorPredictor = library.Predictor

//ResolveAnchors makes sure the target T has anchors. If it has none, they are obtained from p.
//Predicted anchors must be as many as usual for the class of T (2 for class I, 4 for class II)
//and valid for its peptide.
func ResolveAnchors(T *pmhc.Target, p AnchorPredictor) error {
	if T.HasAnchors() {
		return pmhc.Decorate(pmhc.ValidateAnchors(T.Anchors, len(T.Peptide)), "ResolveAnchors")
	}
	if p == nil {
		return pmhc.NewError(pmhc.ValidationFailure, T.ID, "no anchors given and no way to predict them")
	}
	anchors, err := p.PredictAnchors(T.Peptide, T.Alleles, T.Class)
	if err != nil {
		return pmhc.Errorf(pmhc.ValidationFailure, T.ID, "anchor prediction failed: %w", err)
	}
	if len(anchors) != T.Class.AnchorCount() {
		return pmhc.NewError(pmhc.ValidationFailure, T.ID, fmt.Sprintf("%d anchors predicted, %d expected for MHC class %v", len(anchors), T.Class.AnchorCount(), T.Class))
	}
	if err := pmhc.ValidateAnchors(anchors, len(T.Peptide)); err != nil {
		return pmhc.Decorate(err, "ResolveAnchors")
	}
	T.Anchors = anchors
	return nil
}

//Canonical predicts the most common anchor positions, from the peptide length alone.
//For class I these are the second and the last residues. For class II, positions 1, 4, 6 and 9 of a 9-residue core
//centered in the peptide.
type Canonical struct{}

//PredictAnchors returns the canonical anchors for peptide.
func (Canonical) PredictAnchors(peptide string, alleles []string, class pmhc.Class) ([]int, error) {
	l := len(peptide)
	switch class {
	case pmhc.ClassI:
		if l < 3 {
			return nil, fmt.Errorf("PredictAnchors: peptide %q too short", peptide)
		}
		return []int{2, l}, nil
	case pmhc.ClassII:
		if l < 9 {
			return nil, fmt.Errorf("PredictAnchors: peptide %q shorter than a class II core", peptide)
		}
		off := (l - 9) / 2
		return []int{off + 1, off + 4, off + 6, off + 9}, nil
	}
	return nil, fmt.Errorf("PredictAnchors: unknown MHC class %v", class)
}

//LoopRanges returns the peptide segments (first and last residue, both included) that the modeling engine
//is allowed to move, given the anchors a1..an of a peptide with peplen residues. For class I, that is
//the single segment [a1, an]. For class II, the segments are [1, a1], [ai+2, ai+1] for each pair of
//consecutive anchors, and [an+2, peplen]. Each segment but the last ends on an anchor, and the only
//residues left out are the ones right after each anchor.
func LoopRanges(class pmhc.Class, anchors []int, peplen int) [][2]int {
	if len(anchors) == 0 {
		return nil
	}
	if class == pmhc.ClassI {
		return [][2]int{{anchors[0], anchors[len(anchors)-1]}}
	}
	ret := [][2]int{{1, anchors[0]}}
	for i := 0; i < len(anchors)-1; i++ {
		ret = append(ret, [2]int{anchors[i] + 2, anchors[i+1]})
	}
	return append(ret, [2]int{anchors[len(anchors)-1] + 2, peplen})
}
