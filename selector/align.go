/*
 * align.go, part of gopmhc.
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

package selector

import (
	"fmt"
	"math"
	"strings"

	pmhc "github.com/rmera/gopmhc"
)

//LengthPenaltyExp is the exponent of the length difference in the penalty
//used when peptides are compared position by position.
const LengthPenaltyExp = 2.4

//Alignment is a pairwise alignment of the target (A) and template (B) peptides.
type Alignment struct {
	A, B     string
	Columns  []float64 //score of each compared column
	Penalty  float64   //length-mismatch penalty, only for position-wise comparisons.
	Anchored bool
}

//Score returns the total score of the alignment.
func (A *Alignment) Score() float64 {
	s := -A.Penalty
	for _, v := range A.Columns {
		s += v
	}
	return s
}

//Gaps returns the number of gaps inserted in each sequence.
func (A *Alignment) Gaps() (int, int) {
	return strings.Count(A.A, string(Gap)), strings.Count(A.B, string(Gap))
}

//String returns the alignment in two lines.
func (A *Alignment) String() string {
	return fmt.Sprintf("%s\n%s", A.A, A.B)
}

//scoreColumns fills the column scores of the alignment with the matrix M.
func (A *Alignment) scoreColumns(M Matrix, n int) {
	A.Columns = make([]float64, n)
	for i := 0; i < n; i++ {
		s, ok := M.Score(A.A[i], A.B[i])
		if !ok {
			s = MissingPenalty
		}
		A.Columns[i] = s
	}
}

func gaps(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(Gap), n)
}

//padLeft adds gaps to the start of the shorter of a and b until they are equally long.
func padLeft(a, b string) (string, string) {
	return gaps(len(b)-len(a)) + a, gaps(len(a)-len(b)) + b
}

//padRight does the same at the end.
func padRight(a, b string) (string, string) {
	return a + gaps(len(b)-len(a)), b + gaps(len(a)-len(b))
}

//padMiddle inserts the gaps in the middle of the shorter sequence.
func padMiddle(a, b string) (string, string) {
	mid := func(s string, n int) string {
		if n <= 0 {
			return s
		}
		m := len(s) / 2
		return s[:m] + gaps(n) + s[m:]
	}
	return mid(a, len(b)-len(a)), mid(b, len(a)-len(b))
}

//AnchorAlign aligns the target peptide a with the template peptide b so their
//first anchors fall in the same column, and so do their last anchors. The
//segments between the first and last anchor (both included) are made equally long
//by inserting gaps in the middle of the shorter one. The segments before the first anchor
//get gaps at their start, and the ones after the last anchor at their end. Only the first and the last anchors
//are used. The anchors must be valid for their peptides.
func AnchorAlign(a, b string, anchA, anchB []int, M Matrix) (*Alignment, error) {
	if len(anchA) == 0 || len(anchB) == 0 {
		return nil, pmhc.NewError(pmhc.ValidationFailure, "", "AnchorAlign: both peptides need anchors")
	}
	if err := pmhc.ValidateAnchors(anchA, len(a)); err != nil {
		return nil, pmhc.Decorate(err, "AnchorAlign")
	}
	if err := pmhc.ValidateAnchors(anchB, len(b)); err != nil {
		return nil, pmhc.Decorate(err, "AnchorAlign")
	}
	fa, la := anchA[0], anchA[len(anchA)-1]
	fb, lb := anchB[0], anchB[len(anchB)-1]
	headA, headB := padLeft(a[:fa-1], b[:fb-1])
	coreA, coreB := padMiddle(a[fa-1:la], b[fb-1:lb])
	tailA, tailB := padRight(a[la:], b[lb:])
	al := &Alignment{A: headA + coreA + tailA, B: headB + coreB + tailB, Anchored: true}
	al.scoreColumns(M, len(al.A))
	return al, nil
}

//PositionalAlign compares a and b position by position, over the length of the
//shorter one, and penalizes the length difference with |diff|^LengthPenaltyExp.
//The unpaired residues of the longer peptide are shown against gaps, but not scored.
func PositionalAlign(a, b string, M Matrix) *Alignment {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	al := &Alignment{}
	al.A, al.B = padRight(a, b)
	al.Penalty = math.Pow(math.Abs(float64(len(a)-len(b))), LengthPenaltyExp)
	al.scoreColumns(M, n)
	return al
}
