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

package modeling

import (
	"math"

	"github.com/rmera/gopmhc/selector"
)

//NeedlemanWunsch returns the optimal global alignment of a and b, scored with M and a
//linear gap penalty gap (a negative number). Pairs not in M score selector.MissingPenalty.
//The returned strings are equally long, with selector.Gap in the gaps.
func NeedlemanWunsch(a, b string, M selector.Matrix, gap float64) (string, string) {
	score := func(x, y byte) float64 {
		s, ok := M.Score(x, y)
		if !ok {
			return selector.MissingPenalty
		}
		return s
	}
	//matrix[i][j] is the best score for a[:i] and b[:j]
	matrix := make([][]float64, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]float64, len(b)+1)
		matrix[i][0] = gap * float64(i)
	}
	for j := range matrix[0] {
		matrix[0][j] = gap * float64(j)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			matrix[i][j] = math.Max(matrix[i-1][j-1]+score(a[i-1], b[j-1]),
				math.Max(matrix[i-1][j]+gap, matrix[i][j-1]+gap))
		}
	}
	//Trace back from the lower right corner. Diagonal moves are preferred.
	ra := make([]byte, 0, len(a)+len(b))
	rb := make([]byte, 0, len(a)+len(b))
	i, j := len(a), len(b)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && matrix[i][j] == matrix[i-1][j-1]+score(a[i-1], b[j-1]):
			ra = append(ra, a[i-1])
			rb = append(rb, b[j-1])
			i--
			j--
		case i > 0 && matrix[i][j] == matrix[i-1][j]+gap:
			ra = append(ra, a[i-1])
			rb = append(rb, selector.Gap)
			i--
		default:
			ra = append(ra, selector.Gap)
			rb = append(rb, b[j-1])
			j--
		}
	}
	//Since we built the alignment backwards, we must reverse it.
	for i, j := 0, len(ra)-1; i < j; i, j = i+1, j-1 {
		ra[i], ra[j] = ra[j], ra[i]
		rb[i], rb[j] = rb[j], rb[i]
	}
	return string(ra), string(rb)
}

//positionMap returns, for each residue of the first sequence of the
//alignment (1-based), the residue of the second aligned to it, or 0.
func positionMap(a, b string) map[int]int {
	ret := make(map[int]int)
	pa, pb := 0, 0
	for c := 0; c < len(a) && c < len(b); c++ {
		if a[c] != selector.Gap {
			pa++
		}
		if b[c] != selector.Gap {
			pb++
		}
		if a[c] != selector.Gap && b[c] != selector.Gap {
			ret[pa] = pb
		}
	}
	return ret
}
