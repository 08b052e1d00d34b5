/*
 * fixture.go, part of gopmhc.
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

//Package fixture builds synthetic pMHC structures, with ideal backbone geometry,
//for tests.
package fixture

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	pmhc "github.com/rmera/gopmhc"
	"gonum.org/v1/gonum/spatial/r3"
)

//Rise is the distance between consecutive CAs in a synthetic chain, along x.
const Rise = 3.8

var one2Three = map[byte]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
	'Q': "GLN", 'E': "GLU", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
	'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

func atom(name string, c r3.Vec) *pmhc.Atom {
	return &pmhc.Atom{Name: name, Symbol: name[:1], Occupancy: 1, Coord: c}
}

//Residues returns one backbone residue (N, CA, C, O) per letter of seq, numbered from first,
//with the CA of the residue i at origin+(Rise*i, 0, 0).
func Residues(seq string, origin r3.Vec, first int) []*pmhc.Residue {
	ret := make([]*pmhc.Residue, 0, len(seq))
	for i := 0; i < len(seq); i++ {
		name, ok := one2Three[seq[i]]
		if !ok {
			name = "UNK"
		}
		ca := r3.Add(origin, r3.Vec{X: Rise * float64(i)})
		r := &pmhc.Residue{Name: name, Num: first + i, ICode: ' '}
		r.Atoms = []*pmhc.Atom{
			atom("N", r3.Sub(ca, r3.Vec{X: 1.45})),
			atom("CA", ca),
			atom("C", r3.Add(ca, r3.Vec{X: 1, Y: 1})),
			atom("O", r3.Add(ca, r3.Vec{X: 1, Y: 2.2})),
		}
		ret = append(ret, r)
	}
	return ret
}

//Chain returns a chain made by Residues, numbered from 1.
func Chain(id, seq string, origin r3.Vec) *pmhc.Chain {
	return &pmhc.Chain{ID: id, Residues: Residues(seq, origin, 1)}
}

//Poly returns a sequence of n residues, cycling through the canonical aminoacids.
func Poly(n int) string {
	const aas = "ARNDCQEGHILKMFPSTWYV"
	b := make([]byte, n)
	for i := range b {
		b[i] = aas[i%len(aas)]
	}
	return string(b)
}

//Hetero returns a HETATM residue with a single atom at c.
func Hetero(name string, num int, c r3.Vec) *pmhc.Residue {
	return &pmhc.Residue{Name: name, Num: num, ICode: ' ', Het: true, Atoms: []*pmhc.Atom{atom("C1", c)}}
}

//Domain is a G-domain with its alleles, for the IMGT remarks.
type Domain struct {
	Name    string
	Alleles []string
}

//IMGTBlock returns the REMARK 410 lines describing the chain of the structure pdbid.
func IMGTBlock(pdbid, chain, description string, domains ...Domain) []string {
	pc := pdbid + "_" + chain
	ret := []string{
		fmt.Sprintf("REMARK 410 Chain ID %s (%s%s)", pc, pdbid, chain),
		fmt.Sprintf("REMARK 410 %s Chain description: %s", pc, description),
	}
	for _, d := range domains {
		ret = append(ret, "REMARK 410 G-DOMAIN IMGT domain description "+d.Name)
		var b bytes.Buffer
		for i, a := range d.Alleles {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "Homo sapiens %s (100.0%%)", a)
		}
		ret = append(ret, "REMARK 410 G-DOMAIN IMGT gene and allele "+b.String())
		ret = append(ret, "REMARK 410 G-DOMAIN IMGT domain description C-LIKE")
	}
	return ret
}

//Resolution returns a REMARK 2 resolution line.
func Resolution(r float64) string {
	return fmt.Sprintf("REMARK   2 RESOLUTION.    %.2f ANGSTROMS.", r)
}

//ClassI returns a class I complex: a heavy chain A of 180 residues (HLA-A*0201 in the remarks),
//a beta-2 microglobulin chain B of 99 residues, away from everything else, and the peptide pep as
//chain C, running along the heavy chain 4 A above it.
func ClassI(id, pep string) *pmhc.Structure {
	S := &pmhc.Structure{ID: id}
	S.Header = append([]string{"HEADER    IMMUNE SYSTEM", Resolution(2.1)},
		IMGTBlock(id, "A", pmhc.ClassIAlpha, Domain{"G-ALPHA1", []string{"HLA-A*0201"}}, Domain{"G-ALPHA2", []string{"HLA-A*0201"}})...)
	S.Chains = []*pmhc.Chain{
		Chain("A", Poly(180), r3.Vec{}),
		Chain("B", Poly(99), r3.Vec{Y: 60}),
		Chain("C", pep, r3.Vec{X: 20, Y: 4}),
	}
	return S
}

//ClassII returns a class II complex: an alpha chain A of 182 residues (HLA-DRA*0101), a
//beta chain B of 190 residues (HLA-DRB1*0101), 8 A above it, and the peptide pep as chain C,
//between the two.
func ClassII(id, pep string) *pmhc.Structure {
	S := &pmhc.Structure{ID: id}
	S.Header = []string{"HEADER    IMMUNE SYSTEM", Resolution(1.8)}
	S.Header = append(S.Header, IMGTBlock(id, "A", pmhc.ClassIIAlpha, Domain{"G-ALPHA", []string{"HLA-DRA*0101"}})...)
	S.Header = append(S.Header, IMGTBlock(id, "B", pmhc.ClassIIBeta, Domain{"G-BETA", []string{"HLA-DRB1*0101"}})...)
	S.Chains = []*pmhc.Chain{
		Chain("A", Poly(182), r3.Vec{}),
		Chain("B", Poly(190), r3.Vec{Y: 8}),
		Chain("C", pep, r3.Vec{X: 20, Y: 4}),
	}
	return S
}

//FusedClassII is ClassII with the peptide fused, through a 5-residue linker, to the N-terminus
//of the beta chain, as annotated in the remarks.
func FusedClassII(id, pep string) *pmhc.Structure {
	S := ClassII(id, pep)
	S.Chains = S.Chains[:2]
	beta := S.Chains[1]
	res := Residues(pep, r3.Vec{X: 20, Y: 4}, 1)
	res = append(res, Residues("GGSGG", r3.Vec{Y: 30}, len(pep)+1)...)
	for i, r := range beta.Residues {
		r.Num = len(res) + i + 1
	}
	beta.Residues = append(res, beta.Residues...)
	S.Header = append(S.Header, fmt.Sprintf("REMARK 410 %s_B [PEPTIDE(1-%d)][D1]", id, len(pep)+5))
	return S
}

//Bytes returns S in PDB format.
func Bytes(S *pmhc.Structure) ([]byte, error) {
	var b bytes.Buffer
	if err := pmhc.PDBWrite(&b, S); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

//WriteGz writes S, gzipped, to dir/name, and returns the full name of the file.
func WriteGz(dir, name string, S *pmhc.Structure) (string, error) {
	data, err := Bytes(S)
	if err != nil {
		return "", err
	}
	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	return full, f.Close()
}
