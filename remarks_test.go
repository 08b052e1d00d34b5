package pmhc_test

import (
	"fmt"
	"testing"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/internal/fixture"
)

func TestIMGTChains(Te *testing.T) {
	chains := pmhc.IMGTChains(fixture.ClassII("2AAA", "PKYVKQNTLKLAT").Header)
	if len(chains) != 2 {
		Te.Fatalf("%d IMGT chains, expected 2", len(chains))
	}
	a, b := chains[0], chains[1]
	if a.ID != "A" || a.Description != pmhc.ClassIIAlpha || b.ID != "B" || b.Description != pmhc.ClassIIBeta {
		Te.Errorf("Wrong chains %+v %+v", a, b)
	}
	if len(a.Alleles) != 1 || a.Alleles[0].Name != "HLA-DRA*0101" || a.Alleles[0].Domain != "G-ALPHA" || a.Alleles[0].Identity != 100 {
		Te.Errorf("Wrong alleles %+v", a.Alleles)
	}
	if got := pmhc.IMGTChainsByDescription(chains, pmhc.ClassIIBeta); len(got) != 1 || got[0] != b {
		Te.Errorf("Wrong beta chains %v", got)
	}
	one := pmhc.IMGTChains(fixture.ClassI("1AAA", "NLVPMVATV").Header)
	if len(one) != 1 || len(one[0].Alleles) != 2 {
		Te.Fatalf("Wrong class I chains %v", one)
	}
	if n := one[0].AlleleNames(); fmt.Sprint(n) != "[HLA-A*0201]" {
		Te.Errorf("Wrong allele names %v", n)
	}
	if n := one[0].AlleleNames("G-BETA"); len(n) != 0 {
		Te.Errorf("Alleles from the wrong domain %v", n)
	}
}

func TestSeveralAlleles(Te *testing.T) {
	header := fixture.IMGTBlock("3AAA", "A", pmhc.ClassIAlpha,
		fixture.Domain{Name: "G-ALPHA1", Alleles: []string{"HLA-B*2705", "HLA-B*2709"}},
		fixture.Domain{Name: "G-ALPHA2", Alleles: []string{"HLA-B*2705"}})
	chains := pmhc.IMGTChains(header)
	if n := chains[0].AlleleNames(); fmt.Sprint(n) != "[HLA-B*2705 HLA-B*2709]" {
		Te.Errorf("Wrong allele names %v", n)
	}
	if n := chains[0].AlleleNames("G-ALPHA2"); fmt.Sprint(n) != "[HLA-B*2705]" {
		Te.Errorf("Wrong G-ALPHA2 alleles %v", n)
	}
}

func TestFusedPeptides(Te *testing.T) {
	S := fixture.FusedClassII("4AAA", "PKYVKQNTLKLAT")
	f := pmhc.FusedPeptides(S.Header)
	if len(f) != 1 || f[0] != (pmhc.PeptideRange{Chain: "B", Start: 1, End: 18}) {
		Te.Errorf("Wrong fused peptides %v", f)
	}
	if f := pmhc.FusedPeptides(fixture.ClassII("2AAA", "PKYVKQNTLKLAT").Header); len(f) != 0 {
		Te.Errorf("Fused peptides in a regular structure %v", f)
	}
}

func TestResolution(Te *testing.T) {
	cases := map[string]float64{
		fixture.Resolution(2.5):                                  2.5,
		"REMARK   2 RESOLUTION. NOT APPLICABLE.":                 0,
		"REMARK   3   RESOLUTION RANGE HIGH (ANGSTROMS) : 1.80": 0,
	}
	for line, exp := range cases {
		if r := pmhc.Resolution([]string{"HEADER    X", line}); r != exp {
			Te.Errorf("Resolution %f from %q, expected %f", r, line, exp)
		}
	}
}
