package allele

import (
	"fmt"
	"testing"
)

func TestNormalize(Te *testing.T) {
	available := []string{"HLA-A*0201", "HLA-B*0801", "H2-Kb"}
	names := []string{"HLA-A*02:01:01", "HLA-B*0801", "H2-Db", "Gaga-BF2*2101", "BoLA-T2c"}
	orig := append([]string(nil), names...)
	norm := Normalize(names, available)
	fmt.Println(names, "->", norm)
	expected := []string{"HLA-A*02", "HLA-B*0801", "H2-", "Gaga-BF2*2101", "BoLA-"}
	for i, v := range expected {
		if norm[i] != v {
			Te.Errorf("%s normalized to %s, expected %s", names[i], norm[i], v)
		}
	}
	for i := range names {
		if names[i] != orig[i] {
			Te.Errorf("Normalize modified its input")
		}
	}
}

//Names already among the available alleles are not changed.
func TestNormalizeNoop(Te *testing.T) {
	available := []string{"HLA-A*0201", "HLA-DRB1*0101", "SLA-1*0401", "Mamu-A1*00101"}
	norm := Normalize(available, available)
	for i, v := range available {
		if norm[i] != v {
			Te.Errorf("%s normalized to %s", v, norm[i])
		}
	}
	if len(Normalize(nil, available)) != 0 {
		Te.Errorf("Normalize made up alleles")
	}
}

func TestMatches(Te *testing.T) {
	if !Matches("HLA-A*02", "HLA-A*0201") || Matches("HLA-A*03", "HLA-A*0201") || Matches("", "HLA-A*0201") {
		Te.Errorf("Matches is wrong")
	}
	if !AnyMatch([]string{"HLA-B*08", "HLA-A*02"}, []string{"HLA-C*0702", "HLA-A*0211"}) {
		Te.Errorf("AnyMatch should have matched HLA-A*02")
	}
	if AnyMatch([]string{"HLA-B*08"}, []string{"HLA-A*0201"}) {
		Te.Errorf("AnyMatch matched different alleles")
	}
	sp, ok := SpeciesOf("MH1-B*2101")
	if !ok || sp.Name != "chicken" || sp.Truncations[0] != 8 {
		Te.Errorf("Wrong species %v for MH1-B*2101", sp)
	}
	if _, ok := SpeciesOf("XYZ-1"); ok {
		Te.Errorf("Unknown species found")
	}
}
