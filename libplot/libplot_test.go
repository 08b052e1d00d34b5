package libplot

import (
	"os"
	"path/filepath"
	"testing"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/library"
	"github.com/rmera/gopmhc/selector"
)

func TestPlots(Te *testing.T) {
	L := library.New()
	for i, p := range []string{"NLVPMVATV", "SIINFEKL", "GILGFVFTL", "KPIVQYDNFKL"} {
		t := &pmhc.Template{Resolution: 1.5 + float64(i)/2}
		t.ID = string(rune('A'+i)) + "XYZ"
		t.Class = pmhc.ClassI
		t.Peptide = p
		t.Alleles = []string{"HLA-A*0201"}
		if err := L.Add(t); err != nil {
			Te.Fatal(err)
		}
	}
	S := L.Snapshot()
	dir := Te.TempDir()
	names := []string{filepath.Join(dir, "len.png"), filepath.Join(dir, "res.svg"), filepath.Join(dir, "scores.png")}
	if err := PeptideLengths(S, pmhc.ClassI, names[0]); err != nil {
		Te.Error(err)
	}
	if err := Resolutions(S, pmhc.ClassI, names[1]); err != nil {
		Te.Error(err)
	}
	T, err := pmhc.NewTarget("AXYZ", pmhc.ClassI, "NLVPMVATV", []string{"HLA-A*0201"}, nil, "", "")
	if err != nil {
		Te.Fatal(err)
	}
	O := selector.DefaultOptions()
	O.BestN = 4
	R, err := selector.FindTemplate(T, S, O)
	if err != nil {
		Te.Fatal(err)
	}
	if err := Scores(R, "Templates for AXYZ", names[2]); err != nil {
		Te.Error(err)
	}
	for _, v := range names {
		if info, err := os.Stat(v); err != nil || info.Size() == 0 {
			Te.Errorf("Plot %s not written", v)
		}
	}
	if err := PeptideLengths(S, pmhc.ClassII, filepath.Join(dir, "none.png")); err == nil {
		Te.Errorf("Plot without data should fail")
	}
}
