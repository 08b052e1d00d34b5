package clean

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/internal/fixture"
	"github.com/rmera/gopmhc/library"
	"gonum.org/v1/gonum/spatial/r3"
)

func errql(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func setup(Te *testing.T, class pmhc.Class) *Options {
	dir := Te.TempDir()
	O := DefaultOptions(class)
	O.InDir = filepath.Join(dir, "raw")
	O.OutDir = filepath.Join(dir, "clean")
	O.BadDir = filepath.Join(dir, "bad")
	O.LogDir = dir
	for _, d := range []string{O.InDir, O.OutDir, O.BadDir} {
		errql(Te, os.MkdirAll(d, 0755))
	}
	O.Workers = 2
	O.Logger = log.New(io.Discard, "", 0)
	return O
}

func write(Te *testing.T, O *Options, S *pmhc.Structure) {
	_, err := fixture.WriteGz(O.InDir, O.Prefix+S.ID+O.Suffix, S)
	errql(Te, err)
}

func expectRejection(Te *testing.T, C *Cleaner, id, reason string) {
	Te.Helper()
	_, err := C.Clean(id)
	if err == nil {
		Te.Fatalf("%s should have been rejected with %q", id, reason)
	}
	e, ok := err.(*pmhc.Error)
	if !ok || e.Reason() != reason {
		Te.Errorf("%s rejected with %v, expected %q", id, err, reason)
	}
	entries, err := C.Log().Entries()
	errql(Te, err)
	if entries[id] != reason {
		Te.Errorf("log says %q for %s, expected %q", entries[id], id, reason)
	}
}

//a heavy chain M, of 250 residues and a 9-residue peptide P.
func scenarioOne() *pmhc.Structure {
	S := &pmhc.Structure{ID: "1S01"}
	S.Header = append([]string{fixture.Resolution(2.5)},
		fixture.IMGTBlock("1S01", "M", pmhc.ClassIAlpha, fixture.Domain{Name: "G-ALPHA1", Alleles: []string{"HLA-A*0201", "HLA-A*0209"}})...)
	S.Chains = []*pmhc.Chain{
		fixture.Chain("M", fixture.Poly(250), r3.Vec{}),
		fixture.Chain("P", "NLVPMVATV", r3.Vec{X: 20, Y: 4}),
	}
	return S
}

func TestScenarioOne(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	write(Te, O, scenarioOne())
	lib := library.New()
	C := New(O, lib)
	T, err := C.Clean("1S01")
	errql(Te, err)
	fmt.Println("Template:", T.ID, T.Alleles, T.Peptide, T.Resolution)
	if T.Peptide != "NLVPMVATV" || len(T.Heavy) != 250 || T.Light != "" {
		Te.Errorf("Wrong sequences in template: %s %d %s", T.Peptide, len(T.Heavy), T.Light)
	}
	if strings.Join(T.Alleles, " ") != "HLA-A*0201 HLA-A*0209" {
		Te.Errorf("Wrong alleles %v", T.Alleles)
	}
	if T.Resolution != 2.5 {
		Te.Errorf("Wrong resolution %f", T.Resolution)
	}
	if lib.Len(pmhc.ClassI) != 1 {
		Te.Errorf("Template not in library")
	}
	S, err := pmhc.PDBFileRead(T.Path)
	errql(Te, err)
	if ids := strings.Join(S.ChainIDs(), ""); ids != "HP" {
		Te.Errorf("Cleaned structure has chains %s", ids)
	}
	if S.Chain("P").Len() != 9 || S.Chain("P").Residues[0].Num != 1 {
		Te.Errorf("Wrong peptide chain in the cleaned structure")
	}
	if len(S.Header) == 0 || !strings.HasPrefix(S.Header[0], "REMARK   2") {
		Te.Errorf("Header not kept in the cleaned structure")
	}
}

func TestScenarioTwo(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	S := scenarioOne()
	S.ID = "1S02"
	S.Chains[1] = fixture.Chain("P", fixture.Poly(30), r3.Vec{X: 20, Y: 4})
	write(Te, O, S)
	C := New(O, nil)
	expectRejection(Te, C, "1S02", ReasonNoPeptide)
	if _, err := os.Stat(filepath.Join(O.BadDir, "1S02.pdb")); err != nil {
		Te.Errorf("Rejected structure not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(O.OutDir, "1S02.pdb")); err == nil {
		Te.Errorf("Rejected structure written to the output directory")
	}
}

func TestIdempotence(Te *testing.T) {
	for _, c := range []pmhc.Class{pmhc.ClassI, pmhc.ClassII} {
		O := setup(Te, c)
		var S *pmhc.Structure
		if c == pmhc.ClassI {
			S = fixture.ClassI("1ID1", "SIINFEKL")
		} else {
			S = fixture.FusedClassII("1ID1", "PKYVKQNTLKLAT")
		}
		write(Te, O, S)
		T, err := New(O, nil).Clean("1ID1")
		errql(Te, err)
		first, err := pmhc.PDBFileRead(T.Path)
		errql(Te, err)
		second := first.Copy()
		_, err = Prepare(second, O)
		errql(Te, err)
		a, b := first.Sequences(), second.Sequences()
		if strings.Join(first.ChainIDs(), "") != strings.Join(second.ChainIDs(), "") {
			Te.Errorf("class %v: chains %v then %v", c, first.ChainIDs(), second.ChainIDs())
		}
		for k, v := range a {
			if b[k] != v {
				Te.Errorf("class %v: chain %s changed when cleaned twice", c, k)
			}
		}
		if second.Len() != first.Len() {
			Te.Errorf("class %v: %d atoms, then %d", c, first.Len(), second.Len())
		}
	}
}

func TestClassII(Te *testing.T) {
	O := setup(Te, pmhc.ClassII)
	write(Te, O, fixture.ClassII("2C01", "PKYVKQNTLKLAT"))
	T, err := New(O, nil).Clean("2C01")
	errql(Te, err)
	if len(T.Heavy) != 182 || len(T.Light) != 190 || T.Peptide != "PKYVKQNTLKLAT" {
		Te.Errorf("Wrong class II template %d %d %s", len(T.Heavy), len(T.Light), T.Peptide)
	}
	if strings.Join(T.Alleles, " ") != "HLA-DRA*0101 HLA-DRB1*0101" {
		Te.Errorf("Wrong alleles %v", T.Alleles)
	}
	S, err := pmhc.PDBFileRead(T.Path)
	errql(Te, err)
	if ids := strings.Join(S.ChainIDs(), ""); ids != "HLP" {
		Te.Errorf("Cleaned structure has chains %s", ids)
	}
}

func TestFusedPeptide(Te *testing.T) {
	O := setup(Te, pmhc.ClassII)
	write(Te, O, fixture.FusedClassII("2F01", "PKYVKQNTLKLAT"))
	T, err := New(O, nil).Clean("2F01")
	errql(Te, err)
	if T.Peptide != "PKYVKQNTLKLAT" {
		Te.Errorf("Wrong peptide split from the beta chain: %s", T.Peptide)
	}
	if len(T.Light) != 190 {
		Te.Errorf("Beta chain with %d residues after the split", len(T.Light))
	}
}

func TestModifiedResidues(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	S := fixture.ClassI("1M01", "NLVPMVATV")
	r := S.Chain("C").Residues[4]
	r.Name = "SEP"
	r.Het = true
	r.Atoms = append(r.Atoms, &pmhc.Atom{Name: "P", Symbol: "P", Coord: r3.Vec{X: 35, Y: 7}})
	write(Te, O, S)
	T, err := New(O, nil).Clean("1M01")
	errql(Te, err)
	if T.Peptide != "NLVPSVATV" {
		Te.Errorf("Phosphoserine not reverted: %s", T.Peptide)
	}
	C, err := pmhc.PDBFileRead(T.Path)
	errql(Te, err)
	res := C.Chain("P").Residue(5)
	if res.Het || res.Atom("P") != nil {
		Te.Errorf("Phosphoserine not reverted in the structure")
	}
}

func TestPeptideProblems(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	gap := fixture.ClassI("1G01", "NLVPMVATV")
	for _, r := range gap.Chain("C").Residues[5:] {
		for _, a := range r.Atoms {
			a.Coord.X += 2
		}
	}
	write(Te, O, gap)
	nc := fixture.ClassI("1N01", "NLVPMVATV")
	nc.Chain("C").Residues[3].Name = "NLE"
	write(Te, O, nc)
	C := New(O, nil)
	expectRejection(Te, C, "1G01", ReasonPeptideGap)
	expectRejection(Te, C, "1N01", ReasonNonCanonical)
}

func TestGroove(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	in := fixture.ClassI("1L01", "NLVPMVATV")
	b := in.Chain("B")
	b.Residues = append(b.Residues, fixture.Hetero("GOL", 201, r3.Vec{X: 27, Y: 2}))
	write(Te, O, in)
	out := fixture.ClassI("1L02", "NLVPMVATV")
	b = out.Chain("B")
	b.Residues = append(b.Residues, fixture.Hetero("GOL", 201, r3.Vec{X: 27, Y: -10}))
	write(Te, O, out)
	water := fixture.ClassI("1L03", "NLVPMVATV")
	b = water.Chain("B")
	b.Residues = append(b.Residues, fixture.Hetero("HOH", 301, r3.Vec{X: 27, Y: 2}))
	write(Te, O, water)
	C := New(O, nil)
	expectRejection(Te, C, "1L01", ReasonGroove)
	_, err := C.Clean("1L02")
	errql(Te, err)
	_, err = C.Clean("1L03")
	errql(Te, err)
}

func TestGrooveLigands(Te *testing.T) {
	O := DefaultOptions(pmhc.ClassI)
	S := fixture.ClassI("1L04", "NLVPMVATV")
	S.Chain("B").Residues = append(S.Chain("B").Residues, fixture.Hetero("GOL", 201, r3.Vec{X: 27, Y: 2}))
	S.Chain("A").Residues = append(S.Chain("A").Residues, fixture.Hetero("NAG", 301, r3.Vec{X: 27, Y: 2}))
	junk, err := GrooveLigands(S, pmhc.ClassI, []string{"A"}, "C", O)
	errql(Te, err)
	if len(junk) != 1 || junk[0] != "B/GOL201" {
		Te.Errorf("Wrong groove ligands %v", junk)
	}
	far := fixture.ClassI("1L05", "NLVPMVATV")
	for _, r := range far.Chain("C").Residues {
		for _, a := range r.Atoms {
			a.Coord.Y += 30
		}
	}
	if _, err := GrooveLigands(far, pmhc.ClassI, []string{"A"}, "C", O); err == nil {
		Te.Errorf("A peptide far from the groove should be an error")
	}
}

func TestReceptorMinLength(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	short := fixture.ClassI("1R01", "NLVPMVATV")
	short.Chains[0] = fixture.Chain("A", fixture.Poly(120), r3.Vec{})
	write(Te, O, short)
	enough := fixture.ClassI("1R02", "NLVPMVATV")
	enough.Chains[0] = fixture.Chain("A", fixture.Poly(121), r3.Vec{})
	write(Te, O, enough)
	C := New(O, nil)
	expectRejection(Te, C, "1R01", ReasonNoReceptor)
	T, err := C.Clean("1R02")
	errql(Te, err)
	if len(T.Heavy) <= 120 {
		Te.Errorf("Heavy chain too short in template: %d", len(T.Heavy))
	}
}

func TestAllelesMissing(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	S := fixture.ClassI("1A01", "NLVPMVATV")
	S.Header = append(S.Header[:2], fixture.IMGTBlock("1A01", "A", pmhc.ClassIAlpha)...)
	write(Te, O, S)
	expectRejection(Te, New(O, nil), "1A01", ReasonAlleles)
	left, err := os.ReadDir(O.OutDir)
	errql(Te, err)
	if len(left) != 0 {
		Te.Errorf("Files left in the output directory: %v", left)
	}
}

func TestNoAlphaRemarks(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	S := fixture.ClassI("1A02", "NLVPMVATV")
	S.Header = S.Header[:2]
	write(Te, O, S)
	expectRejection(Te, New(O, nil), "1A02", ReasonNoReceptor)
}

func TestAllowedNotShared(Te *testing.T) {
	O := DefaultOptions(pmhc.ClassI)
	O.Logger = log.New(io.Discard, "", 0)
	O.Chains.Allowed = make([]string, 0, 4)
	_, err := Prepare(fixture.ClassI("1A03", "NLVPMVATV"), O)
	errql(Te, err)
	if len(O.Chains.Allowed) != 0 || O.Chains.Allowed[:1][0] != "" {
		Te.Errorf("Prepare wrote to the allowed chains of the options: %v", O.Chains.Allowed[:1])
	}
}

func TestCleanTwice(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	write(Te, O, fixture.ClassI("1P01", "NLVPMVATV"))
	lib := library.New()
	C := New(O, lib)
	T, err := C.Clean("1P01")
	errql(Te, err)
	info, err := os.Stat(T.Path)
	errql(Te, err)
	T2, err := C.Clean("1P01")
	if err != ErrPresent || T2 == nil || T2.Path != T.Path {
		Te.Fatalf("Second cleaning gave %v, %v", T2, err)
	}
	info2, err := os.Stat(T.Path)
	errql(Te, err)
	if !info2.ModTime().Equal(info.ModTime()) || info2.Size() != info.Size() {
		Te.Errorf("Cleaned structure rewritten")
	}
	entries, err := C.Log().Entries()
	errql(Te, err)
	if _, ok := entries["1P01"]; ok {
		Te.Errorf("Structure in the library logged as rejected")
	}
	R := New(O, lib).Batch(context.Background(), []string{"1P01"})
	fmt.Println(R)
	if len(R.Present) != 1 || len(R.Cleaned) != 0 || len(R.Rejected) != 0 {
		Te.Errorf("Wrong report for a structure in the library: %v", R)
	}
	files, err := os.ReadDir(O.OutDir)
	errql(Te, err)
	if len(files) != 1 || files[0].Name() != "1P01.pdb" || lib.Len(pmhc.ClassI) != 1 {
		Te.Errorf("Wrong output directory %v", files)
	}
}

func TestAnchorOption(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	O.Anchors = map[string][]int{"1K01": {2, 9}, "1K02": {0, 9}}
	write(Te, O, fixture.ClassI("1K01", "NLVPMVATV"))
	write(Te, O, fixture.ClassI("1K02", "NLVPMVATV"))
	C := New(O, nil)
	T, err := C.Clean("1K01")
	errql(Te, err)
	if len(T.Anchors) != 2 || T.Anchors[0] != 2 || T.Anchors[1] != 9 {
		Te.Errorf("Anchors not set: %v", T.Anchors)
	}
	T, err = C.Clean("1K02")
	errql(Te, err)
	if T.HasAnchors() {
		Te.Errorf("Invalid anchors set: %v", T.Anchors)
	}
}

func TestBatch(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	for _, id := range []string{"1B01", "1B03"} {
		write(Te, O, fixture.ClassI(id, "NLVPMVATV"))
	}
	errql(Te, os.WriteFile(O.Source("1B02"), nil, 0644))
	lib := library.New()
	C := New(O, lib)
	ids, err := Discover(O.InDir, O.Prefix, O.Suffix)
	errql(Te, err)
	if strings.Join(ids, " ") != "1B01 1B02 1B03" {
		Te.Fatalf("Discover gave %v", ids)
	}
	R := C.Batch(context.Background(), ids)
	fmt.Println(R)
	if strings.Join(R.Cleaned, " ") != "1B01 1B03" || len(R.Rejected) != 1 {
		Te.Errorf("Wrong batch report %v %v", R.Cleaned, R.Rejected)
	}
	data, err := os.ReadFile(O.LogName())
	errql(Te, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || lines[0] != "ID,error" || lines[1] != "1B02,"+ReasonSource {
		Te.Errorf("Wrong log:\n%s", data)
	}
	if lib.Len(pmhc.ClassI) != 2 {
		Te.Errorf("%d templates in library, expected 2", lib.Len(pmhc.ClassI))
	}
}

func TestBatchCancelled(Te *testing.T) {
	O := setup(Te, pmhc.ClassI)
	write(Te, O, fixture.ClassI("1B04", "NLVPMVATV"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	R := New(O, nil).Batch(ctx, []string{"1B04"})
	if len(R.Skipped) != 1 || len(R.Cleaned) != 0 {
		Te.Errorf("Cancelled batch processed structures: %v", R)
	}
}

func TestCheckShape(Te *testing.T) {
	O := DefaultOptions(pmhc.ClassI)
	S := &pmhc.Structure{ID: "shape"}
	S.Chains = []*pmhc.Chain{
		fixture.Chain("H", fixture.Poly(150), r3.Vec{}),
		fixture.Chain("P", fixture.Poly(9), r3.Vec{Y: 4}),
	}
	errql(Te, CheckShape(S, pmhc.ClassI, O.Chains))
	S.Chains[1].Residues[0].Num = 2
	if CheckShape(S, pmhc.ClassI, O.Chains) == nil {
		Te.Errorf("Peptide numbered from 2 passed the check")
	}
	S.Chains[1].Renumber()
	if CheckShape(S, pmhc.ClassII, O.Chains) == nil {
		Te.Errorf("Class I structure passed as class II")
	}
}
