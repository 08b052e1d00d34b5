package library

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/internal/fixture"
)

func errql(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func tpl(id string, c pmhc.Class, peptide string, res float64, alleles ...string) *pmhc.Template {
	t := &pmhc.Template{Resolution: res, Path: "/data/pMHC" + c.String() + "/" + id + ".pdb"}
	t.ID = id
	t.Class = c
	t.Peptide = peptide
	t.Alleles = alleles
	t.Heavy = strings.Repeat("GSHSMRYFYT", 13)
	if c == pmhc.ClassII {
		t.Light = strings.Repeat("GDTRPRFLWQ", 13)
	}
	return t
}

func testLibrary(Te *testing.T) *Library {
	L := New()
	for _, t := range []*pmhc.Template{
		tpl("1AO7", pmhc.ClassI, "LLFGYPVYV", 2.6, "HLA-A*0201"),
		tpl("3PWN", pmhc.ClassI, "NLVPMVATV", 1.9, "HLA-A*0201", "HLA-A*0209"),
		tpl("1MI5", pmhc.ClassI, "FLRGRAYGL", 0, "HLA-B*0801"),
		tpl("1DLH", pmhc.ClassII, "PKYVKQNTLKLAT", 2.8, "HLA-DRA*0101", "HLA-DRB1*0101"),
	} {
		errql(Te, L.Add(t))
	}
	return L
}

func TestAdd(Te *testing.T) {
	L := testLibrary(Te)
	if L.Len(pmhc.ClassI) != 3 || L.Len(pmhc.ClassII) != 1 {
		Te.Errorf("Wrong library sizes %d %d", L.Len(pmhc.ClassI), L.Len(pmhc.ClassII))
	}
	//the same ID can't be in both classes.
	if err := L.Add(tpl("1AO7", pmhc.ClassII, "PKYVKQNTLKLAT", 2, "HLA-DRB1*0101")); err == nil {
		Te.Errorf("Template added twice")
	}
	bad := tpl("9XXX", pmhc.ClassI, "NLVPMVATV", 2, "HLA-A*0201")
	bad.Anchors = []int{9, 2}
	if err := L.Add(bad); !errors.Is(err, pmhc.ErrValidationFailure) {
		Te.Errorf("Template with bad anchors added, or wrong error: %v", err)
	}
	t, ok := L.Get("3PWN")
	if !ok {
		Te.Fatalf("3PWN not found")
	}
	t.Alleles[0] = "changed"
	t2, _ := L.Get("3PWN")
	if t2.Alleles[0] != "HLA-A*0201" {
		Te.Errorf("Library changed through a copy")
	}
	if !L.Remove("1MI5") || L.Remove("1MI5") || L.Len(pmhc.ClassI) != 2 {
		Te.Errorf("Remove failed")
	}
}

func TestSnapshot(Te *testing.T) {
	L := testLibrary(Te)
	S := L.Snapshot()
	errql(Te, L.Add(tpl("2BNR", pmhc.ClassI, "SLLMWITQC", 1.9, "HLA-A*0201")))
	errql(Te, L.SetAnchors("1AO7", []int{2, 9}))
	if len(S.Templates(pmhc.ClassI)) != 3 || S.Get("1AO7").HasAnchors() {
		Te.Errorf("Snapshot changed with the library")
	}
	ids := []string{}
	for _, t := range S.Templates(pmhc.ClassI) {
		ids = append(ids, t.ID)
	}
	if strings.Join(ids, " ") != "1AO7 1MI5 3PWN" {
		Te.Errorf("Snapshot not sorted by ID: %v", ids)
	}
	if a := S.Alleles(pmhc.ClassI); strings.Join(a, " ") != "HLA-A*0201 HLA-A*0209 HLA-B*0801" {
		Te.Errorf("Wrong alleles %v", a)
	}
	if len(S.All()) != 4 {
		Te.Errorf("Wrong number of templates in snapshot")
	}
}

func TestSetAnchors(Te *testing.T) {
	L := testLibrary(Te)
	if L.SetAnchors("1AO7", []int{2, 10}) == nil {
		Te.Errorf("Anchor outside the peptide accepted")
	}
	if err := L.SetAnchors("nope", []int{2, 9}); !errors.Is(err, pmhc.ErrNoCandidate) {
		Te.Errorf("Wrong error for a missing template: %v", err)
	}
}

type lengthPredictor struct{}

func (lengthPredictor) PredictAnchors(pep string, alleles []string, c pmhc.Class) ([]int, error) {
	if c == pmhc.ClassII {
		return []int{4, 7, 9}, nil //one short
	}
	return []int{2, len(pep)}, nil
}

func TestFillAnchors(Te *testing.T) {
	L := testLibrary(Te)
	errql(Te, L.SetAnchors("3PWN", []int{1, 9}))
	n, failed := L.FillAnchors(lengthPredictor{})
	if n != 2 || len(failed) != 1 || failed["1DLH"] == nil {
		Te.Errorf("FillAnchors filled %d, failed %v", n, failed)
	}
	t, _ := L.Get("3PWN")
	if t.Anchors[0] != 1 {
		Te.Errorf("Existing anchors replaced")
	}
	t, _ = L.Get("1AO7")
	if fmt.Sprint(t.Anchors) != "[2 9]" {
		Te.Errorf("Wrong anchors %v", t.Anchors)
	}
}

func TestRepath(Te *testing.T) {
	L := testLibrary(Te)
	L.Repath("/new")
	t, _ := L.Get("1DLH")
	if t.Path != filepath.Join("/new", "pMHCII", "1DLH.pdb") {
		Te.Errorf("Wrong path %s", t.Path)
	}
}

func TestSaveLoad(Te *testing.T) {
	L := testLibrary(Te)
	errql(Te, L.SetAnchors("1AO7", []int{2, 9}))
	dir := Te.TempDir()
	for _, name := range []string{"lib.json", "lib.json.gz", "lib.json.zst"} {
		full := filepath.Join(dir, name)
		errql(Te, L.SaveFile(full))
		L2, err := LoadFile(full)
		errql(Te, err)
		a, b := L.Snapshot().All(), L2.Snapshot().All()
		if len(a) != len(b) {
			Te.Fatalf("%s: %d templates saved, %d loaded", name, len(a), len(b))
		}
		for i := range a {
			if fmt.Sprint(a[i]) != fmt.Sprint(b[i]) {
				Te.Errorf("%s: %v saved, %v loaded", name, a[i], b[i])
			}
		}
	}
	if _, err := Load(strings.NewReader(`{"version": 99}`)); !errors.Is(err, pmhc.ErrMalformedInput) {
		Te.Errorf("Wrong library version accepted: %v", err)
	}
}

func TestFASTA(Te *testing.T) {
	L := testLibrary(Te)
	var b bytes.Buffer
	errql(Te, L.WriteFASTA(&b))
	out := b.String()
	fmt.Print(out)
	if strings.Count(out, ">") != 5 || !strings.Contains(out, "> 1DLH_L HLA-DRA*0101;HLA-DRB1*0101\n") {
		Te.Errorf("Wrong FASTA output")
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, ">") && len(line) > 60 {
			Te.Errorf("FASTA line longer than 60: %s", line)
		}
	}
}

func TestStats(Te *testing.T) {
	S := testLibrary(Te).Snapshot()
	st := S.Stats(pmhc.ClassI)
	fmt.Println(st)
	if st.Templates != 3 || st.Alleles != 3 || st.PeptideLenMean != 9 || st.PeptideLenStd != 0 {
		Te.Errorf("Wrong stats %+v", st)
	}
	if math.Abs(st.ResolutionMean-2.25) > 1e-9 {
		Te.Errorf("Unknown resolutions used for the mean: %f", st.ResolutionMean)
	}
	if st.PeptideLengths.Total() != 3 || st.PeptideLengths.Counts[2] != 3 {
		Te.Errorf("Wrong peptide length histogram %v", st.PeptideLengths.Counts)
	}
	st.PeptideLengths.Normalize()
	if st.PeptideLengths.Counts[2] != 1 {
		Te.Errorf("Wrong normalization")
	}
	if st2 := S.Stats(pmhc.ClassII); st2.PeptideLenMean != 13 || st2.Templates != 1 {
		Te.Errorf("Wrong class II stats %+v", st2)
	}
}

func TestAddStructure(Te *testing.T) {
	S := fixture.ClassI("1P01", "NLVPMVATV")
	S.KeepChains([]string{"A", "C"})
	errql(Te, S.RenameChains([]string{"A", "C"}, []string{"H", "P"}))
	path := filepath.Join(Te.TempDir(), "1P01.pdb")
	errql(Te, pmhc.PDBFileWrite(path, S))
	L := New()
	errql(Te, L.AddStructure("1P01", pmhc.ClassI, []string{"HLA-A*0201"}, path, []int{2, 9}))
	t, ok := L.Get("1P01")
	if !ok {
		Te.Fatalf("Template not added")
	}
	fmt.Println(t.ID, t.Peptide, t.Resolution, t.Anchors)
	if t.Peptide != "NLVPMVATV" || len(t.Heavy) != 180 || t.Light != "" || t.Resolution != 2.1 || t.Path != path {
		Te.Errorf("Wrong template from structure: %+v", t)
	}
	if fmt.Sprint(t.Anchors) != "[2 9]" {
		Te.Errorf("Wrong anchors %v", t.Anchors)
	}
	if err := L.AddStructure("1P02", pmhc.ClassI, []string{"HLA-A*0201"}, path, []int{0, 9}); !errors.Is(err, pmhc.ErrValidationFailure) {
		Te.Errorf("Invalid anchors accepted: %v", err)
	}
	if err := L.AddStructure("1P03", pmhc.ClassII, []string{"HLA-DRA*0101"}, path, nil); !errors.Is(err, pmhc.ErrMalformedInput) {
		Te.Errorf("Class I structure added as class II: %v", err)
	}
	if err := L.AddStructure("1P04", pmhc.ClassI, nil, path, nil); err == nil {
		Te.Errorf("Template without alleles added")
	}
	if err := L.AddStructure("1P05", pmhc.ClassI, []string{"HLA-A*0201"}, filepath.Join(Te.TempDir(), "none.pdb"), nil); !errors.Is(err, pmhc.ErrMalformedInput) {
		Te.Errorf("Absent structure added: %v", err)
	}
	if L.Len(pmhc.ClassI) != 1 || L.Len(pmhc.ClassII) != 0 {
		Te.Errorf("Failed additions left templates in the library")
	}
}
