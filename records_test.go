package pmhc_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	pmhc "github.com/rmera/gopmhc"
)

func TestParseClass(Te *testing.T) {
	for s, exp := range map[string]pmhc.Class{"I": pmhc.ClassI, "1": pmhc.ClassI, "mhcII": pmhc.ClassII, " 2 ": pmhc.ClassII} {
		c, err := pmhc.ParseClass(s)
		if err != nil || c != exp {
			Te.Errorf("ParseClass(%q) = %v, %v", s, c, err)
		}
	}
	if _, err := pmhc.ParseClass("III"); !errors.Is(err, pmhc.ErrMalformedInput) {
		Te.Errorf("Class III parsed")
	}
	if pmhc.ClassII.AnchorCount() != 4 || pmhc.ClassI.String() != "I" {
		Te.Errorf("Wrong class properties")
	}
}

func TestValidateAnchors(Te *testing.T) {
	good := [][]int{nil, {2, 9}, {1}, {3, 6, 8, 11}}
	for _, a := range good {
		if err := pmhc.ValidateAnchors(a, 11); err != nil {
			Te.Errorf("Anchors %v rejected: %v", a, err)
		}
	}
	bad := [][]int{{0}, {2, 12}, {5, 5}, {6, 2}}
	for _, a := range bad {
		if err := pmhc.ValidateAnchors(a, 11); !errors.Is(err, pmhc.ErrValidationFailure) {
			Te.Errorf("Anchors %v accepted", a)
		}
	}
}

func TestNewTarget(Te *testing.T) {
	T, err := pmhc.NewTarget("t1", pmhc.ClassI, "nlvpmvatv", []string{"HLA-A*02:01"}, []int{2, 9}, "", "")
	errql(Te, err)
	if T.Peptide != "NLVPMVATV" || !T.HasAnchors() || T.HasReceptor() {
		Te.Errorf("Wrong target %+v", T)
	}
	bad := []struct {
		name    string
		class   pmhc.Class
		alleles []string
		anchors []int
		h, l    string
		kind    error
	}{
		{"no class", pmhc.ClassUnknown, []string{"HLA-A*0201"}, nil, "", "", pmhc.ErrMalformedInput},
		{"anchors", pmhc.ClassI, []string{"HLA-A*0201"}, []int{2, 10}, "", "", pmhc.ErrValidationFailure},
		{"half receptor", pmhc.ClassII, nil, nil, "MAVMAPRTL", "", pmhc.ErrMalformedInput},
		{"light chain", pmhc.ClassI, nil, nil, "MAVMAPRTL", "MIQRTPK", pmhc.ErrMalformedInput},
		{"nothing", pmhc.ClassI, nil, nil, "", "", pmhc.ErrMalformedInput},
	}
	for _, b := range bad {
		_, err := pmhc.NewTarget("t2", b.class, "NLVPMVATV", b.alleles, b.anchors, b.h, b.l)
		if !errors.Is(err, b.kind) {
			Te.Errorf("%s: wrong error %v", b.name, err)
		}
	}
	if _, err := pmhc.NewTarget("t3", pmhc.ClassII, "PKYVKQNTLKLAT", nil, nil, "IKEEHVIIQ", "GDTRPRFLW"); err != nil {
		Te.Errorf("Class II target with receptor rejected: %v", err)
	}
}

func TestTemplateCopy(Te *testing.T) {
	t := &pmhc.Template{Record: pmhc.Record{ID: "1AAA", Class: pmhc.ClassI, Peptide: "NLVPMVATV", Alleles: []string{"HLA-A*0201"}, Anchors: []int{2, 9}}, Resolution: 2}
	c := t.Copy()
	c.Alleles[0] = "HLA-B*2705"
	c.Anchors[0] = 1
	if t.Alleles[0] != "HLA-A*0201" || t.Anchors[0] != 2 {
		Te.Errorf("Copy shares memory with the original")
	}
}

func TestErrors(Te *testing.T) {
	err := pmhc.Errorf(pmhc.MalformedInput, "1AAA", "opening: %w", os.ErrNotExist)
	var e error = err
	if !errors.Is(e, os.ErrNotExist) || !errors.Is(e, pmhc.ErrMalformedInput) || errors.Is(e, pmhc.ErrNoCandidate) {
		Te.Errorf("Wrong error matching for %v", e)
	}
	pmhc.Decorate(e, "ReadSomething")
	pmhc.Decorate(e, "Clean")
	fmt.Println(err, err.Trace())
	if err.Trace() != "ReadSomething <- Clean" || err.ID() != "1AAA" || err.Kind() != pmhc.MalformedInput {
		Te.Errorf("Wrong error data %q %q %v", err.Trace(), err.ID(), err.Kind())
	}
	if err.Error() != "1AAA: "+err.Reason() {
		Te.Errorf("Wrong message %q", err.Error())
	}
	if pmhc.Decorate(nil, "x") != nil {
		Te.Errorf("nil decorated into an error")
	}
}
