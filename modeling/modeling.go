/*
 * modeling.go, part of gopmhc.
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

//Package modeling prepares the input for a homology modeling engine, from a
//target and the template chosen for it: the alignment of every chain, the
//restraints that keep the peptide anchors in place, and the peptide segments
//the engine is free to move. Running the engine is not done here.
package modeling

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	pmhc "github.com/rmera/gopmhc"
	"github.com/rmera/gopmhc/contacts"
	"github.com/rmera/gopmhc/selector"
)

//Options for the preparation of a modeling job.
type Options struct {
	Matrix     selector.Matrix
	GapPenalty float64 //for receptor alignments, negative.
	Cutoff     float64 //maximum distance for anchor restraints
	Logger     *log.Logger
}

//DefaultOptions returns PAM30 scoring with a gap penalty of -9 and a 5 A restraint cutoff.
func DefaultOptions() *Options {
	return &Options{Matrix: selector.PAM30, GapPenalty: -9, Cutoff: contacts.DefaultCutoff, Logger: log.Default()}
}

//ChainAlignment is the alignment of one target chain with the template chain of the same name.
type ChainAlignment struct {
	Chain    string
	Target   string
	Template string
}

//Restraint is a contact between a peptide anchor and the MHC in the template, with the number of
//the target peptide residue it applies to. The peptide end of the contact is always A.
type Restraint struct {
	Target int
	contacts.Contact
}

//Job has everything a modeling engine needs to model a target on a template.
type Job struct {
	ID         string //unique for each job
	Target     *pmhc.Target
	Template   *pmhc.Template
	Peptide    *selector.Alignment
	Chains     []ChainAlignment //H, L (class II only) and P, in that order.
	Restraints []Restraint
	Loops      [][2]int //the target peptide segments that can move
}

//Prepare builds a modeling job for target T on the template t. The peptides are aligned by their anchors if both
//have them, position by position otherwise. Receptor chains are aligned with Needleman-Wunsch, unless the target doesn't
//give their sequences, in which case the template's are used. If t has a structure, restraints are obtained from
//the contacts of the anchors there.
func Prepare(T *pmhc.Target, t *pmhc.Template, O *Options) (*Job, error) {
	if O == nil {
		O = DefaultOptions()
	}
	if err := T.Validate(); err != nil {
		return nil, pmhc.Decorate(err, "Prepare")
	}
	if T.Class != t.Class {
		return nil, pmhc.NewError(pmhc.ValidationFailure, T.ID, fmt.Sprintf("class %v target with class %v template %s", T.Class, t.Class, t.ID))
	}
	logger := O.Logger
	if logger == nil {
		logger = log.Default()
	}
	J := &Job{ID: uuid.NewString(), Target: T, Template: t}
	var err error
	J.Peptide, err = selector.Align(&T.Record, &t.Record, O.Matrix)
	if err != nil {
		return nil, pmhc.Decorate(err, "Prepare")
	}
	if !J.Peptide.Anchored {
		logger.Printf("%s: no anchors for target or template %s, peptides aligned position by position", T.ID, t.ID)
	}
	receptor := func(chain, target, template string) {
		if target == "" {
			J.Chains = append(J.Chains, ChainAlignment{chain, template, template})
			return
		}
		a, b := NeedlemanWunsch(target, template, O.Matrix, O.GapPenalty)
		J.Chains = append(J.Chains, ChainAlignment{chain, a, b})
	}
	receptor("H", T.Heavy, t.Heavy)
	if T.Class == pmhc.ClassII {
		receptor("L", T.Light, t.Light)
	}
	J.Chains = append(J.Chains, ChainAlignment{"P", J.Peptide.A, J.Peptide.B})
	J.Loops = LoopRanges(T.Class, T.Anchors, len(T.Peptide))
	if t.Path != "" {
		if err := J.restraints(O.Cutoff); err != nil {
			return nil, pmhc.Decorate(err, "Prepare")
		}
	}
	return J, nil
}

//restraints reads the template structure and gets the contacts of the template
//residues aligned to the target anchors. If the target has no anchors, those of the template are used.
func (J *Job) restraints(cutoff float64) error {
	S, err := pmhc.PDBFileRead(J.Template.Path)
	if err != nil {
		return err
	}
	t2t := positionMap(J.Peptide.A, J.Peptide.B)
	tpl2t := make(map[int]int, len(t2t))
	for k, v := range t2t {
		tpl2t[v] = k
	}
	var anchors []int
	if J.Target.HasAnchors() {
		for _, a := range J.Target.Anchors {
			if p, ok := t2t[a]; ok {
				anchors = append(anchors, p)
			}
		}
	} else {
		anchors = J.Template.Anchors
	}
	for _, c := range contacts.AnchorContacts(S, cutoff, "P", anchors) {
		tp, ok := tpl2t[c.A.ResNum]
		if !ok {
			continue
		}
		J.Restraints = append(J.Restraints, Restraint{Target: tp, Contact: c})
	}
	return nil
}

//wrap writes s to w in lines of at most n characters.
func wrap(w io.Writer, s string, n int) {
	for i := 0; i < len(s); i += n {
		end := i + n
		if end > len(s) {
			end = len(s)
		}
		fmt.Fprintln(w, s[i:end])
	}
}

//WritePIR writes the alignment of the job in PIR format, template first. Chains are
//separated by "/".
func (J *Job) WritePIR(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var tpl, tgt []string
	for _, c := range J.Chains {
		tpl = append(tpl, c.Template)
		tgt = append(tgt, c.Target)
	}
	fmt.Fprintf(bw, ">P1;%s\nstructure:%s:FIRST:@:END:@::::\n", J.Template.ID, J.Template.ID)
	wrap(bw, strings.Join(tpl, "/")+"*", 75)
	fmt.Fprintf(bw, ">P1;%s\nsequence:%s:::::::0.00: 0.00\n", J.Target.ID, J.Target.ID)
	wrap(bw, strings.Join(tgt, "/")+"*", 75)
	return bw.Flush()
}

//WriteRestraints writes the restraints, one per line, as tab-separated fields: the target
//peptide residue, then the chain, residue number, residue name and atom name of each end of the
//template contact, and the distance.
func (J *Job) WriteRestraints(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range J.Restraints {
		fmt.Fprintf(bw, "%d\t%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s\t%.3f\n", r.Target,
			r.A.Chain, r.A.ResNum, r.A.ResName, r.A.Atom,
			r.B.Chain, r.B.ResNum, r.B.ResName, r.B.Atom, r.Dist)
	}
	return bw.Flush()
}

//Dir returns the directory, under root, where the job files are written.
func (J *Job) Dir(root string) string {
	return filepath.Join(root, J.Template.ID+"_"+J.Target.ID)
}

//Write creates the job directory under root, and writes there the alignment (<target>.ali), the
//restraints (contacts_<target>.list) and a copy of the template structure (<template>.pdb).
//It returns the job directory.
func (J *Job) Write(root string) (string, error) {
	dir := J.Dir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	write := func(name string, f func(io.Writer) error) error {
		out, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer out.Close()
		if err := f(out); err != nil {
			return err
		}
		return out.Close()
	}
	if err := write(J.Target.ID+".ali", J.WritePIR); err != nil {
		return "", fmt.Errorf("Write: %w", err)
	}
	if err := write("contacts_"+J.Target.ID+".list", J.WriteRestraints); err != nil {
		return "", fmt.Errorf("Write: %w", err)
	}
	if J.Template.Path != "" {
		data, err := pmhc.ReadSource(J.Template.Path)
		if err != nil {
			return "", fmt.Errorf("Write: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, J.Template.ID+".pdb"), data, 0644); err != nil {
			return "", fmt.Errorf("Write: %w", err)
		}
	}
	return dir, nil
}
