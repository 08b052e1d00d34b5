/*
 * files.go, part of gopmhc.
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

package pmhc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/spatial/r3"
)

//ReadSource returns the contents of the file name, decompressed if
//its name ends in .gz or .zst. An empty file is an error.
func ReadSource(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	switch filepath.Ext(name) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("ReadSource: %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	case ".zst":
		zd, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("ReadSource: %s: %w", name, err)
		}
		defer zd.Close()
		r = zd
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ReadSource: %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("ReadSource: %s is empty", name)
	}
	return data, nil
}

//PDBFileRead reads the (possibly compressed) PDB file name. The ID of the
//structure is the file's base name without extensions.
func PDBFileRead(name string) (*Structure, error) {
	data, err := ReadSource(name)
	if err != nil {
		return nil, Errorf(MalformedInput, "", "source file absent/empty: %w", err)
	}
	id := filepath.Base(name)
	if i := strings.Index(id, "."); i > 0 {
		id = id[:i]
	}
	S, err := PDBRead(bytes.NewReader(data), id)
	return S, errDecorate(err, "PDBFileRead")
}

//resKey identifies a residue inside a chain while reading.
//kind is 'W' for waters, 'H' for other hetero residues and ' ' otherwise.
type resKey struct {
	kind  byte
	num   int
	icode byte
}

//builds chains for one model.
type modelReader struct {
	chains []*Chain
	last   map[string]*Chain //the latest instance of each chain id
	seen   map[*Chain]map[resKey]bool
}

func newModelReader() *modelReader {
	return &modelReader{last: make(map[string]*Chain), seen: make(map[*Chain]map[resKey]bool)}
}

//add puts the atom in the right residue and chain. A residue that already exists in the
//chain, but is not the last one, means the chain id appears twice in the file, so a new
//chain instance with the same id is started.
func (M *modelReader) add(chainID string, res *Residue, key resKey, at *Atom) {
	C := M.last[chainID]
	if C != nil && len(C.Residues) > 0 {
		lastRes := C.Residues[len(C.Residues)-1]
		if lastRes.Num == res.Num && lastRes.ICode == res.ICode && M.seen[C][key] {
			//alternative locations (even with a different residue name): we keep only the first one.
			if lastRes.Name == res.Name && lastRes.Atom(at.Name) == nil {
				lastRes.Atoms = append(lastRes.Atoms, at)
			}
			return
		}
		if M.seen[C][key] {
			C = nil
		}
	}
	if C == nil {
		C = &Chain{ID: chainID}
		M.chains = append(M.chains, C)
		M.last[chainID] = C
		M.seen[C] = make(map[resKey]bool)
	}
	res.Atoms = append(res.Atoms, at)
	C.Residues = append(C.Residues, res)
	M.seen[C][key] = true
}

//returns a substring of line from a to b, clamped to the line length.
func column(line string, a, b int) string {
	if a >= len(line) {
		return ""
	}
	if b > len(line) {
		b = len(line)
	}
	return line[a:b]
}

//Parses an ATOM or HETATM line. It returns the atom, a residue without atoms and the chain ID.
func readPDBLine(line string) (*Atom, *Residue, string, error) {
	if len(line) < 54 {
		return nil, nil, "", fmt.Errorf("line too short for a coordinate record")
	}
	var err error
	at := new(Atom)
	res := new(Residue)
	res.Het = strings.HasPrefix(line, "HETATM")
	at.ID, err = strconv.Atoi(strings.TrimSpace(column(line, 6, 11)))
	if err != nil {
		at.ID = 0 //some programs write hex or stars for large serials. It doesn't matter here.
	}
	at.Name = strings.TrimSpace(column(line, 12, 16))
	at.AltLoc = column(line, 16, 17)[0]
	res.Name = strings.TrimSpace(column(line, 17, 20))
	chain := strings.TrimSpace(column(line, 21, 22))
	res.Num, err = strconv.Atoi(strings.TrimSpace(column(line, 22, 26)))
	if err != nil {
		return nil, nil, "", fmt.Errorf("bad residue number: %w", err)
	}
	res.ICode = ' '
	if ic := column(line, 26, 27); ic != "" {
		res.ICode = ic[0]
	}
	c := make([]float64, 3)
	for i := 0; i < 3; i++ {
		c[i], err = strconv.ParseFloat(strings.TrimSpace(column(line, 30+8*i, 38+8*i)), 64)
		if err != nil {
			return nil, nil, "", fmt.Errorf("bad coordinate: %w", err)
		}
	}
	at.Coord = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	//the rest is optional, we don't catch errors.
	at.Occupancy = 1.0
	if o, err := strconv.ParseFloat(strings.TrimSpace(column(line, 54, 60)), 64); err == nil {
		at.Occupancy = o
	}
	if b, err := strconv.ParseFloat(strings.TrimSpace(column(line, 60, 66)), 64); err == nil {
		at.Bfactor = b
	}
	at.Symbol = strings.TrimSpace(column(line, 76, 78))
	at.Charge = strings.TrimSpace(column(line, 78, 80))
	if at.Symbol == "" {
		at.Symbol, _ = symbolFromName(at.Name)
	}
	return at, res, chain, nil
}

//PDBRead reads a PDB file from r. All lines before the first coordinate
//record (or MODEL record) are kept, unchanged, as the header of the structure.
//Only ATOM/HETATM records are read after that. The first model goes in the Chains field,
//the other ones, if any, in Extra.
func PDBRead(r io.Reader, id string) (*Structure, error) {
	S := &Structure{ID: id}
	pdb := bufio.NewScanner(r)
	pdb.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inHeader := true
	models := []*modelReader{newModelReader()}
	contlines := 0
	for pdb.Scan() {
		contlines++
		line := strings.TrimRight(pdb.Text(), "\r")
		isCoord := strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
		isModel := strings.HasPrefix(line, "MODEL")
		if inHeader && !isCoord && !isModel {
			S.Header = append(S.Header, line)
			continue
		}
		inHeader = false
		if isModel {
			if len(models[len(models)-1].chains) > 0 {
				models = append(models, newModelReader())
			}
			continue
		}
		if !isCoord {
			continue
		}
		at, res, chain, err := readPDBLine(line)
		if err != nil {
			return nil, Errorf(MalformedInput, id, "line %d: %w", contlines, err)
		}
		key := resKey{kind: ' ', num: res.Num, icode: res.ICode}
		if res.Het {
			key.kind = 'H'
			if res.IsWater() {
				key.kind = 'W'
			}
		}
		models[len(models)-1].add(chain, res, key, at)
	}
	if err := pdb.Err(); err != nil {
		return nil, Errorf(MalformedInput, id, "reading PDB: %w", err)
	}
	if len(models[0].chains) == 0 {
		return nil, NewError(MalformedInput, id, "no coordinates in PDB file")
	}
	S.Chains = models[0].chains
	for _, m := range models[1:] {
		S.Extra = append(S.Extra, m.chains)
	}
	return S, nil
}

//PDBWrite writes the first model of S in PDB format to out, preceded by the header lines of S.
//Atoms are numbered consecutively from 1, and chains are ended with TER records.
func PDBWrite(out io.Writer, S *Structure) error {
	w := bufio.NewWriter(out)
	for _, v := range S.Header {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	serial := 1
	var err error
	for _, c := range S.Chains {
		chainid := " "
		if len(c.ID) > 0 {
			chainid = c.ID[:1]
		}
		var last *Residue
		for _, r := range c.Residues {
			first := "ATOM"
			if r.Het {
				first = "HETATM"
			}
			icode := r.ICode
			if icode == 0 {
				icode = ' '
			}
			for _, a := range r.Atoms {
				alt := a.AltLoc
				if alt == 0 {
					alt = ' '
				}
				//4 chars for the atom name are used when hydrogens are included.
				if len(a.Name) < 4 {
					_, err = fmt.Fprintf(w, "%-6s%5d  %-3s%c%3s %1s%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f          %2s%2s\n", first, serial%100000, a.Name, alt, r.Name, chainid,
						r.Num, icode, a.Coord.X, a.Coord.Y, a.Coord.Z, a.Occupancy, a.Bfactor, a.Symbol, a.Charge)
				} else if len(a.Name) == 4 {
					_, err = fmt.Fprintf(w, "%-6s%5d %4s%c%3s %1s%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f          %2s%2s\n", first, serial%100000, a.Name, alt, r.Name, chainid,
						r.Num, icode, a.Coord.X, a.Coord.Y, a.Coord.Z, a.Occupancy, a.Bfactor, a.Symbol, a.Charge)
				} else {
					err = fmt.Errorf("Cant print PDB line for atom %s", a.Name)
				}
				if err != nil {
					return Errorf(MalformedInput, S.ID, "PDBWrite: %w", err)
				}
				serial++
			}
			last = r
		}
		if last != nil {
			fmt.Fprintf(w, "TER   %5d      %3s %1s%4d\n", serial%100000, last.Name, chainid, last.Num)
			serial++
		}
	}
	fmt.Fprint(w, "END\n")
	return w.Flush()
}

//PDBFileWrite writes S to the file name, in PDB format.
func PDBFileWrite(name string, S *Structure) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = PDBWrite(out, S); err != nil {
		out.Close()
		return errDecorate(err, "PDBFileWrite")
	}
	return out.Close()
}
