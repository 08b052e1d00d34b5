/*
 * store.go, part of gopmhc.
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

package library

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	pmhc "github.com/rmera/gopmhc"
)

//formatVersion is written in every saved library.
const formatVersion = 1

//saved is what gets written to disk.
type saved struct {
	Version int              `json:"version"`
	ClassI  []*pmhc.Template `json:"class_I"`
	ClassII []*pmhc.Template `json:"class_II"`
}

//Save writes the library to w, as JSON.
func (L *Library) Save(w io.Writer) error {
	S := L.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(saved{Version: formatVersion, ClassI: S.classI, ClassII: S.classII})
}

//Load reads a library written by Save from r.
func Load(r io.Reader) (*Library, error) {
	var s saved
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, pmhc.Errorf(pmhc.MalformedInput, "", "can't decode library: %w", err)
	}
	if s.Version != formatVersion {
		return nil, pmhc.NewError(pmhc.MalformedInput, "", fmt.Sprintf("library format version %d, expected %d", s.Version, formatVersion))
	}
	L := New()
	for _, set := range [][]*pmhc.Template{s.ClassI, s.ClassII} {
		for _, t := range set {
			if err := L.Add(t); err != nil {
				return nil, pmhc.Decorate(err, "Load")
			}
		}
	}
	return L, nil
}

//zstdCloser lets LoadFile close a zstd decoder like the other readers.
//zstd.Decoder.Close returns nothing.
type zstdCloser struct {
	*zstd.Decoder
}

//Close closes the decoder. It can not be used after this call.
func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

//SaveFile writes the library to the file name. Names ending in .zst are compressed
//with z-standard and names ending in .gz with gzip. Other names get plain JSON.
func (L *Library) SaveFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	var w io.WriteCloser
	switch {
	case strings.HasSuffix(name, ".zst"):
		w, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case strings.HasSuffix(name, ".gz"):
		w, err = gzip.NewWriterLevel(f, gzip.BestCompression)
	default:
		w = nopCloser{f}
	}
	if err != nil {
		return fmt.Errorf("SaveFile: %w", err)
	}
	bw := bufio.NewWriter(w)
	if err = L.Save(bw); err != nil {
		w.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		w.Close()
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return f.Close()
}

//LoadFile reads a library written with SaveFile.
func LoadFile(name string) (*Library, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.ReadCloser
	switch {
	case strings.HasSuffix(name, ".zst"):
		var d *zstd.Decoder
		d, err = zstd.NewReader(f)
		r = zstdCloser{d}
	case strings.HasSuffix(name, ".gz"):
		r, err = gzip.NewReader(f)
	default:
		r = io.NopCloser(f)
	}
	if err != nil {
		return nil, pmhc.Errorf(pmhc.MalformedInput, "", "LoadFile %s: %w", name, err)
	}
	defer r.Close()
	L, err := Load(bufio.NewReader(r))
	return L, pmhc.Decorate(err, "LoadFile")
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

//WriteFASTA writes the receptor sequences of all the templates to w in FASTA
//format, 60 residues per line. Class II templates give one entry per chain.
//The headers are the template ID, the chain, and the alleles.
func (L *Library) WriteFASTA(w io.Writer) error {
	bw := bufio.NewWriter(w)
	write := func(t *pmhc.Template, chain, seq string) {
		if seq == "" {
			return
		}
		fmt.Fprintf(bw, "> %s_%s %s\n", t.ID, chain, strings.Join(t.Alleles, ";"))
		for j := 0; j < len(seq); j += 60 {
			end := j + 60
			if end > len(seq) {
				end = len(seq)
			}
			fmt.Fprintln(bw, seq[j:end])
		}
	}
	S := L.Snapshot()
	for _, t := range S.classI {
		write(t, "H", t.Heavy)
	}
	for _, t := range S.classII {
		write(t, "H", t.Heavy)
		write(t, "L", t.Light)
	}
	return bw.Flush()
}
