/*
 * targets.go, part of gopmhc.
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

//Package targets reads lists of peptide/MHC targets from delimiter-separated text files.
package targets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pmhc "github.com/rmera/gopmhc"
)

//Options tells Read how the columns are laid out. Negative column numbers mean the column is absent.
type Options struct {
	Class     pmhc.Class
	Delimiter rune
	Header    bool //the first line is a header, to be skipped
	Peptide   int
	Alleles   int //alleles separated by ";"
	Anchors   int //anchors separated by ","
	ID        int
	Heavy     int
	Light     int
}

//DefaultOptions returns options for class c tab-separated files with a header,
//the peptide in the first column and the alleles in the second.
func DefaultOptions(c pmhc.Class) *Options {
	return &Options{Class: c, Delimiter: '\t', Header: true, Peptide: 0, Alleles: 1, Anchors: -1, ID: -1, Heavy: -1, Light: -1}
}

func field(row []string, col int) (string, error) {
	if col < 0 {
		return "", nil
	}
	if col >= len(row) {
		return "", fmt.Errorf("no column %d in a row with %d fields", col, len(row))
	}
	return strings.TrimSpace(row[col]), nil
}

//Read reads the targets in r. Targets without an ID column are named Target_1, Target_2... in
//the order they are read. Every target is validated, the first invalid one stops the reading.
func Read(r io.Reader, O *Options) ([]*pmhc.Target, error) {
	if O == nil {
		O = DefaultOptions(pmhc.ClassI)
	}
	cr := csv.NewReader(r)
	cr.Comma = O.Delimiter
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, pmhc.Errorf(pmhc.MalformedInput, "", "can't read targets: %w", err)
	}
	if O.Header && len(rows) > 0 {
		rows = rows[1:]
	}
	ret := make([]*pmhc.Target, 0, len(rows))
	for i, row := range rows {
		id := fmt.Sprintf("Target_%d", i+1)
		var f [6]string
		for j, col := range []int{O.ID, O.Peptide, O.Alleles, O.Anchors, O.Heavy, O.Light} {
			f[j], err = field(row, col)
			if err != nil {
				return nil, pmhc.Errorf(pmhc.MalformedInput, id, "target %d: %w", i+1, err)
			}
		}
		if f[0] != "" {
			id = f[0]
		}
		var alleles []string
		for _, a := range strings.Split(f[2], ";") {
			if a = strings.TrimSpace(a); a != "" {
				alleles = append(alleles, a)
			}
		}
		var anchors []int
		if f[3] != "" {
			for _, a := range strings.Split(f[3], ",") {
				n, err := strconv.Atoi(strings.TrimSpace(a))
				if err != nil {
					return nil, pmhc.Errorf(pmhc.MalformedInput, id, "bad anchors %q: %w", f[3], err)
				}
				anchors = append(anchors, n)
			}
		}
		T, err := pmhc.NewTarget(id, O.Class, f[1], alleles, anchors, strings.ToUpper(f[4]), strings.ToUpper(f[5]))
		if err != nil {
			return nil, pmhc.Decorate(err, "Read")
		}
		ret = append(ret, T)
	}
	return ret, nil
}

//ReadFile reads the targets in the file name.
func ReadFile(name string, O *Options) ([]*pmhc.Target, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, pmhc.Errorf(pmhc.MalformedInput, "", "ReadFile: %w", err)
	}
	defer f.Close()
	return Read(f, O)
}
