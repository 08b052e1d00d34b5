/*
 * log.go, part of gopmhc.
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

package clean

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

//RejectLog is a CSV file with one line per rejected structure: its ID and
//the reason for the rejection. It is safe for concurrent use.
type RejectLog struct {
	mu   sync.Mutex
	name string
}

//NewRejectLog returns a log that appends to the file name. The file is
//created, with an "ID,error" header, the first time something is logged.
func NewRejectLog(name string) *RejectLog {
	return &RejectLog{name: name}
}

//Name returns the name of the log file.
func (R *RejectLog) Name() string {
	return R.name
}

//Log appends the line id,reason to the log.
func (R *RejectLog) Log(id, reason string) error {
	R.mu.Lock()
	defer R.mu.Unlock()
	f, err := os.OpenFile(R.name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("RejectLog: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("RejectLog: %w", err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write([]string{"ID", "error"})
	}
	w.Write([]string{id, reason})
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("RejectLog: %w", err)
	}
	return f.Close()
}

//Entries reads the log and returns the reason for each rejected ID. If an
//ID was rejected several times, the last reason is returned.
func (R *RejectLog) Entries() (map[string]string, error) {
	R.mu.Lock()
	defer R.mu.Unlock()
	ret := make(map[string]string)
	f, err := os.Open(R.name)
	if os.IsNotExist(err) {
		return ret, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("RejectLog: %w", err)
	}
	for i, r := range recs {
		if i == 0 || len(r) < 2 {
			continue
		}
		ret[r[0]] = r[1]
	}
	return ret, nil
}
