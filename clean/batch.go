/*
 * batch.go, part of gopmhc.
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
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	pmhc "github.com/rmera/gopmhc"
)

//Report summarizes a Batch run.
type Report struct {
	Cleaned  []string          //IDs cleaned, sorted
	Rejected map[string]string //rejection reason, by ID
	Skipped  []string          //IDs never processed because the context was cancelled
	Present  []string          //IDs already in the library, left as they were
}

func (R *Report) String() string {
	return fmt.Sprintf("%d cleaned, %d rejected, %d skipped, %d already in library", len(R.Cleaned), len(R.Rejected), len(R.Skipped), len(R.Present))
}

type outcome struct {
	id  string
	err error
}

//Batch cleans the structures ids, using C.O.Workers goroutines. A failure, or even a panic,
//while cleaning one structure doesn't affect the others. When ctx is cancelled, no new
//structure is started, but those being processed are finished.
func (C *Cleaner) Batch(ctx context.Context, ids []string) *Report {
	workers := C.O.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string, workers*2)
	results := make(chan outcome, workers*2)
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- outcome{id, C.safeClean(id)}
			}
		}()
	}
	R := &Report{Rejected: make(map[string]string)}
	done := make(chan struct{})
	go func() {
		for o := range results {
			if o.err == nil {
				R.Cleaned = append(R.Cleaned, o.id)
				continue
			}
			if errors.Is(o.err, ErrPresent) {
				R.Present = append(R.Present, o.id)
				continue
			}
			reason := o.err.Error()
			if e, ok := o.err.(*pmhc.Error); ok {
				reason = e.Reason()
			}
			R.Rejected[o.id] = reason
		}
		close(done)
	}()
dispatch:
	for i, id := range ids {
		if ctx.Err() != nil {
			R.Skipped = append(R.Skipped, ids[i:]...)
			break
		}
		select {
		case <-ctx.Done():
			R.Skipped = append(R.Skipped, ids[i:]...)
			break dispatch
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait() //workers are done sending
	close(results)
	<-done
	sort.Strings(R.Cleaned)
	sort.Strings(R.Skipped)
	sort.Strings(R.Present)
	return R
}

//safeClean runs Clean, turning a panic into a logged rejection.
func (C *Cleaner) safeClean(id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = C.reject(id, nil, ReasonPanic, pmhc.NewError(pmhc.KindUnknown, id, fmt.Sprintf("%s: %v", ReasonPanic, r)))
		}
	}()
	_, err = C.Clean(id)
	return err
}

//Discover returns the IDs of the structures in dir, that is, the names of
//the files in dir that start with prefix and end with suffix, without them.
//IDs are sorted.
func Discover(dir, prefix, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("Discover: %w", err)
	}
	var ret []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		if id != "" {
			ret = append(ret, id)
		}
	}
	sort.Strings(ret)
	return ret, nil
}
