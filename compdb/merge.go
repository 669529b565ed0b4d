// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/compdb/runtimex"
)

// FileExists reports whether fname exists.
func FileExists(fname string) bool {
	_, err := os.Stat(fname)
	return err == nil
}

// Merge merges previous entries and current entries.
// It keeps the first entry for each key, in order of previous then
// current, and drops entries whose file doesn't exist.
// exists is called concurrently. If nil, FileExists is used.
func Merge(ctx context.Context, previous, current []Entry, exists func(string) bool) ([]Entry, error) {
	if exists == nil {
		exists = FileExists
	}
	all := make([]Entry, 0, len(previous)+len(current))
	all = append(all, previous...)
	all = append(all, current...)

	found := make([]bool, len(all))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtimex.Limit(len(all)))
	for i := range all {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found[i] = exists(all[i].File)
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}

	seen := make(map[Key]bool)
	var entries []Entry
	var missing, dups int
	for i, e := range all {
		if !found[i] {
			missing++
			log.Debugf("drop %s: not found", e.File)
			continue
		}
		k := e.Key()
		if seen[k] {
			dups++
			continue
		}
		seen[k] = true
		entries = append(entries, e)
	}
	log.Infof("merge previous=%d current=%d -> %d (missing=%d duplicates=%d)", len(previous), len(current), len(entries), missing, dups)
	return entries, nil
}
