// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// lockRetryInterval is the interval to retry locking the database.
const lockRetryInterval = 100 * time.Millisecond

// UpdateOptions is options of Update.
type UpdateOptions struct {
	// Append merges entries in the existing database.
	Append bool
	// Format is the format to write.
	Format Format
	// Exists reports whether a source file exists.
	// If nil, FileExists is used.
	Exists func(string) bool
}

// Update writes current entries to the database fname, merging with the
// existing entries if opt.Append.
// The database is locked while reading, merging and writing, so
// concurrent updates of the same database don't lose entries.
// It returns the number of entries written.
func Update(ctx context.Context, fname string, current []Entry, opt UpdateOptions) (int, error) {
	var n int
	err := withLockedFile(ctx, fname, func(f *os.File) error {
		var previous []Entry
		if opt.Append {
			var err error
			previous, err = loadFile(f)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", fname, err)
			}
		}
		entries, err := Merge(ctx, previous, current, opt.Exists)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		err = Write(&buf, entries, opt.Format)
		if err != nil {
			return err
		}
		err = rewrite(f, buf.Bytes())
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", fname, err)
		}
		n = len(entries)
		return nil
	})
	return n, err
}

func loadFile(f *os.File) ([]Entry, error) {
	_, err := f.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		// newly created.
		return nil, nil
	}
	return Load(bytes.NewReader(buf))
}

func rewrite(f *os.File, buf []byte) error {
	err := f.Truncate(0)
	if err != nil {
		return err
	}
	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	_, err = w.Write(buf)
	if err != nil {
		return err
	}
	err = w.Flush()
	if err != nil {
		return err
	}
	return f.Sync()
}

// withLockedFile opens fname and runs fn while holding the exclusive lock
// of the file.
func withLockedFile(ctx context.Context, fname string, fn func(f *os.File) error) error {
	f, err := os.OpenFile(fname, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err := f.Close()
		if err != nil {
			log.Warnf("failed to close %s: %v", fname, err)
		}
	}()
	lock := &lockFile{f: f}
	err = waitLock(ctx, lock)
	switch {
	case errors.Is(err, errors.ErrUnsupported):
		log.Warnf("lockfile is not supported. %s may be updated concurrently", fname)
		return fn(f)
	case err != nil:
		return err
	}
	defer func() {
		err := lock.Unlock()
		if err != nil {
			log.Warnf("failed to unlock %s: %v", fname, err)
		}
	}()
	return fn(f)
}

func waitLock(ctx context.Context, lock *lockFile) error {
	waiting := false
	for {
		err := lock.Lock()
		if !errors.Is(err, errAlreadyLocked) {
			if waiting && err == nil {
				log.Infof("lock %s acquired", lock.f.Name())
			}
			return err
		}
		if !waiting {
			log.Infof("waiting for lock holder of %s..", lock.f.Name())
			waiting = true
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to lock %s: %w", lock.f.Name(), context.Cause(ctx))
		case <-time.After(lockRetryInterval):
		}
	}
}
