// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package parse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.chromium.org/infra/build/compdb/intercept"
	"go.chromium.org/infra/build/compdb/subcmd/dbflag"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	err := os.WriteFile(filepath.Join(src, "main.cpp"), nil, 0644)
	if err != nil {
		t.Fatal(err)
	}
	traceDir := t.TempDir()
	f, err := os.Create(filepath.Join(traceDir, "1.trace"))
	if err != nil {
		t.Fatal(err)
	}
	err = intercept.Encode(f, intercept.Record{
		PID: "1", PPID: "0", Function: "execve", Dir: src,
		Args: []string{"clang++-17", "-std=c++20", "-c", "main.cpp"},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = f.Close()
	if err != nil {
		t.Fatal(err)
	}

	c := &run{
		db:       dbflag.Flags{Output: filepath.Join(t.TempDir(), dbflag.DefaultOutput), Append: true},
		traceDir: traceDir,
	}
	for i := 0; i < 2; i++ {
		stats, err := c.run(ctx)
		if err != nil {
			t.Fatalf("run #%d=%v", i, err)
		}
		if stats.Entries != 1 {
			t.Errorf("run #%d entries=%d; want 1", i, stats.Entries)
		}
	}
}

func TestRun_Error(t *testing.T) {
	ctx := context.Background()
	c := &run{
		db: dbflag.Flags{Output: filepath.Join(t.TempDir(), dbflag.DefaultOutput)},
	}
	_, err := c.run(ctx)
	var errFlag flagError
	if !errors.As(err, &errFlag) || !errors.Is(err, errNoTraceDir) {
		t.Errorf("run()=%v; want flagError of %v", err, errNoTraceDir)
	}

	c.traceDir = t.TempDir()
	c.db.Raw = true
	c.db.Append = true
	_, err = c.run(ctx)
	if !errors.As(err, &errFlag) {
		t.Errorf("run(-raw -append)=%v; want flagError", err)
	}
	c.db.Raw = false
	c.db.Append = false

	c.traceDir = filepath.Join(t.TempDir(), "missing")
	_, err = c.run(ctx)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("run()=%v; want %v", err, os.ErrNotExist)
	}
}
