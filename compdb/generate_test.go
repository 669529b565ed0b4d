// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/compdb/intercept"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	setupSources(t, src, "a.c", "b.cc")
	traceDir := t.TempDir()
	f, err := os.Create(filepath.Join(traceDir, "1234.trace"))
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range []intercept.Record{
		{PID: "10", PPID: "1", Function: "execve", Dir: src, Args: []string{"make", "all"}},
		{PID: "11", PPID: "10", Function: "execve", Dir: src, Args: []string{"ccache", "gcc", "-c", "-O2", "a.c", "-o", "a.o"}},
		{PID: "12", PPID: "10", Function: "execve", Dir: src, Args: []string{"/usr/bin/g++", "-MD", "-MF", "b.d", "-c", "b.cc"}},
		{PID: "13", PPID: "10", Function: "execve", Dir: src, Args: []string{"gcc", "-E", "a.c"}},
		{PID: "14", PPID: "10", Function: "execve", Dir: src, Args: []string{"gcc", "-c", "gone.c"}},
	} {
		err := intercept.Encode(f, rec)
		if err != nil {
			t.Fatal(err)
		}
	}
	err = f.Close()
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(traceDir, "5678.trace"), []byte("1\x1e2\x1e"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	db := filepath.Join(t.TempDir(), "compile_commands.json")
	stats, err := Generate(ctx, traceDir, GenerateOptions{Output: db})
	if err != nil {
		t.Fatalf("Generate()=%v", err)
	}
	if diff := cmp.Diff(Stats{Entries: 2, Collected: 3, Errors: 1}, stats); diff != "" {
		t.Errorf("Generate(): stats diff -want +got:\n%s", diff)
	}
	got := loadDB(t, db)
	want := []Entry{
		{
			Directory: src,
			File:      filepath.Join(src, "a.c"),
			Arguments: []string{"cc", "-c", "-O2", "-o", "a.o", "a.c"},
		},
		{
			Directory: src,
			File:      filepath.Join(src, "b.cc"),
			Arguments: []string{"c++", "-c", "b.cc"},
		},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Entry{})); diff != "" {
		t.Errorf("db: diff -want +got:\n%s", diff)
	}
}

func TestGenerate_Raw(t *testing.T) {
	ctx := context.Background()
	traceDir := writeTraceDir(t, rawRecords)
	db := filepath.Join(t.TempDir(), "raw.json")
	stats, err := Generate(ctx, traceDir, GenerateOptions{Output: db, Raw: true})
	if err != nil {
		t.Fatalf("Generate(raw)=%v", err)
	}
	if stats.Entries != len(rawRecords) {
		t.Errorf("Generate(raw).Entries=%d; want %d", stats.Entries, len(rawRecords))
	}
}
