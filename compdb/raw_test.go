// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"

	"go.chromium.org/infra/build/compdb/intercept"
)

func writeTraceDir(t *testing.T, recs []intercept.Record) string {
	t.Helper()
	dir := t.TempDir()
	var buf bytes.Buffer
	for _, rec := range recs {
		err := intercept.Encode(&buf, rec)
		if err != nil {
			t.Fatal(err)
		}
	}
	err := os.WriteFile(filepath.Join(dir, "a.trace"), buf.Bytes(), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "b.trace"), []byte("broken"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

var rawRecords = []intercept.Record{
	{PID: "1", PPID: "0", Function: "execve", Dir: "/src", Args: []string{"make"}},
	{PID: "2", PPID: "1", Function: "execve", Dir: "/src", Args: []string{"gcc", "-E", "a.c"}},
}

func TestWriteRaw(t *testing.T) {
	dir := writeTraceDir(t, rawRecords)
	var buf bytes.Buffer
	n, err := WriteRaw(&buf, intercept.Records(dir))
	if err != nil || n != 2 {
		t.Fatalf("WriteRaw()=%d, %v; want 2, nil", n, err)
	}
	var got []intercept.Record
	err = json.Unmarshal(buf.Bytes(), &got)
	if err != nil {
		t.Fatalf("json.Unmarshal(%q)=%v", buf.Bytes(), err)
	}
	if diff := cmp.Diff(rawRecords, got); diff != "" {
		t.Errorf("WriteRaw: diff -want +got:\n%s", diff)
	}
}

func TestWriteRaw_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteRaw(&buf, intercept.Records(t.TempDir()))
	if err != nil || n != 0 {
		t.Fatalf("WriteRaw()=%d, %v; want 0, nil", n, err)
	}
	if got, want := buf.String(), "[]\n"; got != want {
		t.Errorf("WriteRaw()=%q; want %q", got, want)
	}
}

func TestWriteRawFile_Zstd(t *testing.T) {
	ctx := context.Background()
	dir := writeTraceDir(t, rawRecords)
	fname := filepath.Join(t.TempDir(), "raw.json.zst")
	n, err := WriteRawFile(ctx, fname, intercept.Records(dir))
	if err != nil || n != 2 {
		t.Fatalf("WriteRawFile(%q)=%d, %v; want 2, nil", fname, n, err)
	}
	f, err := os.Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var got []intercept.Record
	err = json.NewDecoder(zr).Decode(&got)
	if err != nil {
		t.Fatalf("decode %s: %v", fname, err)
	}
	if diff := cmp.Diff(rawRecords, got); diff != "" {
		t.Errorf("WriteRawFile: diff -want +got:\n%s", diff)
	}
}
