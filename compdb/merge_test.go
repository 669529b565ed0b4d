// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMerge(t *testing.T) {
	ctx := context.Background()
	existing := map[string]bool{
		"/src/a.c": true,
		"/src/b.c": true,
		"/src/c.c": true,
	}
	exists := func(fname string) bool { return existing[fname] }

	prevA := Entry{Directory: "/src", File: "/src/a.c", Arguments: []string{"cc", "-c", "a.c"}}
	prevGone := Entry{Directory: "/src", File: "/src/gone.c", Arguments: []string{"cc", "-c", "gone.c"}}
	prevB := Entry{Directory: "/src", File: "/src/b.c", Arguments: []string{"cc", "-c", "-O0", "b.c"}}

	curA := Entry{Directory: "/src", File: "/src/a.c", Arguments: []string{"cc", "-c", "a.c"}}
	curB := Entry{Directory: "/src", File: "/src/b.c", Arguments: []string{"cc", "-c", "-O2", "b.c"}}
	curC := Entry{Directory: "/src", File: "/src/c.c", Arguments: []string{"c++", "-c", "c.c"}}
	curC2 := Entry{Directory: "/src", File: "/src/c.c", Arguments: []string{"cc", "-c", "c.c"}}
	curMissing := Entry{Directory: "/src", File: "/src/generated.c", Arguments: []string{"cc", "-c", "generated.c"}}

	got, err := Merge(ctx,
		[]Entry{prevA, prevGone, prevB},
		[]Entry{curA, curB, curC, curC2, curMissing},
		exists)
	if err != nil {
		t.Fatalf("Merge()=%v", err)
	}
	// curC2 is duplicate of curC, as key doesn't include executable.
	want := []Entry{prevA, prevB, curB, curC}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Entry{})); diff != "" {
		t.Errorf("Merge(): diff -want +got:\n%s", diff)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	ctx := context.Background()
	exists := func(string) bool { return true }
	current := []Entry{
		{Directory: "/src", File: "/src/a.c", Arguments: []string{"cc", "-c", "a.c"}},
		{Directory: "/src", File: "/src/b.c", Arguments: []string{"cc", "-c", "b.c"}},
	}
	first, err := Merge(ctx, nil, current, exists)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Merge(ctx, first, current, exists)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(Entry{})); diff != "" {
		t.Errorf("Merge(Merge(current), current): diff -want +got:\n%s", diff)
	}
}

func TestMerge_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	current := []Entry{
		{Directory: "/src", File: "/src/a.c", Arguments: []string{"cc", "-c", "a.c"}},
	}
	_, err := Merge(ctx, nil, current, func(string) bool { return true })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Merge(canceled)=%v; want %v", err, context.Canceled)
	}
}
