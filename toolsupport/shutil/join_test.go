// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJoin(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{
			args: []string{"cc", "-c", "-O2", "foo.c"},
			want: "cc -c -O2 foo.c",
		},
		{
			args: []string{"cc", `-DNAME="a b"`, "-c", "foo.c"},
			want: `cc "-DNAME=\"a b\"" -c foo.c`,
		},
		{
			args: []string{"cc", `-DVERSION="1.0"`, "foo.c"},
			want: `cc -DVERSION=\"1.0\" foo.c`,
		},
		{
			args: []string{"cc", `-DPATH=C:\dir`, "foo.c"},
			want: `cc -DPATH=C:\\dir foo.c`,
		},
		{
			args: []string{"cc", "-DAPOS=it's", "foo.c"},
			want: `cc "-DAPOS=it's" foo.c`,
		},
		{
			args: []string{"cc", "-DS='x'", "foo.c"},
			want: `cc -DS=\'x\' foo.c`,
		},
		{
			args: []string{"cc", "-DHOME=$HOME", "-DCMD=`id`", "foo.c"},
			want: "cc \"-DHOME=\\$HOME\" \"-DCMD=\\`id\\`\" foo.c",
		},
		{
			args: []string{"cc", "", "-Isrc dir", "foo.c"},
			want: `cc "" "-Isrc dir" foo.c`,
		},
		{
			args: []string{"cc", `-DTRAIL=\`, "foo.c"},
			want: `cc "-DTRAIL=\\" foo.c`,
		},
		{
			args: []string{"CC=gcc", "-c", "foo.c"},
			want: `"CC=gcc" -c foo.c`,
		},
		{
			args: []string{"cc", "-Wl,--a=b", "-DX=1", "x+y.c"},
			want: "cc -Wl,--a=b -DX=1 x+y.c",
		},
	} {
		got := Join(tc.args)
		if got != tc.want {
			t.Errorf("Join(%q)=%q; want %q", tc.args, got, tc.want)
		}
	}
}

func TestJoinSplit_RoundTrip(t *testing.T) {
	for _, args := range [][]string{
		{"cc", "-c", "foo.c"},
		{"c++", `-DNAME="a b"`, "-c", "foo.cc"},
		{"cc", `-DA=\"`, `-DB=\\`, `-DC="`, "-DD='", `-DE=\'`},
		{"cc", "-D$X", "-D${X}", "-D`X`", "-D%X%", "-D&", "-D(x)", "-D[x]", "-D{x}", "-D*", "-D|", "-D<x>", "-D@", "-D?", "-D!"},
		{"cc", "-D;", "-D#", "#x", "~", "-Dtab\tx", "-Dnl\nx", ""},
		{"cc", `"quoted"`, `'single'`, `"unterminated`, `'unterminated`, `back\slash`},
		{"A=B", "-c", "x.c"},
		{"cc", "-DUNICODE=\u00e9\u3042", "-c", "\u00e9.c"},
	} {
		s := Join(args)
		got, err := Split(s)
		if err != nil {
			t.Errorf("Split(Join(%q))=%q, %v; want nil err", args, got, err)
			continue
		}
		if diff := cmp.Diff(args, got); diff != "" {
			t.Errorf("Split(Join(%q)): %q diff -want +got:\n%s", args, s, diff)
		}
	}
}

func TestJoinSplit_RoundTripRandom(t *testing.T) {
	const alphabet = "abc019-_=./,:+^ \t\n\\\"'$%&()[]{}*|<>@?!;`#~"
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		args := []string{"cc"}
		for n := r.Intn(5); n >= 0; n-- {
			b := make([]byte, r.Intn(8))
			for j := range b {
				b[j] = alphabet[r.Intn(len(alphabet))]
			}
			args = append(args, string(b))
		}
		s := Join(args)
		got, err := Split(s)
		if err != nil {
			t.Fatalf("Split(Join(%q))=%q, %v; want nil err", args, got, err)
		}
		if diff := cmp.Diff(args, got); diff != "" {
			t.Fatalf("Split(Join(%q)): %q diff -want +got:\n%s", args, s, diff)
		}
	}
}
