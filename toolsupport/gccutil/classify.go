// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc compatible compilers.
package gccutil

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Language is a language compiled by a compiler.
type Language int

const (
	C Language = iota
	CXX
)

func (l Language) String() string {
	switch l {
	case C:
		return "c"
	case CXX:
		return "c++"
	}
	return "unknown"
}

// Compiler returns canonical compiler name for the language.
func (l Language) Compiler() string {
	if l == CXX {
		return "c++"
	}
	return "cc"
}

// Compilation is a compiler invocation that compiles source files.
type Compilation struct {
	Language Language
	// Flags are flags to compile, in command line order.
	Flags []string
	// Sources are source files, as given in the command line.
	Sources []string
}

// maxWrapperDepth bounds nested wrappers, e.g. ccache distcc gcc.
const maxWrapperDepth = 8

// Classify classifies args as a compilation.
// It returns false if args is not a compilation.
func (t *Tables) Classify(args []string) (Compilation, bool) {
	lang, cargs, ok := t.ClassifyExecutable(args)
	if !ok {
		return Compilation{}, false
	}
	return t.ClassifyArguments(lang, cargs)
}

// ClassifyExecutable checks args[0] is a compiler, and returns its
// language and the compiler's arguments.
// Wrappers in args[0] are unwrapped.
func (t *Tables) ClassifyExecutable(args []string) (Language, []string, bool) {
	return t.classifyExecutable(args, 0)
}

func (t *Tables) classifyExecutable(args []string, depth int) (Language, []string, bool) {
	if len(args) == 0 {
		return C, nil, false
	}
	cmdname := filepath.Base(args[0])
	switch {
	case matchAny(t.wrappers, cmdname):
		if depth < maxWrapperDepth {
			lang, cargs, ok := t.classifyExecutable(args[1:], depth+1)
			if ok {
				return lang, cargs, true
			}
		} else {
			log.Warnf("too many nested wrappers: %q", args)
		}
		// wrapper that runs default compiler. e.g. `ccache -c foo.c`
		return C, args[1:], true
	case matchAny(t.compilers, cmdname):
		if matchAny(t.cxx, cmdname) {
			return CXX, args[1:], true
		}
		return C, args[1:], true
	}
	return C, nil, false
}

// ClassifyArguments classifies compiler's arguments.
// It returns false if args doesn't compile any source file.
func (t *Tables) ClassifyArguments(lang Language, args []string) (Compilation, bool) {
	c := Compilation{Language: lang}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if t.disqualifying[arg] {
			return Compilation{}, false
		}
		if n, ok := t.ignored[arg]; ok {
			i += n
			continue
		}
		if t.keepOperand[arg] {
			c.Flags = append(c.Flags, arg)
			if i+1 < len(args) {
				i++
				c.Flags = append(c.Flags, args[i])
			}
			continue
		}
		if hasAnyPrefix(arg, t.ignoredPrefixes) {
			continue
		}
		if t.IsSource(arg) {
			c.Sources = append(c.Sources, arg)
			continue
		}
		c.Flags = append(c.Flags, arg)
	}
	if len(c.Sources) == 0 {
		return Compilation{}, false
	}
	return c, true
}

// IsSource reports whether arg is a source file name.
// Leading dots of the base name don't start an extension, so ".c" is not
// a source file.
func (t *Tables) IsSource(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return false
	}
	name := strings.TrimLeft(filepath.Base(arg), ".")
	return t.sourceExts[strings.ToLower(filepath.Ext(name))]
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
