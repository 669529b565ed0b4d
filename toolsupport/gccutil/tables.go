// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Tables holds the lookup tables used to classify command lines.
// It must not be modified after construction.
type Tables struct {
	wrappers  []*regexp.Regexp
	compilers []*regexp.Regexp
	cxx       []*regexp.Regexp

	// ignored flags and the number of following operands they consume.
	ignored map[string]int
	// ignoredPrefixes are prefixes of joined linker flags, e.g. -lfoo.
	ignoredPrefixes []string
	// disqualifying flags produce no object file.
	disqualifying map[string]bool
	// keepOperand flags are kept with their following operand.
	keepOperand map[string]bool

	// sourceExts are lower-cased source file extensions.
	sourceExts map[string]bool
}

var defaultTables = sync.OnceValue(func() *Tables {
	return &Tables{
		wrappers: []*regexp.Regexp{
			regexp.MustCompile(`^(distcc|ccache|sccache|icecc|buildcache)$`),
		},
		compilers: []*regexp.Regexp{
			regexp.MustCompile(`^(intercept-|analyze-|)c(c|\+\+)$`),
			regexp.MustCompile(`^([^-]*-)*[mg](cc|\+\+)(-\d+(\.\d+){0,2})?$`),
			regexp.MustCompile(`^([^-]*-)*clang(\+\+)?(-\d+(\.\d+){0,2})?$`),
			regexp.MustCompile(`^llvm-g(cc|\+\+)$`),
		},
		cxx: []*regexp.Regexp{
			regexp.MustCompile(`^(.+)(\+\+)(-.+|)$`),
		},
		ignored: map[string]int{
			// compile only
			"-c": 0,
			// dependency generation
			"-MD":  0,
			"-MMD": 0,
			"-MG":  0,
			"-MP":  0,
			"-MF":  1,
			"-MT":  1,
			"-MQ":  1,
			// linker only
			"-static":   0,
			"-shared":   0,
			"-s":        0,
			"-rdynamic": 0,
			"-l":        1,
			"-L":        1,
			"-u":        1,
			"-z":        1,
			"-T":        1,
			"-Xlinker":  1,
		},
		ignoredPrefixes: []string{"-l", "-L", "-Wl,"},
		disqualifying: map[string]bool{
			"-E":   true,
			"-S":   true,
			"-cc1": true,
			"-M":   true,
			"-MM":  true,
			"-###": true,
		},
		keepOperand: map[string]bool{
			"-D": true,
			"-I": true,
		},
		sourceExts: map[string]bool{
			".c":   true,
			".cc":  true,
			".cp":  true,
			".cpp": true,
			".cxx": true,
			".c++": true,
			".m":   true,
			".mm":  true,
			".i":   true,
			".ii":  true,
			".mii": true,
		},
	}
})

// DefaultTables returns the built-in tables.
func DefaultTables() *Tables {
	return defaultTables()
}

// Config is additional classification rules.
type Config struct {
	// Wrappers are regexps of wrapper executable names.
	Wrappers []string `yaml:"wrappers"`
	// Compilers are regexps of compiler executable names.
	Compilers []string `yaml:"compilers"`
	// CXXCompilers are regexps of compiler executable names that
	// compile C++. They don't need to be listed in Compilers.
	CXXCompilers []string `yaml:"cxx_compilers"`
	// SourceExtensions are additional source file extensions, e.g. ".cu".
	SourceExtensions []string `yaml:"source_extensions"`
}

// With returns new tables that extends t with cfg.
func (t *Tables) With(cfg Config) (*Tables, error) {
	nt := &Tables{
		wrappers:        slices.Clone(t.wrappers),
		compilers:       slices.Clone(t.compilers),
		cxx:             slices.Clone(t.cxx),
		ignored:         maps.Clone(t.ignored),
		ignoredPrefixes: slices.Clone(t.ignoredPrefixes),
		disqualifying:   maps.Clone(t.disqualifying),
		keepOperand:     maps.Clone(t.keepOperand),
		sourceExts:      maps.Clone(t.sourceExts),
	}
	var err error
	nt.wrappers, err = appendRegexps(nt.wrappers, cfg.Wrappers)
	if err != nil {
		return nil, fmt.Errorf("wrappers: %w", err)
	}
	nt.compilers, err = appendRegexps(nt.compilers, cfg.Compilers)
	if err != nil {
		return nil, fmt.Errorf("compilers: %w", err)
	}
	nt.compilers, err = appendRegexps(nt.compilers, cfg.CXXCompilers)
	if err != nil {
		return nil, fmt.Errorf("cxx_compilers: %w", err)
	}
	nt.cxx, err = appendRegexps(nt.cxx, cfg.CXXCompilers)
	if err != nil {
		return nil, fmt.Errorf("cxx_compilers: %w", err)
	}
	for _, ext := range cfg.SourceExtensions {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("source_extensions: %q doesn't start with '.'", ext)
		}
		nt.sourceExts[strings.ToLower(ext)] = true
	}
	return nt, nil
}

func appendRegexps(res []*regexp.Regexp, exprs []string) ([]*regexp.Regexp, error) {
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
