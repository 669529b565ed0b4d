// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dbflag provides flags to write a compilation database,
// shared by subcommands.
package dbflag

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/compdb/compdb"
	"go.chromium.org/infra/build/compdb/toolsupport/gccutil"
)

// DefaultOutput is the default database filename.
const DefaultOutput = "compile_commands.json"

// Flags holds flag values.
type Flags struct {
	Output     string
	Append     bool
	Raw        bool
	Arguments  bool
	ConfigFile string
	Verbosity  Verbosity
}

// Register registers flags in fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Output, "o", DefaultOutput, "output compilation database file")
	fs.BoolVar(&f.Append, "append", false, "merge with the existing database, dropping entries of removed files")
	fs.BoolVar(&f.Append, "a", false, "alias of -append")
	fs.BoolVar(&f.Raw, "raw", false, "write process creation records without classification. zstd compressed if output ends with .zst")
	fs.BoolVar(&f.Arguments, "arguments", false, `write "arguments" lists instead of "command" strings`)
	fs.StringVar(&f.ConfigFile, "config", "", "YAML file of additional wrappers, compilers and source extensions")
	fs.Var(&f.Verbosity, "v", "verbosity. repeat to increase, e.g. -v -v")
}

// Options returns options to generate the database.
// It loads the config file if specified.
func (f *Flags) Options() (compdb.GenerateOptions, error) {
	opt := compdb.GenerateOptions{
		Output: f.Output,
		Raw:    f.Raw,
		UpdateOptions: compdb.UpdateOptions{
			Append: f.Append,
			Format: compdb.Format{Arguments: f.Arguments},
		},
	}
	if f.Raw && f.Append {
		return opt, fmt.Errorf("-raw and -append are exclusive")
	}
	if f.ConfigFile == "" {
		return opt, nil
	}
	cfg, err := gccutil.LoadConfig(f.ConfigFile)
	if err != nil {
		return opt, fmt.Errorf("failed to load config %s: %w", f.ConfigFile, err)
	}
	opt.Tables, err = gccutil.DefaultTables().With(cfg)
	if err != nil {
		return opt, fmt.Errorf("bad config %s: %w", f.ConfigFile, err)
	}
	return opt, nil
}

// Verbosity is a counter flag. Each -v increments it.
type Verbosity int

func (v *Verbosity) String() string {
	if v == nil {
		return "0"
	}
	return strconv.Itoa(int(*v))
}

// Set implements flag.Value.
func (v *Verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q: %w", s, err)
	}
	*v = Verbosity(n)
	return nil
}

// IsBoolFlag makes -v take no value.
func (*Verbosity) IsBoolFlag() bool { return true }

// Level returns the log level for the verbosity.
func (v Verbosity) Level() log.Level {
	switch {
	case v <= 0:
		return log.WarnLevel
	case v == 1:
		return log.InfoLevel
	}
	return log.DebugLevel
}
