// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compdb builds and updates compilation databases
// (compile_commands.json) from intercepted process creations.
package compdb

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/compdb/intercept"
	"go.chromium.org/infra/build/compdb/toolsupport/gccutil"
	"go.chromium.org/infra/build/compdb/toolsupport/shutil"
)

// Entry is an entry of a compilation database.
type Entry struct {
	// Directory is the working directory of the compilation.
	Directory string
	// File is the absolute path of the source file.
	File string
	// Arguments is the command line of the compilation.
	Arguments []string

	// command is the command line that failed to split,
	// read from a database written by other tools.
	command string
}

// Key is a key to identify duplicate entries.
type Key struct {
	File      string
	Directory string
	// Args is the arguments after the executable, joined by NUL.
	Args string
}

// Key returns the key of the entry.
func (e Entry) Key() Key {
	k := Key{
		File:      e.File,
		Directory: e.Directory,
	}
	if e.Arguments == nil {
		_, args, _ := strings.Cut(strings.TrimSpace(e.command), " ")
		k.Args = "\x00" + args
		return k
	}
	if len(e.Arguments) > 1 {
		k.Args = strings.Join(e.Arguments[1:], "\x00")
	}
	return k
}

// Command returns the shell escaped command line.
func (e Entry) Command() string {
	if e.Arguments == nil {
		return e.command
	}
	return shutil.Join(e.Arguments)
}

// Entries returns entries for the compilation c in the record rec,
// one for each source file.
func Entries(rec intercept.Record, c gccutil.Compilation) []Entry {
	entries := make([]Entry, 0, len(c.Sources))
	for _, src := range c.Sources {
		args := make([]string, 0, len(c.Flags)+3)
		args = append(args, c.Language.Compiler(), "-c")
		args = append(args, c.Flags...)
		args = append(args, src)
		fname := src
		if !filepath.IsAbs(fname) {
			fname = filepath.Join(rec.Dir, fname)
		}
		entries = append(entries, Entry{
			Directory: rec.Dir,
			File:      filepath.Clean(fname),
			Arguments: args,
		})
	}
	return entries
}

// Collect classifies records and returns entries for compilations.
// Errors in records are returned in errs, and don't stop collecting.
func Collect(tables *gccutil.Tables, records iter.Seq2[intercept.Record, error]) (entries []Entry, errs []error) {
	for rec, err := range records {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c, ok := tables.Classify(rec.Args)
		if !ok {
			log.Debugf("pid=%s not compilation: %q", rec.PID, rec.Args)
			continue
		}
		log.Debugf("pid=%s %s compilation: sources=%q", rec.PID, c.Language, c.Sources)
		entries = append(entries, Entries(rec, c)...)
	}
	return entries, errs
}

// Format is a format of a compilation database.
type Format struct {
	// Arguments writes "arguments" lists instead of "command" strings.
	Arguments bool
}

type jsonEntry struct {
	Directory string   `json:"directory"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	File      string   `json:"file"`
}

// Load loads a compilation database from r.
// Entries may have either "command" or "arguments".
func Load(r io.Reader) ([]Entry, error) {
	var jentries []jsonEntry
	err := json.NewDecoder(r).Decode(&jentries)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(jentries))
	for i, je := range jentries {
		e := Entry{
			Directory: je.Directory,
			File:      je.File,
			Arguments: je.Arguments,
		}
		if e.Arguments == nil {
			e.Arguments, err = shutil.Split(je.Command)
			if err != nil {
				log.Warnf("entry #%d %s: keep command as is: %v", i, je.File, err)
				e.command = je.Command
			}
			if e.Arguments == nil && err == nil {
				return nil, fmt.Errorf("entry #%d %s: no command", i, je.File)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Write writes entries to w as a compilation database.
func Write(w io.Writer, entries []Entry, format Format) error {
	jentries := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		je := jsonEntry{
			Directory: e.Directory,
			File:      e.File,
		}
		if format.Arguments && e.Arguments != nil {
			je.Arguments = e.Arguments
		} else {
			je.Command = e.Command()
		}
		jentries = append(jentries, je)
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(jentries)
}
