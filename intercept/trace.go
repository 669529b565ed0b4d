// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package intercept reads the process creation traces written by the
// preloaded interception library, and prepares the environment that makes
// a build load that library.
package intercept

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

// Separators of the trace file format.
const (
	// GS separates records.
	GS = 0x1d
	// RS separates fields in a record.
	RS = 0x1e
	// US separates argv tokens in the command field.
	US = 0x1f
)

// numFields is the number of fields in a record:
// pid, ppid, function, cwd, command.
const numFields = 5

// Record is one process creation event.
type Record struct {
	PID      string `json:"pid"`
	PPID     string `json:"ppid"`
	Function string `json:"function"`
	// Dir is the working directory of the process.
	Dir string `json:"directory"`
	// Args is the full command line, including the executable.
	Args []string `json:"arguments"`
}

// ParseError is an error of a malformed trace file.
type ParseError struct {
	Fname string
	// Index is the index of the malformed record in the file.
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	if e.Fname == "" {
		return fmt.Sprintf("record #%d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("%s: record #%d: %v", e.Fname, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses trace records in b.
func Parse(b []byte) ([]Record, error) {
	var recs []Record
	i := 0
	for len(b) > 0 {
		var rec []byte
		rec, b = nextRecord(b)
		if len(rec) == 0 {
			continue
		}
		fields := bytes.Split(rec, []byte{RS})
		if len(fields) != numFields {
			return nil, &ParseError{
				Index: i,
				Err:   fmt.Errorf("%d fields; want %d", len(fields), numFields),
			}
		}
		recs = append(recs, Record{
			PID:      string(fields[0]),
			PPID:     string(fields[1]),
			Function: string(fields[2]),
			Dir:      string(fields[3]),
			Args:     splitArgs(fields[4]),
		})
		i++
	}
	return recs, nil
}

func nextRecord(buf []byte) (rec, remain []byte) {
	i := bytes.IndexByte(buf, GS)
	if i < 0 {
		return buf, nil
	}
	return buf[:i], buf[i+1:]
}

func splitArgs(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	toks := bytes.Split(b, []byte{US})
	// the command is terminated by US, so the last token is empty.
	if len(toks[len(toks)-1]) == 0 {
		toks = toks[:len(toks)-1]
	}
	args := make([]string, 0, len(toks))
	for _, t := range toks {
		args = append(args, string(t))
	}
	return args
}

// Encode writes r to w in the trace file format.
func Encode(w io.Writer, r Record) error {
	var buf bytes.Buffer
	for _, f := range []string{r.PID, r.PPID, r.Function, r.Dir} {
		buf.WriteString(f)
		buf.WriteByte(RS)
	}
	for _, arg := range r.Args {
		buf.WriteString(arg)
		buf.WriteByte(US)
	}
	buf.WriteByte(GS)
	_, err := w.Write(buf.Bytes())
	return err
}

// ParseFile parses the trace file fname.
func ParseFile(fname string) ([]Record, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	recs, err := Parse(b)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Fname = fname
		}
		return nil, err
	}
	return recs, nil
}

// TraceFiles returns trace files in dir, sorted by name.
func TraceFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var fnames []string
	for _, ent := range ents {
		if !ent.Type().IsRegular() {
			continue
		}
		fnames = append(fnames, filepath.Join(dir, ent.Name()))
	}
	sort.Strings(fnames)
	return fnames, nil
}

// Records returns a sequence of records in the trace files in dir.
// Files are read one by one in order of TraceFiles.
// A file that fails to read or parse yields one error and none of its
// records, and the sequence continues with the next file.
func Records(dir string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		fnames, err := TraceFiles(dir)
		if err != nil {
			yield(Record{}, err)
			return
		}
		log.Debugf("%d trace files in %s", len(fnames), dir)
		for _, fname := range fnames {
			recs, err := ParseFile(fname)
			if err != nil {
				if !yield(Record{}, err) {
					return
				}
				continue
			}
			for _, r := range recs {
				if !yield(r, nil) {
					return
				}
			}
		}
	}
}
