// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"context"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/compdb/intercept"
	"go.chromium.org/infra/build/compdb/toolsupport/gccutil"
)

// GenerateOptions is options of Generate.
type GenerateOptions struct {
	// Output is the database filename.
	Output string
	// Raw writes trace records as is, without classification.
	Raw bool
	// Tables classifies commands. If nil, gccutil.DefaultTables is used.
	Tables *gccutil.Tables

	UpdateOptions
}

// Stats is the result of Generate.
type Stats struct {
	// Entries is the number of entries in the output.
	Entries int
	// Collected is the number of entries collected from traces.
	Collected int
	// Errors is the number of trace files that failed to parse.
	Errors int
}

// Generate reads trace files in traceDir and writes the database.
func Generate(ctx context.Context, traceDir string, opt GenerateOptions) (Stats, error) {
	var stats Stats
	if opt.Raw {
		var err error
		stats.Entries, err = WriteRawFile(ctx, opt.Output, intercept.Records(traceDir))
		stats.Collected = stats.Entries
		return stats, err
	}
	tables := opt.Tables
	if tables == nil {
		tables = gccutil.DefaultTables()
	}
	entries, errs := Collect(tables, intercept.Records(traceDir))
	for _, err := range errs {
		log.Warnf("skip trace: %v", err)
	}
	stats.Collected = len(entries)
	stats.Errors = len(errs)
	n, err := Update(ctx, opt.Output, entries, opt.UpdateOptions)
	stats.Entries = n
	return stats, err
}
