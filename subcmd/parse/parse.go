// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package parse implements the subcommand `parse` which writes a
// compilation database from trace files of a past build.
package parse

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/compdb/compdb"
	"go.chromium.org/infra/build/compdb/subcmd/dbflag"
	"go.chromium.org/infra/build/compdb/ui"
)

// Cmd returns the Command for the `parse` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "parse -trace_dir <dir> [options]",
		ShortDesc: "write the compilation database from trace files",
		LongDesc: `Write the compilation database from trace files kept by
 $ compdb intercept -keep_traces ...

 $ compdb parse -trace_dir <dir> [-o compile_commands.json] [-append]
`,
		CommandRun: func() subcommands.CommandRun {
			r := &run{}
			r.init()
			return r
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	db       dbflag.Flags
	traceDir string
}

func (c *run) init() {
	c.db.Register(&c.Flags)
	c.Flags.StringVar(&c.traceDir, "trace_dir", "", "directory of trace files")
}

// Run runs the `parse` subcommand.
func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	log.SetLevel(c.db.Verbosity.Level())
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	stats, err := c.run(ctx)
	var errFlag flagError
	switch {
	case errors.As(err, &errFlag):
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.GetName(), err)
		return 2
	case err != nil:
		fmt.Fprintf(os.Stderr, "%s: %v\n", ui.SGR(ui.Failure, "Error"), err)
		return 1
	}
	msg := fmt.Sprintf("%d entries in %s", stats.Entries, c.db.Output)
	if stats.Errors > 0 {
		msg += ui.SGR(ui.Warning, fmt.Sprintf(" (%d broken traces)", stats.Errors))
	}
	ui.Default.PrintLines(msg)
	return 0
}

// flagError is an error in flags. It exits with 2.
type flagError struct {
	err error
}

func (f flagError) Error() string {
	return f.err.Error()
}

func (f flagError) Unwrap() error {
	return f.err
}

var errNoTraceDir = errors.New("no -trace_dir")

func (c *run) run(ctx context.Context) (compdb.Stats, error) {
	if c.traceDir == "" {
		return compdb.Stats{}, flagError{err: errNoTraceDir}
	}
	fi, err := os.Stat(c.traceDir)
	if err != nil {
		return compdb.Stats{}, err
	}
	if !fi.IsDir() {
		return compdb.Stats{}, fmt.Errorf("%s is not a directory", c.traceDir)
	}
	opt, err := c.db.Options()
	if err != nil {
		return compdb.Stats{}, flagError{err: err}
	}
	return compdb.Generate(ctx, c.traceDir, opt)
}
