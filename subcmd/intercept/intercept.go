// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package intercept implements the subcommand `intercept` which runs a
// build with the interception library preloaded and writes a compilation
// database from the compilations the build ran.
package intercept

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/compdb/compdb"
	"go.chromium.org/infra/build/compdb/intercept"
	"go.chromium.org/infra/build/compdb/subcmd/dbflag"
	"go.chromium.org/infra/build/compdb/ui"
)

const usage = `run a build and write the compilation database.

 $ compdb intercept [-o compile_commands.json] [-append] [options] [--] <build command>...

The build runs with the interception library preloaded. Compiler
invocations are written in the compilation database even if the build
fails. The exit code is the build's exit code.

Environment variables:
 COMPDB_LIBEAR              default of -libear
 COMPDB_LIBEAR_SEARCH_PATH  default of -libear_search_path
`

// Cmd returns the Command for the `intercept` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "intercept [options] [--] <build command>...",
		ShortDesc: "run a build and write the compilation database",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			r := &run{}
			r.init()
			return r
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	db               dbflag.Flags
	libear           string
	libearSearchPath string
	keepTraces       bool
}

func (c *run) init() {
	c.db.Register(&c.Flags)
	c.Flags.StringVar(&c.libear, "libear", os.Getenv("COMPDB_LIBEAR"), "path of the interception library")
	c.Flags.StringVar(&c.libearSearchPath, "libear_search_path", os.Getenv("COMPDB_LIBEAR_SEARCH_PATH"), "list of directories to search the interception library in")
	c.Flags.BoolVar(&c.keepTraces, "keep_traces", false, "keep the trace directory for `compdb parse`")
}

// flagError is an error in flags. It exits with 2.
type flagError struct {
	err error
}

func (f flagError) Error() string {
	return f.err.Error()
}

// buildExit is the exit of the build command.
type buildExit struct {
	code        int
	interrupted bool
}

// Run runs the `intercept` subcommand.
func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	started := time.Now()
	ctx := cli.GetContext(a, c, env)
	log.SetLevel(c.db.Verbosity.Level())
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	exit, stats, err := c.run(ctx, args)
	dur := ui.FormatDuration(time.Since(started))
	var errFlag flagError
	switch {
	case errors.As(err, &errFlag):
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.GetName(), err)
	case err != nil:
		fmt.Fprintf(os.Stderr, "%6s %s: %v\n", dur, ui.SGR(ui.Failure, "Error"), err)
	default:
		ui.Default.PrintLines(summary(dur, exit, stats, c.db.Output))
	}
	return exitStatus(exit, err)
}

func summary(dur string, exit buildExit, stats compdb.Stats, output string) string {
	msg := fmt.Sprintf("%d entries in %s", stats.Entries, output)
	if stats.Errors > 0 {
		msg += ui.SGR(ui.Warning, fmt.Sprintf(" (%d broken traces)", stats.Errors))
	}
	switch {
	case exit.interrupted:
		return fmt.Sprintf("%6s %s: %s", dur, ui.SGR(ui.Warning, "Interrupted"), msg)
	case exit.code != 0:
		return fmt.Sprintf("%6s %s exit=%d: %s", dur, ui.SGR(ui.Failure, "Build Failure"), exit.code, msg)
	}
	return fmt.Sprintf("%6s %s: %s", dur, ui.SGR(ui.Success, "Done"), msg)
}

// exitStatus returns the exit status for the build exit and err of
// compdb itself. Interrupt takes precedence over the build's status.
func exitStatus(exit buildExit, err error) int {
	var errFlag flagError
	switch {
	case errors.As(err, &errFlag):
		return 2
	case exit.interrupted:
		return 1
	case exit.code != 0:
		return exit.code
	case err != nil:
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) (buildExit, compdb.Stats, error) {
	var exit buildExit
	var stats compdb.Stats
	if len(args) == 0 {
		return exit, stats, flagError{err: errors.New("no build command")}
	}
	opt, err := c.db.Options()
	if err != nil {
		return exit, stats, flagError{err: err}
	}
	searchPath := intercept.DefaultSearchPath()
	if c.libearSearchPath != "" {
		searchPath = filepath.SplitList(c.libearSearchPath)
	}
	library, err := intercept.FindLibrary(c.libear, searchPath)
	if err != nil {
		return exit, stats, err
	}
	traceDir, err := intercept.NewScratchDir()
	if err != nil {
		return exit, stats, err
	}
	if c.keepTraces {
		log.Warnf("trace files are kept in %s", traceDir)
	} else {
		defer func() {
			err := os.RemoveAll(traceDir)
			if err != nil {
				log.Warnf("failed to remove %s: %v", traceDir, err)
			}
		}()
	}
	environ, err := intercept.Environ(os.Environ(), traceDir, library)
	if err != nil {
		return exit, stats, err
	}
	log.Infof("run %q with %s", args, library)
	exit, err = runBuild(ctx, args, environ)
	if err != nil {
		return exit, stats, err
	}

	// post-process even when interrupted, so traces already collected
	// are not lost.
	pctx := context.WithoutCancel(ctx)
	spin := ui.Default.NewSpinner()
	spin.Start("writing %s", c.db.Output)
	stats, err = compdb.Generate(pctx, traceDir, opt)
	if err != nil {
		spin.Stop(err)
		return exit, stats, err
	}
	spin.Stop(nil)
	return exit, stats, nil
}

// runBuild runs the build command in the environment.
// It doesn't kill the build on ctx cancelation, since the build
// receives the same interrupt from the terminal.
func runBuild(ctx context.Context, args, environ []string) (buildExit, error) {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = environ
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Start()
	if err != nil {
		return buildExit{}, fmt.Errorf("failed to start build: %w", err)
	}
	err = cmd.Wait()
	exit := buildExit{
		code:        exitCode(err),
		interrupted: ctx.Err() != nil,
	}
	log.Infof("build exit=%d interrupted=%t", exit.code, exit.interrupted)
	return exit, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 1
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok {
		if w.Signaled() {
			return 128 + int(w.Signal())
		}
		return w.ExitStatus()
	}
	return 1
}
