// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"fmt"
	"io"

	"github.com/maruel/subcommands"
)

const quickStart = `
Quick start:
 $ compdb intercept -- make -j8
 $ compdb intercept -append -o out/compile_commands.json -- ninja -C out foo

Environment variables:
 COMPDB_LIBEAR              path of the interception library
 COMPDB_LIBEAR_SEARCH_PATH  directories to search the interception library in
`

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands with a quick start, or help about a specific command.",
		CommandRun: func() subcommands.CommandRun {
			return &helpRun{}
		},
	}
}

type helpRun struct {
	subcommands.CommandRunBase
}

func (h *helpRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) == 0 {
		printOverview(a.GetOut(), a)
		return 0
	}
	return subcommands.CmdHelp.CommandRun().Run(a, args, env)
}

func printOverview(w io.Writer, a subcommands.Application) {
	subcommands.Usage(w, a, false)
	fmt.Fprint(w, quickStart)
}
