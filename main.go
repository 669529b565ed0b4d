// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Compdb generates a compilation database by intercepting a build.
package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/infra/build/compdb/runtimex"
	"go.chromium.org/infra/build/compdb/subcmd/help"
	"go.chromium.org/infra/build/compdb/subcmd/intercept"
	"go.chromium.org/infra/build/compdb/subcmd/parse"
	"go.chromium.org/infra/build/compdb/subcmd/version"
	"go.chromium.org/infra/build/compdb/ui"
)

const versionID = "compdb v1.0.0"

// exitInternalError is the exit code of an unhandled internal fault.
const exitInternalError = 127

func getApplication() *subcommands.DefaultApplication {
	return &subcommands.DefaultApplication{
		Name:  "compdb",
		Title: "Compilation database generator",
		Commands: []*subcommands.Command{
			intercept.Cmd(),
			parse.Cmd(),

			help.Cmd(),
			version.Cmd(versionID),
		},
	}
}

func main() {
	os.Exit(compdbMain(os.Args[1:]))
}

func compdbMain(args []string) int {
	ui.Init()
	defer ui.Restore()
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	logBuildInfo()
	return recoverExit(func() int {
		return subcommands.Run(getApplication(), args)
	})
}

// recoverExit runs fn and returns its exit code, or exitInternalError
// if fn panics.
func recoverExit(fn func() int) (code int) {
	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Errorf("panic: %v\n%s", r, buf)
			code = exitInternalError
		}
	}()
	return fn()
}

func logBuildInfo() {
	buildinfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	log.Debugf("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
	log.Debugf("cpu: %s", runtimex.CPUInfo())
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
