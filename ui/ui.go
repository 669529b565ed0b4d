// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui reports progress and results on stderr, since stdout
// belongs to the intercepted build.
package ui

import (
	"os"
	"regexp"

	"golang.org/x/term"
)

// Spinner reports progress of a long operation.
type Spinner interface {
	// Start starts the spinner with the specified formatted string.
	Start(format string, args ...any)
	// Stop stops the spinner, outputting an error if provided.
	Stop(err error)
	// Done finishes the spinner with message.
	Done(format string, args ...any)
}

// UI is a user interface.
type UI interface {
	// PrintLines prints result lines, e.g. "12 entries in compile_commands.json".
	PrintLines(msgs ...string)
	// NewSpinner returns a new spinner.
	NewSpinner() Spinner
}

// Default holds the default UI interface.
// Making changes to this variable after init is undefined behavior.
var Default UI

func init() {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		termUI := &TermUI{}
		termUI.init()
		Default = termUI
	} else {
		Default = &LogUI{}
	}
}

// IsTerminal returns whether currently using a terminal UI.
func IsTerminal() bool {
	_, ok := Default.(*TermUI)
	return ok
}

// Style is a style of a message part.
type Style int

const (
	Bold Style = iota
	Success
	Failure
	Warning
)

// sgrParams are SGR (select graphic rendition) parameters of styles.
// https://en.wikipedia.org/wiki/ANSI_escape_code#SGR_(Select_Graphic_Rendition)_parameters
var sgrParams = [...]string{
	Bold:    "1",
	Success: "32",
	Failure: "31;1",
	Warning: "33",
}

// SGR returns s in the style on a terminal, or s as is otherwise.
func SGR(style Style, s string) string {
	if !IsTerminal() {
		return s
	}
	return "\033[" + sgrParams[style] + "m" + s + "\033[0m"
}

// csiRE matches CSI escape sequences, and a lone ESC at the end.
var csiRE = regexp.MustCompile(`\x1b(\[[0-9;?]*[A-Za-z]?)?`)

// StripANSIEscapeCodes strips ANSI escape codes.
func StripANSIEscapeCodes(s string) string {
	return csiRE.ReplaceAllString(s, "")
}

const elision = "..."

// fit shortens msg to width columns by eliding the middle, where the
// database path usually is. A shortened msg loses its styles.
func fit(msg string, width int) string {
	plain := []rune(StripANSIEscapeCodes(msg))
	if width <= len(elision)+2 || len(plain) <= width {
		return msg
	}
	n := width - len(elision)
	head := n / 2
	return string(plain[:head]) + elision + string(plain[len(plain)-(n-head):])
}
