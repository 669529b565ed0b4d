// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides utilities for shell command lines.
package shutil

import "strings"

// Join joins a command line args to a single string, quoting args so that
// Split (or a POSIX shell) gives back the same args.
func Join(args []string) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		// quoted, so a shell doesn't take it as env var assignment.
		force := i == 0 && strings.Contains(arg, "=")
		writeEscaped(&sb, arg, force)
	}
	return sb.String()
}

func writeEscaped(sb *strings.Builder, arg string, force bool) {
	if !force && !needQuote(arg) {
		for _, ch := range arg {
			switch ch {
			case '\\', '"', '\'':
				sb.WriteByte('\\')
			}
			sb.WriteRune(ch)
		}
		return
	}
	sb.WriteByte('"')
	for _, ch := range arg {
		switch ch {
		case '\\', '"', '$', '`':
			sb.WriteByte('\\')
		}
		sb.WriteRune(ch)
	}
	sb.WriteByte('"')
}

func isReserved(ch rune) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	case '$', '%', '&', '(', ')', '[', ']', '{', '}', '*', '|', '<', '>', '@', '?', '!':
		return true
	case ';', '`', '#', '~':
		return true
	}
	return false
}

type quoteState int

const (
	unquoted quoteState = iota
	escaped
	inDoubleQuote
	inSingleQuote
	escapedInDoubleQuote
)

// needQuote reports whether arg needs to be protected by double quotes.
// arg's own backslashes and quotes are escaped when writing, so they don't
// protect reserved chars.
func needQuote(arg string) bool {
	if arg == "" {
		return true
	}
	state := unquoted
	for _, ch := range arg {
		if isReserved(ch) {
			return true
		}
		switch state {
		case unquoted:
			switch ch {
			case '\\':
				state = escaped
			case '"':
				state = inDoubleQuote
			case '\'':
				state = inSingleQuote
			}
		case escaped:
			state = unquoted
		case inDoubleQuote:
			if ch == '"' {
				state = unquoted
			}
		case inSingleQuote:
			if ch == '\'' {
				state = unquoted
			}
		}
	}
	return state != unquoted
}
