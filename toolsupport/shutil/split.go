// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"errors"
	"fmt"
	"strings"
)

// Split splits a command line in the manner of POSIX shell word splitting.
// It would return error for complicated pipe line, or expansions that
// need a shell to evaluate.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	inword := false
	// firstQuoted is whether the first word has quoted chars.
	firstQuoted := false
	state := unquoted
	for _, ch := range cmdline {
		switch state {
		case escaped:
			// backslash-newline is line continuation.
			if ch != '\n' {
				inword = true
				sb.WriteRune(ch)
			}
			state = unquoted
			continue
		case inSingleQuote:
			if ch == '\'' {
				state = unquoted
				continue
			}
			sb.WriteRune(ch)
			continue
		case inDoubleQuote:
			switch ch {
			case '"':
				state = unquoted
			case '\\':
				state = escapedInDoubleQuote
			case '$', '`':
				return nil, fmt.Errorf("failed to split: cmdline contains expansion %c in double quotes", ch)
			default:
				sb.WriteRune(ch)
			}
			continue
		case escapedInDoubleQuote:
			switch ch {
			case '$', '`', '"', '\\':
				sb.WriteRune(ch)
			case '\n':
			default:
				sb.WriteByte('\\')
				sb.WriteRune(ch)
			}
			state = inDoubleQuote
			continue
		}
		if len(args) == 0 && (ch == '\\' || ch == '"' || ch == '\'') {
			firstQuoted = true
		}
		switch ch {
		case '\\':
			state = escaped
		case '"':
			inword = true
			state = inDoubleQuote
		case '\'':
			inword = true
			state = inSingleQuote
		case ' ', '\t', '\n':
			if inword {
				args = append(args, sb.String())
				sb.Reset()
				inword = false
			}
		case ';', '&', '|', '<', '>', '$', '`', '(', ')':
			return nil, fmt.Errorf("failed to split: cmdline contains shell metachar %c", ch)
		case '#':
			if !inword {
				return nil, errors.New("failed to split: cmdline contains comment")
			}
			sb.WriteRune(ch)
		default:
			inword = true
			sb.WriteRune(ch)
		}
	}
	switch state {
	case escaped:
		return nil, errors.New("failed to split: cmdline ends with backslash")
	case inSingleQuote, inDoubleQuote, escapedInDoubleQuote:
		return nil, errors.New("failed to split: unterminated quote")
	}
	if inword {
		args = append(args, sb.String())
	}
	if len(args) >= 1 && !firstQuoted && strings.Contains(args[0], "=") {
		// if initial args contains =, it would set env var and need to invoke via sh
		// TODO(ukai): parse env overrides?
		return nil, fmt.Errorf("argv[0] is env set %q", args[0])
	}
	return args, nil
}
