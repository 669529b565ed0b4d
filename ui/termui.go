// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

type termSpinner struct {
	w          io.Writer
	width      int
	quit, done chan struct{}
	started    time.Time
	n          int
	msg        string
}

// Start starts the spinner.
func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	// leave room for "... " and the spinner char.
	s.msg = fit(fmt.Sprintf(format, args...), s.width-5)
	fmt.Fprintf(s.w, "%s... ", s.msg)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.quit:
				return
			case <-time.After(1 * time.Second):
				const chars = `/-\|`
				fmt.Fprintf(s.w, "\b%c", chars[s.n])
				s.n = (s.n + 1) % len(chars)
			}
		}
	}()
}

func (s *termSpinner) stop() time.Duration {
	close(s.quit)
	<-s.done
	return time.Since(s.started)
}

// Stop stops the spinner.
func (s *termSpinner) Stop(err error) {
	d := s.stop()
	switch {
	case err != nil:
		fmt.Fprintf(s.w, "\r\033[K%6s %s %s %v\n", FormatDuration(d), s.msg, SGR(Failure, "failed"), err)
	case d < DurationThreshold:
		// the result line follows, so erase the spinner line.
		fmt.Fprintf(s.w, "\r\033[K")
	default:
		fmt.Fprintf(s.w, "\r\033[K%6s %s\n", FormatDuration(d), s.msg)
	}
}

// Done finishes the spinner with message.
func (s *termSpinner) Done(format string, args ...any) {
	d := s.stop()
	fmt.Fprintf(s.w, "\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, fmt.Sprintf(format, args...))
}

// TermUI is a terminal-based UI.
type TermUI struct {
	width int
}

func (t *TermUI) init() {
	t.width, _, _ = term.GetSize(int(os.Stderr.Fd()))
}

// PrintLines prints each message in a line, shortened to the terminal width.
func (t *TermUI) PrintLines(msgs ...string) {
	var buf bytes.Buffer
	for _, msg := range msgs {
		fmt.Fprintf(&buf, "\r\033[K%s\n", fit(msg, t.width))
	}
	os.Stderr.Write(buf.Bytes())
}

// NewSpinner returns a terminal-based spinner.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{w: os.Stderr, width: t.width}
}
