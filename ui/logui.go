// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

type logSpinner struct {
	started time.Time
	msg     string
}

// Start implements the ui.Spinner interface.
// A log-based UI can't animate, so it only logs start and completion.
func (l *logSpinner) Start(format string, args ...any) {
	l.started = time.Now()
	l.msg = fmt.Sprintf(format, args...)
	log.Info(l.msg)
}

// Stop implements the ui.Spinner interface.
func (l *logSpinner) Stop(err error) {
	d := FormatDuration(time.Since(l.started))
	if err != nil {
		log.Warnf("%s: failed %s %v", l.msg, d, err)
		return
	}
	log.Infof("%s: done %s", l.msg, d)
}

// Done finishes the spinner with message.
func (l *logSpinner) Done(format string, args ...any) {
	log.Infof("%s: %s %s", l.msg, fmt.Sprintf(format, args...), FormatDuration(time.Since(l.started)))
}

// LogUI is a log-based UI.
type LogUI struct{}

// PrintLines prints each message in a line to stderr, without styles.
func (LogUI) PrintLines(msgs ...string) {
	for _, msg := range msgs {
		fmt.Fprintln(os.Stderr, StripANSIEscapeCodes(msg))
	}
}

// NewSpinner returns an implementation of ui.Spinner.
func (LogUI) NewSpinner() Spinner {
	return &logSpinner{}
}
