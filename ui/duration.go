// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"
)

// DurationThreshold is the duration below which a finished spinner
// is erased instead of reported.
const DurationThreshold = 1 * time.Second

// FormatDuration formats duration in "X.XXs", "XmXX.XXs" or "XhXmXX.XXs".
func FormatDuration(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%05.2fs", h, m, d.Seconds())
	case m > 0:
		return fmt.Sprintf("%dm%05.2fs", m, d.Seconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
