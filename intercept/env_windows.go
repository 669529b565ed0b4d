// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build windows

package intercept

import "errors"

// TODO: support interception on windows (detours based library).

const libraryName = ""

func preloadEnv(base []string, library string) ([]string, error) {
	return nil, errors.ErrUnsupported
}
