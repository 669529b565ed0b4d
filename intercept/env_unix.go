// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build unix && !darwin

package intercept

const libraryName = "libear.so"

func preloadEnv(base []string, library string) ([]string, error) {
	preload := library
	if v := lookupEnv(base, "LD_PRELOAD"); v != "" {
		preload = library + ":" + v
	}
	return []string{"LD_PRELOAD=" + preload}, nil
}
