// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build darwin

package intercept

const libraryName = "libear.dylib"

func preloadEnv(base []string, library string) ([]string, error) {
	insert := library
	if v := lookupEnv(base, "DYLD_INSERT_LIBRARIES"); v != "" {
		insert = library + ":" + v
	}
	return []string{
		"DYLD_INSERT_LIBRARIES=" + insert,
		"DYLD_FORCE_FLAT_NAMESPACE=1",
	}, nil
}
