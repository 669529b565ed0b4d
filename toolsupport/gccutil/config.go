// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads classification config from yaml file fname.
//
//	wrappers:
//	- ^goma_cc$
//	cxx_compilers:
//	- ^nvcc$
//	source_extensions:
//	- .cu
func LoadConfig(fname string) (Config, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	err = d.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse %s: %w", fname, err)
	}
	return cfg, nil
}
