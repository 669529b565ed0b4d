// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package intercept

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// OutputEnv is the environment variable that tells the interception
// library where to write trace files.
const OutputEnv = "BEAR_OUTPUT"

// ErrLibraryNotFound is returned when the interception library is not found.
var ErrLibraryNotFound = errors.New("interception library not found")

// DefaultSearchPath returns directories to search the interception
// library in, relative to the running executable.
func DefaultSearchPath() []string {
	var dirs []string
	exe, err := os.Executable()
	if err == nil {
		exe, err = filepath.EvalSymlinks(exe)
	}
	if err != nil {
		log.Warnf("failed to get executable: %v", err)
	} else {
		dir := filepath.Dir(exe)
		dirs = append(dirs, filepath.Join(dir, "..", "lib"), dir)
	}
	return append(dirs, "/usr/local/lib/bear", "/usr/lib/bear")
}

// FindLibrary returns the path of the interception library.
// If explicit is not empty, it must exist. Otherwise, the platform's
// library name is looked up in searchPath.
func FindLibrary(explicit string, searchPath []string) (string, error) {
	if explicit != "" {
		fi, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrLibraryNotFound, err)
		}
		if fi.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrLibraryNotFound, explicit)
		}
		return filepath.Abs(explicit)
	}
	if libraryName == "" {
		return "", fmt.Errorf("%w: %w", ErrLibraryNotFound, errors.ErrUnsupported)
	}
	for _, dir := range searchPath {
		if dir == "" {
			continue
		}
		fname := filepath.Join(dir, libraryName)
		fi, err := os.Stat(fname)
		if err != nil || fi.IsDir() {
			continue
		}
		log.Debugf("found %s in %s", libraryName, dir)
		return filepath.Abs(fname)
	}
	return "", fmt.Errorf("%w: %s in %q", ErrLibraryNotFound, libraryName, searchPath)
}

// Environ returns base with the variables set so that every process
// started in it loads library and writes trace files in dir.
func Environ(base []string, dir, library string) ([]string, error) {
	vars, err := preloadEnv(base, library)
	if err != nil {
		return nil, err
	}
	vars = append(vars, OutputEnv+"="+dir)
	env := make([]string, 0, len(base)+len(vars))
	for _, e := range base {
		name, _, _ := strings.Cut(e, "=")
		if hasEnv(vars, name) {
			continue
		}
		env = append(env, e)
	}
	return append(env, vars...), nil
}

func hasEnv(vars []string, name string) bool {
	for _, v := range vars {
		if strings.HasPrefix(v, name+"=") {
			return true
		}
	}
	return false
}

func lookupEnv(env []string, name string) string {
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, name+"="); ok {
			return v
		}
	}
	return ""
}

// NewScratchDir creates a new directory for trace files.
// Caller should remove it after use.
func NewScratchDir() (string, error) {
	return os.MkdirTemp("", fmt.Sprintf("compdb-%s-", uuid.NewString()))
}
