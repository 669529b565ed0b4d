// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build windows

package compdb

import (
	"errors"
	"os"
)

// TODO: support lock file on windows

var errAlreadyLocked = errors.New("already locked")

type lockFile struct {
	f *os.File
}

func (l *lockFile) Lock() error   { return errors.ErrUnsupported }
func (l *lockFile) Unlock() error { return errors.ErrUnsupported }
