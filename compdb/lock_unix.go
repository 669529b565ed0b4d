// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build unix

package compdb

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var errAlreadyLocked = errors.New("already locked")

// lockFile is an advisory lock of an open file.
type lockFile struct {
	f *os.File
}

// Lock tries to lock the file exclusively.
// It returns errAlreadyLocked if other holds the lock.
func (l *lockFile) Lock() error {
	for {
		err := unix.Flock(int(l.f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EWOULDBLOCK):
			return fmt.Errorf("%s: %w", l.f.Name(), errAlreadyLocked)
		}
		return err
	}
}

func (l *lockFile) Unlock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
