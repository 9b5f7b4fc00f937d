// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// lock takes the store's advisory file lock, blocking until it is
// available, and returns a function that releases it. Migration and
// prune hold the lock so cooperating processes cannot interleave their
// multi-step rewrites; single-file operations rely on atomic renames
// instead.
//
// A store that does not exist on disk yet has nothing to serialize
// over, so lock succeeds without touching the filesystem.
func (s *Store) lock() (release func(), err error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return func() {}, nil
	}
	file, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening store lock file: %w", err)
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		file.Close()
		return nil, fmt.Errorf("locking store %s: %w", s.path, err)
	}
	return func() {
		unix.Flock(int(file.Fd()), unix.LOCK_UN)
		file.Close()
	}, nil
}
