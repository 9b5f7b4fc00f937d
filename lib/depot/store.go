// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

// Config carries everything a store needs at open time. All knobs are
// explicit; the package never consults environment variables.
type Config struct {
	// Path is the store root directory. Its basename must be
	// [PackageDirName]. The directory need not exist yet; it is
	// created lazily on first write.
	Path string

	// Logger receives store activity (migrations, prunes, package
	// removal). nil discards all output.
	Logger *slog.Logger
}

// Store is a handle on one package store rooted at a single directory.
// The handle itself is cheap and stateless; all state lives on disk.
//
// A Store is safe for concurrent use by a single process as far as the
// underlying filesystem operations are: object writes are atomic
// publish-by-rename, but compound operations (remove, prune) are not
// serialized against each other beyond the advisory lock they take.
type Store struct {
	path   string
	logger *slog.Logger
}

// Open validates the configured root, migrates any legacy on-disk
// format forward, and returns a handle on the store. A root that does
// not exist yet is valid: the layout is created on first write.
//
// Open fails with [IncompatibleFormatError] if the store's recorded
// format version is unknown to this build.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving store path: %w", err)
	}
	if base := filepath.Base(path); base != PackageDirName {
		return nil, fmt.Errorf("store root %s: basename is %q, want %q", path, base, PackageDirName)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{path: path, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the absolute store root.
func (s *Store) Path() string {
	return s.path
}
