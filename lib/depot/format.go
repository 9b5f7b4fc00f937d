// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// formatVersion reads the store's recorded format version. A store
// with no format file (including a store that does not exist on disk
// yet) reports the empty string, which is treated as current: there is
// nothing to migrate.
func (s *Store) formatVersion() (string, error) {
	data, err := os.ReadFile(s.formatPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading store format file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// writeFormatVersion records the store's format version. The file
// holds the bare version string with no trailing newline.
func (s *Store) writeFormatVersion(version string) error {
	if err := os.WriteFile(s.formatPath(), []byte(version), 0o644); err != nil {
		return fmt.Errorf("writing store format file: %w", err)
	}
	return nil
}

// A migration rewrites the on-disk layout from one format version to
// the next. apply must be idempotent: a crash between apply and the
// version stamp reruns it on the next open.
type migration struct {
	from  string
	to    string
	apply func(*Store) error
}

var migrations = []migration{
	{from: "1.2", to: "1.3", apply: (*Store).migrateTeamNamespace},
	{from: "1.3", to: "1.4", apply: (*Store).migrateObjectShards},
}

// migrate walks the store's format version forward through the
// migration table until no rule applies, then verifies the result is
// the current version. The store lock is held for the duration so two
// processes cannot interleave migration steps.
func (s *Store) migrate() error {
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()

	version, err := s.formatVersion()
	if err != nil {
		return err
	}
	for {
		advanced := false
		for _, m := range migrations {
			if m.from != version {
				continue
			}
			s.logger.Info("migrating package store format", "path", s.path, "from", m.from, "to", m.to)
			if err := m.apply(s); err != nil {
				return fmt.Errorf("migrating store format %s to %s: %w", m.from, m.to, err)
			}
			if err := s.writeFormatVersion(m.to); err != nil {
				return err
			}
			version = m.to
			advanced = true
			break
		}
		if !advanced {
			break
		}
	}
	if version != "" && version != FormatVersion {
		return &IncompatibleFormatError{Path: s.path, Version: version}
	}
	return nil
}

// migrateTeamNamespace moves pre-team package trees under the default
// team: pkgs/<user> becomes pkgs/default/<user>.
func (s *Store) migrateTeamNamespace() error {
	entries, err := os.ReadDir(s.packageRootDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("listing package root: %w", err)
	}
	teamDir := s.TeamPath(DefaultTeam)
	if err := os.MkdirAll(teamDir, 0o755); err != nil {
		return fmt.Errorf("creating default team directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == DefaultTeam {
			continue
		}
		from := filepath.Join(s.packageRootDir(), entry.Name())
		to := filepath.Join(teamDir, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("moving user directory under default team: %w", err)
		}
	}
	return nil
}

// migrateObjectShards converts a flat object directory to the sharded
// layout: objs/<64-hex> becomes objs/<2-hex>/<62-hex>. Entries that do
// not look like object files are left where they are.
func (s *Store) migrateObjectShards() error {
	if err := s.EnsureLayout(); err != nil {
		return err
	}
	entries, err := os.ReadDir(s.objectDir())
	if err != nil {
		return fmt.Errorf("listing object directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) != objectNameLength {
			continue
		}
		from := filepath.Join(s.objectDir(), name)
		if err := os.Rename(from, s.objectPathForName(name)); err != nil {
			return fmt.Errorf("moving object into shard directory: %w", err)
		}
	}
	return nil
}
