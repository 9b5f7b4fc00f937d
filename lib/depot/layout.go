// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/depot/lib/digest"
)

const (
	// PackageDirName is the required basename of every store root.
	// Refusing other basenames keeps a mistyped --store flag from
	// spraying objs/ and pkgs/ trees into an unrelated directory.
	PackageDirName = "depot_packages"

	// DefaultTeam is the team namespace for packages that were
	// published without one.
	DefaultTeam = "default"

	// FormatVersion is the on-disk format written by this build.
	FormatVersion = "1.4"
)

const (
	objectDirName   = "objs"
	tmpDirName      = "tmp"
	packageDirName  = "pkgs"
	cacheDirName    = "cache"
	contentsDirName = "contents"
	tagsDirName     = "tags"
	formatFileName  = ".format"
	lockFileName    = ".lock"
)

// objectShardCount is the number of fan-out directories under objs/.
// Objects are placed by the first byte of their hex digest, so this is
// fixed by the encoding.
const objectShardCount = 256

func (s *Store) objectDir() string {
	return filepath.Join(s.path, objectDirName)
}

func (s *Store) tmpDir() string {
	return filepath.Join(s.path, tmpDirName)
}

func (s *Store) packageRootDir() string {
	return filepath.Join(s.path, packageDirName)
}

func (s *Store) cacheDir() string {
	return filepath.Join(s.path, cacheDirName)
}

func (s *Store) formatPath() string {
	return filepath.Join(s.path, formatFileName)
}

func (s *Store) lockPath() string {
	return filepath.Join(s.path, lockFileName)
}

// ObjectPath returns the path at which an object with the given digest
// is (or would be) stored. Purely computational: the object need not
// exist.
func (s *Store) ObjectPath(d digest.Digest) string {
	return s.objectPathForName(d.String())
}

// objectPathForName places a hex object name into its shard directory.
// Split out from ObjectPath so format migration can relocate legacy
// object files without reparsing their names.
func (s *Store) objectPathForName(name string) string {
	return filepath.Join(s.objectDir(), name[:2], name[2:])
}

// TemporaryObjectPath returns a staging path under the store's tmp
// directory. Staged files live on the same filesystem as objs/, so a
// finished object can be published with one atomic rename.
func (s *Store) TemporaryObjectPath(name string) string {
	return filepath.Join(s.tmpDir(), name)
}

// CachePath returns the path for a named entry in the download cache.
func (s *Store) CachePath(name string) string {
	return filepath.Join(s.cacheDir(), name)
}

// TeamPath returns the directory holding a team's packages. The empty
// team maps to [DefaultTeam].
func (s *Store) TeamPath(team string) string {
	if team == "" {
		team = DefaultTeam
	}
	return filepath.Join(s.packageRootDir(), team)
}

// UserPath returns the directory holding one user's packages within a
// team.
func (s *Store) UserPath(team, user string) string {
	return filepath.Join(s.TeamPath(team), user)
}

// PackagePath returns the directory of one package. The directory
// contains the package's contents/ and tags/ subdirectories.
func (s *Store) PackagePath(team, user, name string) string {
	return filepath.Join(s.UserPath(team, user), name)
}

// EnsureLayout creates the store's directory skeleton: the root, the
// objs/ shard directories, tmp/, pkgs/, and cache/. It also stamps the
// store with the current format version if no version is recorded yet.
// Idempotent; safe to call before every write.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{s.path, s.objectDir(), s.tmpDir(), s.packageRootDir(), s.cacheDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}
	for i := 0; i < objectShardCount; i++ {
		shard := filepath.Join(s.objectDir(), fmt.Sprintf("%02x", i))
		if err := os.MkdirAll(shard, 0o755); err != nil {
			return fmt.Errorf("creating object shard directory: %w", err)
		}
	}
	if _, err := os.Stat(s.formatPath()); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeFormatVersion(FormatVersion); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("checking store format file: %w", err)
	}
	return nil
}
