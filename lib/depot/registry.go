// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/bureau-foundation/depot/lib/digest"
	"github.com/bureau-foundation/depot/lib/manifest"
	"github.com/bureau-foundation/depot/lib/naming"
)

// ValidateCoordinates checks a package's naming coordinates. The empty
// team is allowed; it stands for [DefaultTeam].
func ValidateCoordinates(team, user, name string) error {
	if team != "" {
		if err := naming.Validate("team name", team); err != nil {
			return err
		}
	}
	if err := naming.Validate("user name", user); err != nil {
		return err
	}
	return naming.Validate("package name", name)
}

func normalizeTeam(team string) string {
	if team == "" {
		return DefaultTeam
	}
	return team
}

// loadPackageInstance reads and decodes one instance manifest. Any
// failure is a CorruptPackageError: the caller has already established
// that the package should exist.
func (s *Store) loadPackageInstance(team, user, name string, instance digest.Digest) (*Package, error) {
	team = normalizeTeam(team)
	path := filepath.Join(s.PackagePath(team, user, name), contentsDirName, instance.String())
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CorruptPackageError{Path: path, Err: err}
	}
	contents, err := manifest.Decode(data)
	if err != nil {
		return nil, &CorruptPackageError{Path: path, Err: err}
	}
	return &Package{store: s, team: team, user: user, name: name, hash: instance, contents: contents}, nil
}

// GetPackage loads the current instance of a package. A package that
// does not exist returns (nil, nil): absence is an ordinary outcome,
// not an error. A package whose directory exists but cannot be loaded
// returns a *CorruptPackageError so callers can tell damage apart from
// absence.
//
// The current instance is the one named by the "latest" tag. When that
// tag is missing, the lexically greatest instance digest stands in, so
// stores whose tags were hand-edited away stay readable.
func (s *Store) GetPackage(team, user, name string) (*Package, error) {
	if err := ValidateCoordinates(team, user, name); err != nil {
		return nil, err
	}
	team = normalizeTeam(team)
	path := s.PackagePath(team, user, name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("checking package directory: %w", err)
	}
	probe := &Package{store: s, team: team, user: user, name: name}
	instance, err := probe.Tag(TagLatest)
	if err != nil {
		var corrupt *CorruptPackageError
		if errors.As(err, &corrupt) {
			return nil, corrupt
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		instances, err := probe.Instances()
		if err != nil {
			return nil, err
		}
		if len(instances) == 0 {
			return nil, &CorruptPackageError{Path: path, Err: errors.New("package directory holds no instances")}
		}
		instance = instances[len(instances)-1]
	}
	return s.loadPackageInstance(team, user, name, instance)
}

// InstallPackage records a new instance of a package from the given
// manifest and points the "latest" tag at it. The instance file is
// staged and renamed into place, so a crash mid-install never leaves a
// partial manifest where a complete one belongs. Installing the same
// manifest twice is a no-op beyond refreshing the tag: the instance is
// named by its content digest.
func (s *Store) InstallPackage(team, user, name string, contents *manifest.Node) (*Package, error) {
	if err := ValidateCoordinates(team, user, name); err != nil {
		return nil, err
	}
	if contents == nil {
		return nil, fmt.Errorf("package contents are required")
	}
	encoded, err := manifest.Encode(contents)
	if err != nil {
		return nil, err
	}
	instance := digest.Manifest(encoded)
	team = normalizeTeam(team)
	if err := s.EnsureLayout(); err != nil {
		return nil, err
	}

	// Stores written before the contents/tags split recorded a package
	// as a single flat file at the package path. Clear such an
	// artifact; a directory here is the modern layout and stays.
	path := s.PackagePath(team, user, name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		info, statErr := os.Stat(path)
		if statErr != nil || !info.IsDir() {
			return nil, fmt.Errorf("clearing legacy package artifact: %w", err)
		}
	}

	p := &Package{store: s, team: team, user: user, name: name, hash: instance, contents: contents}
	if err := os.MkdirAll(p.contentsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating package directory: %w", err)
	}
	staged := s.TemporaryObjectPath(uuid.NewString())
	success := false
	defer func() {
		if !success {
			os.Remove(staged)
		}
	}()
	if err := os.WriteFile(staged, encoded, 0o644); err != nil {
		return nil, fmt.Errorf("staging package instance: %w", err)
	}
	if err := os.Rename(staged, filepath.Join(p.contentsDir(), instance.String())); err != nil {
		return nil, fmt.Errorf("publishing package instance: %w", err)
	}
	success = true
	if err := p.SetTag(TagLatest, instance); err != nil {
		return nil, err
	}
	s.logger.Debug("installed package instance", "package", p.FullName(), "instance", instance)
	return p, nil
}

// CreatePackage registers a package with empty contents. With dryRun
// the store is not touched; the returned handle describes the instance
// that would have been created.
func (s *Store) CreatePackage(team, user, name string, dryRun bool) (*Package, error) {
	contents := manifest.NewRoot()
	if !dryRun {
		return s.InstallPackage(team, user, name, contents)
	}
	if err := ValidateCoordinates(team, user, name); err != nil {
		return nil, err
	}
	instance, err := manifest.InstanceDigest(contents)
	if err != nil {
		return nil, err
	}
	return &Package{store: s, team: normalizeTeam(team), user: user, name: name, hash: instance, contents: contents}, nil
}

// RemovePackage deletes a package: every instance, every tag, and,
// through a prune seeded with the union of the instances' object
// references, every object no surviving package still uses. It returns
// the set of object digests the prune swept away.
//
// An instance that fails to parse aborts the removal before anything
// is deleted: its object references cannot be known, so pruning around
// it is not safe. Removing a package that does not exist is a no-op
// with an empty result.
func (s *Store) RemovePackage(team, user, name string) (map[digest.Digest]struct{}, error) {
	if err := ValidateCoordinates(team, user, name); err != nil {
		return nil, err
	}
	team = normalizeTeam(team)
	path := s.PackagePath(team, user, name)
	candidates := make(map[digest.Digest]struct{})
	if _, err := os.Stat(path); err == nil {
		probe := &Package{store: s, team: team, user: user, name: name}
		instances, err := probe.Instances()
		if err != nil {
			return nil, err
		}
		for _, instance := range instances {
			p, err := s.loadPackageInstance(team, user, name, instance)
			if err != nil {
				return nil, err
			}
			maps.Copy(candidates, p.ObjectDigests())
		}
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("removing package directory: %w", err)
		}
		s.logger.Info("removed package", "package", probe.FullName(), "instances", len(instances))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking package directory: %w", err)
	}
	return s.Prune(candidates)
}

// Instances calls fn for every package instance in the store, loading
// each manifest as it goes. The walk is in lexical order of team,
// user, package, and instance digest. An instance that fails to load
// aborts the walk with a *CorruptPackageError; an error from fn stops
// it the same way.
func (s *Store) Instances(fn func(*Package) error) error {
	teams, err := subDirNames(s.packageRootDir())
	if err != nil {
		return fmt.Errorf("listing teams: %w", err)
	}
	for _, team := range teams {
		users, err := subDirNames(s.TeamPath(team))
		if err != nil {
			return fmt.Errorf("listing users of team %s: %w", team, err)
		}
		for _, user := range users {
			names, err := subDirNames(s.UserPath(team, user))
			if err != nil {
				return fmt.Errorf("listing packages of %s/%s: %w", team, user, err)
			}
			for _, name := range names {
				probe := &Package{store: s, team: team, user: user, name: name}
				instances, err := probe.Instances()
				if err != nil {
					return err
				}
				for _, instance := range instances {
					p, err := s.loadPackageInstance(team, user, name, instance)
					if err != nil {
						return err
					}
					if err := fn(p); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// ListEntry is one row of a package listing: a package, one of its
// tags (empty for an untagged instance), and the instance digest the
// row refers to.
type ListEntry struct {
	Package string `json:"package"`
	Tag     string `json:"tag,omitempty"`
	Hash    string `json:"hash"`
}

// ListPackages renders the store catalog as display rows, one per
// (instance, tag) pair; an untagged instance gets a single row with an
// empty tag. Listing never loads manifests, so packages with corrupt
// instances still appear. A tag pointing at an instance that no longer
// exists also produces its row: the dangling reference is the
// operator's cue to retag or repair.
func (s *Store) ListPackages() ([]ListEntry, error) {
	var rows []ListEntry
	teams, err := subDirNames(s.packageRootDir())
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	for _, team := range teams {
		users, err := subDirNames(s.TeamPath(team))
		if err != nil {
			return nil, fmt.Errorf("listing users of team %s: %w", team, err)
		}
		for _, user := range users {
			names, err := subDirNames(s.UserPath(team, user))
			if err != nil {
				return nil, fmt.Errorf("listing packages of %s/%s: %w", team, user, err)
			}
			for _, name := range names {
				probe := &Package{store: s, team: team, user: user, name: name}
				packageRows, err := s.listPackageRows(probe)
				if err != nil {
					return nil, err
				}
				rows = append(rows, packageRows...)
			}
		}
	}
	return rows, nil
}

func (s *Store) listPackageRows(p *Package) ([]ListEntry, error) {
	full := p.FullName()
	instances, err := p.Instances()
	if err != nil {
		return nil, err
	}
	tags, err := p.Tags()
	if err != nil {
		return nil, err
	}
	tagsByInstance := make(map[digest.Digest][]string)
	for tag, instance := range tags {
		tagsByInstance[instance] = append(tagsByInstance[instance], tag)
	}

	var rows []ListEntry
	seen := make(map[digest.Digest]bool, len(instances))
	for _, instance := range instances {
		seen[instance] = true
		names := tagsByInstance[instance]
		if len(names) == 0 {
			rows = append(rows, ListEntry{Package: full, Hash: instance.String()})
			continue
		}
		slices.Sort(names)
		for _, tag := range names {
			rows = append(rows, ListEntry{Package: full, Tag: tag, Hash: instance.String()})
		}
	}

	var dangling []digest.Digest
	for instance := range tagsByInstance {
		if !seen[instance] {
			dangling = append(dangling, instance)
		}
	}
	slices.SortFunc(dangling, func(a, b digest.Digest) int {
		return strings.Compare(a.String(), b.String())
	})
	for _, instance := range dangling {
		names := tagsByInstance[instance]
		slices.Sort(names)
		for _, tag := range names {
			rows = append(rows, ListEntry{Package: full, Tag: tag, Hash: instance.String()})
		}
	}
	return rows, nil
}

// subDirNames lists the subdirectories of path in lexical order. A
// path that does not exist lists as empty.
func subDirNames(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
