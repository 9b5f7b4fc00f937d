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

	"github.com/bureau-foundation/depot/lib/digest"
	"github.com/bureau-foundation/depot/lib/manifest"
	"github.com/bureau-foundation/depot/lib/naming"
)

// TagLatest is the conventional tag that tracks a package's most
// recently installed instance. Install operations keep it current.
const TagLatest = "latest"

// Package is a handle on one loaded package instance. The identifying
// fields and the manifest snapshot are fixed at load time; tag methods
// read and write the package's live tag directory.
type Package struct {
	store    *Store
	team     string
	user     string
	name     string
	hash     digest.Digest
	contents *manifest.Node
}

// Team returns the package's team namespace. Packages created without
// a team report [DefaultTeam].
func (p *Package) Team() string { return p.team }

// User returns the publishing user.
func (p *Package) User() string { return p.user }

// Name returns the package name.
func (p *Package) Name() string { return p.name }

// Hash returns the digest of this instance's canonical manifest
// encoding. It identifies the loaded snapshot, not the package.
func (p *Package) Hash() digest.Digest { return p.hash }

// Contents returns the instance's manifest tree.
func (p *Package) Contents() *manifest.Node { return p.contents }

// FullName renders the package's display name: "user/name", prefixed
// with "team:" when the team is not the default.
func (p *Package) FullName() string {
	if p.team == DefaultTeam {
		return p.user + "/" + p.name
	}
	return p.team + ":" + p.user + "/" + p.name
}

// Path returns the package's directory within the store.
func (p *Package) Path() string {
	return p.store.PackagePath(p.team, p.user, p.name)
}

func (p *Package) contentsDir() string {
	return filepath.Join(p.Path(), contentsDirName)
}

func (p *Package) tagsDir() string {
	return filepath.Join(p.Path(), tagsDirName)
}

// ObjectDigests returns the set of objects this instance references.
func (p *Package) ObjectDigests() map[digest.Digest]struct{} {
	return manifest.ObjectDigests(p.contents)
}

// Instances lists the digests of all instances recorded for this
// package, in lexical order. Stray files in the contents directory
// that do not name a digest are skipped.
func (p *Package) Instances() ([]digest.Digest, error) {
	entries, err := os.ReadDir(p.contentsDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing instances of %s: %w", p.FullName(), err)
	}
	var instances []digest.Digest
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		d, err := digest.Parse(entry.Name())
		if err != nil {
			p.store.logger.Debug("skipping non-instance file", "package", p.FullName(), "name", entry.Name())
			continue
		}
		instances = append(instances, d)
	}
	return instances, nil
}

// Tag resolves one tag to the instance digest it points at. A missing
// tag is reported with an error satisfying errors.Is(err,
// fs.ErrNotExist); a tag file with garbage content is a
// [CorruptPackageError].
func (p *Package) Tag(name string) (digest.Digest, error) {
	if err := naming.Validate("tag name", name); err != nil {
		return digest.Digest{}, err
	}
	tagPath := filepath.Join(p.tagsDir(), name)
	data, err := os.ReadFile(tagPath)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("reading tag %q of %s: %w", name, p.FullName(), err)
	}
	d, err := digest.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return digest.Digest{}, &CorruptPackageError{Path: tagPath, Err: err}
	}
	return d, nil
}

// Tags returns every tag of the package and the instance digest each
// points at. Tag files with unparseable content are skipped; use
// [Package.Tag] for a strict read of one tag.
func (p *Package) Tags() (map[string]digest.Digest, error) {
	entries, err := os.ReadDir(p.tagsDir())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]digest.Digest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing tags of %s: %w", p.FullName(), err)
	}
	tags := make(map[string]digest.Digest, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		d, err := p.Tag(entry.Name())
		if err != nil {
			p.store.logger.Debug("skipping unreadable tag", "package", p.FullName(), "tag", entry.Name(), "error", err)
			continue
		}
		tags[entry.Name()] = d
	}
	return tags, nil
}

// SetTag points a tag at an instance, creating or replacing it. The
// tag file is written to a sibling temporary file and renamed into
// place, so readers never observe a partial write. The instance is not
// required to exist; tags may be set ahead of the data they name.
func (p *Package) SetTag(name string, instance digest.Digest) error {
	if err := naming.Validate("tag name", name); err != nil {
		return err
	}
	if err := os.MkdirAll(p.tagsDir(), 0o755); err != nil {
		return fmt.Errorf("creating tag directory: %w", err)
	}
	tmp, err := os.CreateTemp(p.tagsDir(), ".tag-*")
	if err != nil {
		return fmt.Errorf("staging tag %q: %w", name, err)
	}
	success := false
	defer func() {
		if !success {
			os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.WriteString(instance.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing tag %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing tag %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(p.tagsDir(), name)); err != nil {
		return fmt.Errorf("publishing tag %q: %w", name, err)
	}
	success = true
	return nil
}

// DeleteTag removes a tag. Deleting a tag that does not exist is an
// error satisfying errors.Is(err, fs.ErrNotExist).
func (p *Package) DeleteTag(name string) error {
	if err := naming.Validate("tag name", name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(p.tagsDir(), name)); err != nil {
		return fmt.Errorf("deleting tag %q of %s: %w", name, p.FullName(), err)
	}
	return nil
}
