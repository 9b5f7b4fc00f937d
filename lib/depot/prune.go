// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"github.com/bureau-foundation/depot/lib/digest"
)

// LiveObjects returns the union of object digests referenced by every
// package instance in the store: the set a prune will never touch.
func (s *Store) LiveObjects() (map[digest.Digest]struct{}, error) {
	live := make(map[digest.Digest]struct{})
	err := s.Instances(func(p *Package) error {
		maps.Copy(live, p.ObjectDigests())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return live, nil
}

// Prune deletes unreferenced objects, bounded by a candidate set: an
// object is removed only if it appears in candidates and no package
// instance references it. The returned set holds every candidate that
// survived the mark phase, including digests whose object file was
// already gone, so callers can read it as "no longer stored".
//
// The store's advisory lock is held across the mark and sweep phases;
// an install racing a prune in another cooperating process cannot see
// its freshly referenced objects swept.
func (s *Store) Prune(candidates map[digest.Digest]struct{}) (map[digest.Digest]struct{}, error) {
	release, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer release()

	remove := make(map[digest.Digest]struct{}, len(candidates))
	maps.Copy(remove, candidates)
	err = s.Instances(func(p *Package) error {
		for d := range p.ObjectDigests() {
			delete(remove, d)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning live instances: %w", err)
	}
	for d := range remove {
		if err := os.Remove(s.ObjectPath(d)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("removing object %s: %w", d, err)
		}
	}
	if len(remove) > 0 {
		s.logger.Info("pruned unreferenced objects", "candidates", len(candidates), "removed", len(remove))
	}
	return remove, nil
}

// PruneAll sweeps the whole store: every stored object is a candidate.
func (s *Store) PruneAll() (map[digest.Digest]struct{}, error) {
	objects, err := s.ListObjects()
	if err != nil {
		return nil, err
	}
	return s.Prune(objects)
}
