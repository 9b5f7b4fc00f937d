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

// ObjectFault describes one problem found by VerifyObjects.
type ObjectFault struct {
	// Path is the offending file or directory.
	Path string `json:"path"`
	// Reason says what is wrong with it.
	Reason string `json:"reason"`
}

// VerifyObjects rehashes every object in the store and reports files
// whose content no longer matches the digest they are stored under,
// along with stray entries that should not be in the object tree at
// all. A healthy store returns an empty slice. The error return is for
// failures of the verification pass itself, not for faults it found.
func (s *Store) VerifyObjects() ([]ObjectFault, error) {
	var faults []ObjectFault
	shards, err := os.ReadDir(s.objectDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing object directory: %w", err)
	}
	for _, shard := range shards {
		shardPath := filepath.Join(s.objectDir(), shard.Name())
		if !shard.IsDir() {
			faults = append(faults, ObjectFault{
				Path:   shardPath,
				Reason: "file outside shard directories",
			})
			continue
		}
		entries, err := os.ReadDir(shardPath)
		if err != nil {
			return nil, fmt.Errorf("listing object shard %s: %w", shard.Name(), err)
		}
		for _, entry := range entries {
			path := filepath.Join(shardPath, entry.Name())
			if entry.IsDir() {
				faults = append(faults, ObjectFault{
					Path:   path,
					Reason: "unexpected directory inside shard",
				})
				continue
			}
			want, err := digest.Parse(shard.Name() + entry.Name())
			if err != nil {
				faults = append(faults, ObjectFault{
					Path:   path,
					Reason: "file name is not an object digest",
				})
				continue
			}
			got, err := hashFile(path)
			if err != nil {
				faults = append(faults, ObjectFault{
					Path:   path,
					Reason: fmt.Sprintf("unreadable: %v", err),
				})
				continue
			}
			if got != want {
				faults = append(faults, ObjectFault{
					Path:   path,
					Reason: fmt.Sprintf("content digest is %s", got),
				})
			}
		}
	}
	return faults, nil
}
