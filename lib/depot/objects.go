// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bureau-foundation/depot/lib/digest"
)

// objectNameLength is the filename length of a stored object: the full
// hex digest, two characters of which form the shard directory.
const objectNameLength = digest.HexLength

// HasObject reports whether the object with the given digest is
// present in the store.
func (s *Store) HasObject(d digest.Digest) bool {
	_, err := os.Stat(s.ObjectPath(d))
	return err == nil
}

// PutObject writes a blob into the store and returns its digest. If an
// object with the same digest already exists the write is skipped:
// identical digest means identical content.
func (s *Store) PutObject(data []byte) (digest.Digest, error) {
	d := digest.Object(data)
	if s.HasObject(d) {
		return d, nil
	}
	if err := s.EnsureLayout(); err != nil {
		return digest.Digest{}, err
	}
	staged := s.TemporaryObjectPath(uuid.NewString())
	success := false
	defer func() {
		if !success {
			os.Remove(staged)
		}
	}()
	if err := os.WriteFile(staged, data, 0o644); err != nil {
		return digest.Digest{}, fmt.Errorf("staging object: %w", err)
	}
	if err := s.publishStaged(staged, d); err != nil {
		return digest.Digest{}, err
	}
	success = true
	return d, nil
}

// IngestFile streams a file from outside the store into it, returning
// the digest of its content. The file is hashed while it is copied
// into the staging area, so large inputs are never held in memory.
func (s *Store) IngestFile(path string) (digest.Digest, error) {
	source, err := os.Open(path)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("opening source file: %w", err)
	}
	defer source.Close()
	if err := s.EnsureLayout(); err != nil {
		return digest.Digest{}, err
	}
	staged := s.TemporaryObjectPath(uuid.NewString())
	tmp, err := os.OpenFile(staged, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("creating staging file: %w", err)
	}
	success := false
	defer func() {
		if !success {
			os.Remove(staged)
		}
	}()
	hasher := digest.NewObjectHasher()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), source); err != nil {
		tmp.Close()
		return digest.Digest{}, fmt.Errorf("copying %s into staging: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return digest.Digest{}, fmt.Errorf("closing staging file: %w", err)
	}
	d := hasher.Sum()
	if err := s.publishStaged(staged, d); err != nil {
		return digest.Digest{}, err
	}
	success = true
	return d, nil
}

// ReadObject returns the full content of an object. Callers can detect
// a missing object with errors.Is(err, fs.ErrNotExist).
func (s *Store) ReadObject(d digest.Digest) ([]byte, error) {
	data, err := os.ReadFile(s.ObjectPath(d))
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", d, err)
	}
	return data, nil
}

// ObjectReader opens an object for streaming reads. The caller owns
// the returned handle.
func (s *Store) ObjectReader(d digest.Digest) (io.ReadCloser, error) {
	file, err := os.Open(s.ObjectPath(d))
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", d, err)
	}
	return file, nil
}

// publishStaged moves a fully written staging file to an object's
// final path. If the object already exists the staged copy is
// discarded instead: same digest, same content.
func (s *Store) publishStaged(stagedPath string, d digest.Digest) error {
	finalPath := s.ObjectPath(d)
	if _, err := os.Stat(finalPath); err == nil {
		os.Remove(stagedPath)
		return nil
	}
	if err := os.Rename(stagedPath, finalPath); err != nil {
		return fmt.Errorf("publishing object %s: %w", d, err)
	}
	return nil
}

// ListObjects enumerates every object in the store. Files whose names
// do not form a valid digest are skipped; they cannot be objects.
func (s *Store) ListObjects() (map[digest.Digest]struct{}, error) {
	objects := make(map[digest.Digest]struct{})
	shards, err := os.ReadDir(s.objectDir())
	if errors.Is(err, fs.ErrNotExist) {
		return objects, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing object directory: %w", err)
	}
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.objectDir(), shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing object shard %s: %w", shard.Name(), err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			d, err := digest.Parse(shard.Name() + entry.Name())
			if err != nil {
				s.logger.Debug("skipping non-object file in object directory", "shard", shard.Name(), "name", entry.Name())
				continue
			}
			objects[d] = struct{}{}
		}
	}
	return objects, nil
}

// hashFile recomputes the object digest of a file's content.
func hashFile(path string) (digest.Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return digest.Digest{}, err
	}
	defer file.Close()
	hasher := digest.NewObjectHasher()
	if _, err := io.Copy(hasher, file); err != nil {
		return digest.Digest{}, err
	}
	return hasher.Sum(), nil
}
