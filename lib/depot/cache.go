// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/bureau-foundation/depot/lib/digest"
)

// InstallCachedObject decompresses a named entry from the store's
// cache directory, verifies that its content matches the expected
// digest, and publishes it as an object. The content is hashed while
// it streams through the decoder, so compressed payloads of any size
// ingest in constant memory.
//
// The cache entry is deleted on success. On a digest mismatch it is
// kept so the bad payload can be inspected, and the error is an
// [ObjectDigestError].
func (s *Store) InstallCachedObject(name string, want digest.Digest, compression Compression) error {
	if err := s.EnsureLayout(); err != nil {
		return err
	}
	cachePath := s.CachePath(name)
	cached, err := os.Open(cachePath)
	if err != nil {
		return fmt.Errorf("opening cached object: %w", err)
	}
	defer cached.Close()
	content, closeDecoder, err := decompressor(cached, compression)
	if err != nil {
		return err
	}
	defer closeDecoder()

	staged := s.TemporaryObjectPath(uuid.NewString())
	tmp, err := os.OpenFile(staged, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating staging file: %w", err)
	}
	success := false
	defer func() {
		if !success {
			os.Remove(staged)
		}
	}()
	hasher := digest.NewObjectHasher()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), content); err != nil {
		tmp.Close()
		return fmt.Errorf("decompressing cached object %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing staging file: %w", err)
	}
	if got := hasher.Sum(); got != want {
		return &ObjectDigestError{Want: want, Got: got}
	}
	if err := s.publishStaged(staged, want); err != nil {
		return err
	}
	success = true
	if err := os.Remove(cachePath); err != nil {
		s.logger.Debug("removing installed cache entry", "name", name, "error", err)
	}
	return nil
}
