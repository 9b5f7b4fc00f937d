// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes and represents the BLAKE3 content digests
// that identify everything in a depot store: objects (file content
// fragments) and package instances (canonical manifest encodings).
package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed digest. Objects and package
// instances are both identified by digests; domain-separated keys keep
// the two namespaces from ever colliding.
type Digest [32]byte

// Size is the digest length in bytes.
const Size = 32

// HexLength is the length of a digest's hex string form. Object and
// instance filenames in the store are exactly this long.
const HexLength = Size * 2

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures the same input bytes produce different digests in
// different contexts.
type domainKey [32]byte

// Domain separation keys. These are fixed constants: changing them
// invalidates every digest in that domain and therefore every existing
// store. The byte values are the ASCII encoding of the domain name,
// zero-padded to 32 bytes.
var (
	objectDomainKey = domainKey{
		'd', 'e', 'p', 'o', 't', '.', 'o', 'b', 'j', 'e', 'c', 't',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	manifestDomainKey = domainKey{
		'd', 'e', 'p', 'o', 't', '.', 'm', 'a', 'n', 'i', 'f', 'e', 's', 't',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// Object computes the object-domain digest of data. This is the digest
// under which a content blob is stored and deduplicated.
func Object(data []byte) Digest {
	return keyedHash(objectDomainKey, data)
}

// Manifest computes the manifest-domain digest of a canonical manifest
// encoding. This is the instance hash under which a package snapshot
// is filed. It must only ever be applied to deterministic encodings:
// two encodings of the same logical manifest must be byte-identical
// for instance identity to hold.
func Manifest(data []byte) Digest {
	return keyedHash(manifestDomainKey, data)
}

// Hasher computes an object-domain digest incrementally. It implements
// io.Writer so file content can be hashed while it streams into the
// staging area, without buffering whole files in memory.
type Hasher struct {
	inner *blake3.Hasher
}

// NewObjectHasher returns a streaming hasher for the object domain.
func NewObjectHasher() *Hasher {
	return &Hasher{inner: newKeyedHasher(objectDomainKey)}
}

// Write absorbs more content into the digest. It never fails.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.inner.Write(p)
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() Digest {
	var d Digest
	copy(d[:], h.inner.Sum(nil))
	return d
}

// String returns the canonical lowercase hex form of the digest. This
// is the form used for filenames, tag contents, logs, and CLI output.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is the zero value. The zero digest
// never identifies real content; it marks an unset field.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText encodes the digest as lowercase hex, so digests embed in
// CBOR and JSON as plain text strings.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a digest from its hex form.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parse parses a 64-character hex string into a Digest.
func Parse(hexString string) (Digest, error) {
	var d Digest
	if len(hexString) != HexLength {
		return d, fmt.Errorf("digest %q is %d characters, want %d", hexString, len(hexString), HexLength)
	}
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return d, fmt.Errorf("parsing digest %q: %w", hexString, err)
	}
	copy(d[:], decoded)
	return d, nil
}

// keyedHash computes a BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) Digest {
	hasher := newKeyedHasher(key)
	hasher.Write(data)
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}

// newKeyedHasher builds a BLAKE3 hasher for the given domain key.
// NewKeyed only fails for a wrong key length, which the domainKey type
// makes impossible.
func newKeyedHasher(key domainKey) *blake3.Hasher {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}
