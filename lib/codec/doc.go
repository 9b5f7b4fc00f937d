// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides depot's standard CBOR encoding configuration.
//
// Depot uses two serialization formats with a clear boundary:
//
//   - CBOR for on-disk records: package manifest instances under each
//     package's contents directory.
//   - JSON for the CLI's --json output.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every depot package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes. Instance identity depends on this: a package instance is
// identified by the digest of its manifest's encoding, and a
// non-deterministic encoder would give one manifest many identities.
//
// For buffer-oriented operations (manifest files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR (manifest
//     nodes and anything else that lives in the store).
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor` tags
//     are absent, so a single `json` tag controls field naming and
//     omitempty for both formats. Used for types that appear in CLI
//     --json output.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract — doubling up is noise that obscures
// whether a type participates in JSON serialization.
package codec
