// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"fmt"

	"github.com/bureau-foundation/depot/lib/digest"
)

// IncompatibleFormatError reports a store whose on-disk format version
// is neither current nor migratable by this build. The store's content
// is left untouched; a newer build of the tool may understand it.
type IncompatibleFormatError struct {
	// Path is the store root.
	Path string
	// Version is the format version string read from the store.
	Version string
}

func (e *IncompatibleFormatError) Error() string {
	return fmt.Sprintf("package store at %s has format version %q, want %q: upgrade this tool or use a different store", e.Path, e.Version, FormatVersion)
}

// CorruptPackageError reports a package that exists on disk but cannot
// be loaded: its tag or instance files are unreadable, truncated, or
// fail manifest validation. This is distinct from the package not
// existing at all, which is not an error.
type CorruptPackageError struct {
	// Path is the file that failed to load.
	Path string
	// Err is the underlying failure.
	Err error
}

func (e *CorruptPackageError) Error() string {
	return fmt.Sprintf("corrupt package data at %s: %v", e.Path, e.Err)
}

func (e *CorruptPackageError) Unwrap() error {
	return e.Err
}

// ObjectDigestError reports an object whose content does not match the
// digest it is stored or delivered under.
type ObjectDigestError struct {
	// Want is the digest the content was expected to have.
	Want digest.Digest
	// Got is the digest recomputed from the content.
	Got digest.Digest
}

func (e *ObjectDigestError) Error() string {
	return fmt.Sprintf("object content has digest %s, want %s", e.Got, e.Want)
}
