// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package naming validates the identifier strings that form depot
// package coordinates: team, user, and package names, tag names, and
// path elements inside a package's contents tree.
//
// Every identifier becomes a single filesystem path segment under the
// store root, so the rules are deliberately strict: a valid name can
// never escape its directory, collide with the store's own dot-files,
// or require escaping in a shell or URL.
package naming

import "fmt"

// MaxNameLength is the maximum byte length of an identifier. Names are
// path segments; this bound keeps full package paths well inside
// filesystem limits even for the deepest team/user/package/tags layout.
const MaxNameLength = 64

// allowedChars is the set of characters permitted after the first byte
// of an identifier (ASCII letters, digits, and underscore).
var allowedChars [256]bool

// allowedFirstChars is the set of characters permitted as the first
// byte of an identifier (ASCII letters only).
var allowedFirstChars [256]bool

func init() {
	for c := byte('a'); c <= 'z'; c++ {
		allowedChars[c] = true
		allowedFirstChars[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		allowedChars[c] = true
		allowedFirstChars[c] = true
	}
	for c := byte('0'); c <= '9'; c++ {
		allowedChars[c] = true
	}
	allowedChars['_'] = true
}

// IsValid reports whether name is a valid depot identifier: 1 to
// MaxNameLength bytes, starting with an ASCII letter, followed by
// ASCII letters, digits, or underscores.
func IsValid(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	if !allowedFirstChars[name[0]] {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !allowedChars[name[i]] {
			return false
		}
	}
	return true
}

// Validate returns nil when value is a valid identifier, or an
// *InvalidNameError naming both the identifier kind (e.g. "package
// name") and the offending value. All store mutations call this for
// every supplied identity component before touching the filesystem.
func Validate(kind, value string) error {
	if IsValid(value) {
		return nil
	}
	return &InvalidNameError{Kind: kind, Value: value}
}

// InvalidNameError reports an identifier that failed validation. Kind
// describes what the identifier was supposed to be ("team name",
// "user name", "package name", "tag name", "path element").
type InvalidNameError struct {
	Kind  string
	Value string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Value)
}
