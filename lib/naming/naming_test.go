// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package naming

import (
	"errors"
	"strings"
	"testing"
)

func TestIsValid(t *testing.T) {
	valid := []string{
		"a",
		"alice",
		"Alice",
		"weather",
		"weather_2024",
		"x9",
		"CamelCase",
		strings.Repeat("a", MaxNameLength),
	}
	for _, name := range valid {
		if !IsValid(name) {
			t.Errorf("IsValid(%q) = false, want true", name)
		}
	}

	invalid := []string{
		"",
		"_hidden",
		"9lives",
		"we@ther",
		"has-dash",
		"has.dot",
		"has/slash",
		"has space",
		"..",
		".format",
		"ünïcode",
		strings.Repeat("a", MaxNameLength+1),
	}
	for _, name := range invalid {
		if IsValid(name) {
			t.Errorf("IsValid(%q) = true, want false", name)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("package name", "weather"); err != nil {
		t.Errorf("Validate of valid name returned %v", err)
	}

	err := Validate("team name", "we@ther")
	if err == nil {
		t.Fatal("Validate of invalid name returned nil")
	}

	var nameErr *InvalidNameError
	if !errors.As(err, &nameErr) {
		t.Fatalf("error is %T, want *InvalidNameError", err)
	}
	if nameErr.Kind != "team name" {
		t.Errorf("Kind = %q, want %q", nameErr.Kind, "team name")
	}
	if nameErr.Value != "we@ther" {
		t.Errorf("Value = %q, want %q", nameErr.Value, "we@ther")
	}

	// The message must surface both the kind and the offending value.
	message := err.Error()
	if !strings.Contains(message, "team name") || !strings.Contains(message, "we@ther") {
		t.Errorf("error message %q does not name the kind and value", message)
	}
}
