// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"strings"
	"testing"
)

func TestObjectDeterministic(t *testing.T) {
	data := []byte("the same bytes, twice")
	if Object(data) != Object(data) {
		t.Error("Object digest of identical input differs between calls")
	}
}

func TestDomainSeparation(t *testing.T) {
	data := []byte("identical input")
	if Object(data) == Manifest(data) {
		t.Error("object and manifest domains produced the same digest for identical input")
	}
}

func TestObjectDiffersByContent(t *testing.T) {
	if Object([]byte("a")) == Object([]byte("b")) {
		t.Error("different inputs produced the same digest")
	}
}

func TestHasherMatchesObject(t *testing.T) {
	data := []byte("streamed in several writes")

	hasher := NewObjectHasher()
	for _, chunk := range [][]byte{data[:5], data[5:11], data[11:]} {
		if _, err := hasher.Write(chunk); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if got, want := hasher.Sum(), Object(data); got != want {
		t.Errorf("streamed digest %s != one-shot digest %s", got, want)
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	d := Object([]byte("round trip"))

	s := d.String()
	if len(s) != HexLength {
		t.Fatalf("String() length = %d, want %d", len(s), HexLength)
	}
	if s != strings.ToLower(s) {
		t.Errorf("String() is not lowercase: %q", s)
	}

	parsed, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	if parsed != d {
		t.Errorf("Parse(String()) = %s, want %s", parsed, d)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"abc",
		strings.Repeat("a", HexLength-1),
		strings.Repeat("a", HexLength+1),
		strings.Repeat("g", HexLength), // not hex
	}
	for _, input := range cases {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	d := Manifest([]byte("text marshaling"))

	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var decoded Digest
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if decoded != d {
		t.Errorf("text round trip: got %s, want %s", decoded, d)
	}
}

func TestIsZero(t *testing.T) {
	var zero Digest
	if !zero.IsZero() {
		t.Error("zero digest reported non-zero")
	}
	if Object([]byte("x")).IsZero() {
		t.Error("real digest reported zero")
	}
}

func BenchmarkObject(b *testing.B) {
	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = byte(i)
	}
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Object(data)
	}
}
