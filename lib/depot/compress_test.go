// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"strings"
	"testing"
)

func TestCompressionNameRoundTrip(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompression(compression.String())
		if err != nil {
			t.Errorf("parsing %q: %v", compression.String(), err)
			continue
		}
		if parsed != compression {
			t.Errorf("ParseCompression(%q) = %v, want %v", compression.String(), parsed, compression)
		}
	}
}

func TestParseCompressionUnknown(t *testing.T) {
	if _, err := ParseCompression("brotli"); err == nil {
		t.Fatal("parsing an unknown codec name succeeded")
	}
}

func TestDecompressorUnknownTag(t *testing.T) {
	_, _, err := decompressor(strings.NewReader(""), Compression(9))
	if err == nil {
		t.Fatal("building a decompressor for an unknown tag succeeded")
	}
}
