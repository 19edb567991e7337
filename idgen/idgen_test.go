package idgen_test

import (
	"strings"
	"testing"

	"github.com/hazyhaar/sillage/idgen"
)

func TestUUIDv7Unique(t *testing.T) {
	gen := idgen.UUIDv7()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestNanoIDLength(t *testing.T) {
	gen := idgen.NanoID(8)
	id := gen()
	if len(id) != 8 {
		t.Fatalf("length = %d, want 8", len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", c) {
			t.Fatalf("unexpected character %q in %s", c, id)
		}
	}
}

func TestPrefixed(t *testing.T) {
	gen := idgen.Prefixed("snap_", idgen.NanoID(6))
	id := gen()
	if !strings.HasPrefix(id, "snap_") {
		t.Fatalf("missing prefix: %s", id)
	}
	if len(id) != len("snap_")+6 {
		t.Fatalf("length = %d", len(id))
	}
}

func TestTimestamped(t *testing.T) {
	gen := idgen.Timestamped(idgen.NanoID(6))
	id := gen()
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("want timestamp_suffix, got %s", id)
	}
	if len(parts[0]) != len("20060102T150405Z") {
		t.Fatalf("timestamp part = %q", parts[0])
	}
	if gen() == id {
		t.Fatal("two calls produced the same ID")
	}
}
