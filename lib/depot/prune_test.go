// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"testing"

	"github.com/bureau-foundation/depot/lib/digest"
)

func TestPruneBoundedByCandidates(t *testing.T) {
	s := newTestStore(t)
	orphan := putObjects(t, s, "orphan blob")[0]

	// An empty candidate set sweeps nothing, referenced or not.
	removed, err := s.Prune(map[digest.Digest]struct{}{})
	if err != nil {
		t.Fatalf("pruning with empty candidates: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("empty-candidate prune removed %d objects", len(removed))
	}
	if !s.HasObject(orphan) {
		t.Error("orphan swept despite not being a candidate")
	}

	removed, err = s.Prune(map[digest.Digest]struct{}{orphan: {}})
	if err != nil {
		t.Fatalf("pruning orphan: %v", err)
	}
	if _, ok := removed[orphan]; !ok {
		t.Errorf("orphan %s not reported removed", orphan)
	}
	if s.HasObject(orphan) {
		t.Error("orphan still stored after prune")
	}
}

func TestPruneSparesLiveObjects(t *testing.T) {
	s := newTestStore(t)
	live := putObjects(t, s, "referenced blob")
	orphan := putObjects(t, s, "unreferenced blob")[0]
	if _, err := s.InstallPackage("", "alice", "weather", fileManifest(t, live...)); err != nil {
		t.Fatalf("installing package: %v", err)
	}

	removed, err := s.PruneAll()
	if err != nil {
		t.Fatalf("pruning all: %v", err)
	}
	if _, ok := removed[orphan]; !ok {
		t.Errorf("orphan %s survived a full sweep", orphan)
	}
	if _, ok := removed[live[0]]; ok {
		t.Errorf("live object %s was swept", live[0])
	}
	if !s.HasObject(live[0]) {
		t.Error("live object file deleted")
	}
	if s.HasObject(orphan) {
		t.Error("orphan file survived")
	}
}

func TestPruneProtectsEveryInstance(t *testing.T) {
	s := newTestStore(t)
	old := installTestPackage(t, s, "", "alice", "weather", "old data")
	if _, err := s.InstallPackage("", "alice", "weather", fileManifest(t, putObjects(t, s, "new data")...)); err != nil {
		t.Fatalf("installing new instance: %v", err)
	}

	// Objects of the superseded instance are still referenced by it.
	removed, err := s.PruneAll()
	if err != nil {
		t.Fatalf("pruning all: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("full sweep removed %d objects from a store with no orphans", len(removed))
	}
	for d := range old.ObjectDigests() {
		if !s.HasObject(d) {
			t.Errorf("object %s of a superseded instance was swept", d)
		}
	}
}

func TestPruneReportsAlreadyMissingCandidates(t *testing.T) {
	s := newTestStore(t)
	phantom := digest.Object([]byte("never stored"))

	removed, err := s.Prune(map[digest.Digest]struct{}{phantom: {}})
	if err != nil {
		t.Fatalf("pruning a phantom candidate: %v", err)
	}
	if _, ok := removed[phantom]; !ok {
		t.Error("phantom candidate missing from the result set")
	}
}

func TestPruneAllEmptyStore(t *testing.T) {
	s := newTestStore(t)
	removed, err := s.PruneAll()
	if err != nil {
		t.Fatalf("pruning empty store: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("empty store prune removed %d objects", len(removed))
	}
}

func TestLiveObjects(t *testing.T) {
	s := newTestStore(t)
	first := putObjects(t, s, "alpha", "beta")
	second := putObjects(t, s, "beta", "gamma")
	putObjects(t, s, "orphaned")
	if _, err := s.InstallPackage("", "alice", "one", fileManifest(t, first...)); err != nil {
		t.Fatalf("installing first package: %v", err)
	}
	if _, err := s.InstallPackage("", "bob", "two", fileManifest(t, second...)); err != nil {
		t.Fatalf("installing second package: %v", err)
	}

	live, err := s.LiveObjects()
	if err != nil {
		t.Fatalf("collecting live objects: %v", err)
	}
	if len(live) != 3 {
		t.Fatalf("got %d live objects, want 3 (alpha, beta, gamma)", len(live))
	}
	for _, d := range append(first, second...) {
		if _, ok := live[d]; !ok {
			t.Errorf("referenced object %s not in live set", d)
		}
	}
}
