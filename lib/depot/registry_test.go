// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/bureau-foundation/depot/lib/digest"
	"github.com/bureau-foundation/depot/lib/manifest"
	"github.com/bureau-foundation/depot/lib/naming"
)

func TestInstallGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	contents := fileManifest(t, putObjects(t, s, "temperature", "humidity")...)

	installed, err := s.InstallPackage("", "alice", "weather", contents)
	if err != nil {
		t.Fatalf("installing package: %v", err)
	}
	loaded, err := s.GetPackage("", "alice", "weather")
	if err != nil {
		t.Fatalf("getting package: %v", err)
	}
	if loaded == nil {
		t.Fatal("installed package not found")
	}
	if loaded.Hash() != installed.Hash() {
		t.Errorf("loaded instance %s, want %s", loaded.Hash(), installed.Hash())
	}
	if loaded.Team() != DefaultTeam {
		t.Errorf("loaded team %q, want %q", loaded.Team(), DefaultTeam)
	}

	// The stored manifest round-trips to the same canonical encoding.
	wantBytes, err := manifest.Encode(contents)
	if err != nil {
		t.Fatalf("encoding original: %v", err)
	}
	gotBytes, err := manifest.Encode(loaded.Contents())
	if err != nil {
		t.Fatalf("encoding loaded: %v", err)
	}
	if !bytes.Equal(gotBytes, wantBytes) {
		t.Error("loaded manifest differs from the installed one")
	}
}

func TestGetPackageAbsent(t *testing.T) {
	s := newTestStore(t)
	p, err := s.GetPackage("", "alice", "nothing")
	if err != nil {
		t.Fatalf("getting an absent package errored: %v", err)
	}
	if p != nil {
		t.Fatalf("got %+v for an absent package, want nil", p)
	}
}

func TestGetPackageCorruptManifest(t *testing.T) {
	s := newTestStore(t)
	p := installTestPackage(t, s, "", "alice", "weather")
	instancePath := filepath.Join(p.contentsDir(), p.Hash().String())
	if err := os.WriteFile(instancePath, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("corrupting instance: %v", err)
	}

	_, err := s.GetPackage("", "alice", "weather")
	var corrupt *CorruptPackageError
	if !errors.As(err, &corrupt) {
		t.Fatalf("got %v, want CorruptPackageError", err)
	}
	if corrupt.Path != instancePath {
		t.Errorf("error names %s, want %s", corrupt.Path, instancePath)
	}
}

func TestGetPackageDanglingLatestTag(t *testing.T) {
	s := newTestStore(t)
	p := installTestPackage(t, s, "", "alice", "weather")
	if err := os.Remove(filepath.Join(p.contentsDir(), p.Hash().String())); err != nil {
		t.Fatalf("removing instance file: %v", err)
	}

	_, err := s.GetPackage("", "alice", "weather")
	var corrupt *CorruptPackageError
	if !errors.As(err, &corrupt) {
		t.Fatalf("got %v, want CorruptPackageError", err)
	}
}

func TestGetPackageWithoutLatestTag(t *testing.T) {
	s := newTestStore(t)
	first := installTestPackage(t, s, "", "alice", "weather", "instance one")
	second, err := s.InstallPackage("", "alice", "weather", fileManifest(t, putObjects(t, s, "instance two")...))
	if err != nil {
		t.Fatalf("installing second instance: %v", err)
	}
	if err := second.DeleteTag(TagLatest); err != nil {
		t.Fatalf("deleting latest tag: %v", err)
	}

	loaded, err := s.GetPackage("", "alice", "weather")
	if err != nil {
		t.Fatalf("getting package without latest tag: %v", err)
	}
	want := first.Hash()
	if second.Hash().String() > want.String() {
		want = second.Hash()
	}
	if loaded.Hash() != want {
		t.Errorf("fallback loaded %s, want lexically greatest %s", loaded.Hash(), want)
	}
}

func TestGetPackageEmptyDirectory(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.PackagePath("", "alice", "hollow"), 0o755); err != nil {
		t.Fatalf("creating empty package directory: %v", err)
	}

	_, err := s.GetPackage("", "alice", "hollow")
	var corrupt *CorruptPackageError
	if !errors.As(err, &corrupt) {
		t.Fatalf("got %v, want CorruptPackageError", err)
	}
}

func TestInstallPackageValidatesBeforeWriting(t *testing.T) {
	s := newTestStore(t)
	var invalid *naming.InvalidNameError
	_, err := s.InstallPackage("", "9lives", "weather", manifest.NewRoot())
	if !errors.As(err, &invalid) {
		t.Fatalf("install with bad user returned %v, want InvalidNameError", err)
	}
	// Validation failed before the store was touched.
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("failed install created the store root (stat err: %v)", err)
	}
}

func TestInstallPackageRequiresContents(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.InstallPackage("", "alice", "weather", nil); err == nil {
		t.Fatal("install with nil contents succeeded")
	}
}

func TestInstallPackageClearsLegacyArtifact(t *testing.T) {
	s := newTestStore(t)
	path := s.PackagePath("", "alice", "weather")
	writeTestFile(t, path, "legacy flat package file")

	p, err := s.InstallPackage("", "alice", "weather", manifest.NewRoot())
	if err != nil {
		t.Fatalf("installing over legacy artifact: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat package path: %v", err)
	}
	if !info.IsDir() {
		t.Error("package path is still a flat file")
	}
	if _, err := os.Stat(filepath.Join(p.contentsDir(), p.Hash().String())); err != nil {
		t.Errorf("instance file missing: %v", err)
	}
}

func TestInstallPackageKeepsOtherInstances(t *testing.T) {
	s := newTestStore(t)
	first := installTestPackage(t, s, "", "alice", "weather", "one")
	second, err := s.InstallPackage("", "alice", "weather", fileManifest(t, putObjects(t, s, "two")...))
	if err != nil {
		t.Fatalf("installing second instance: %v", err)
	}

	instances, err := second.Instances()
	if err != nil {
		t.Fatalf("listing instances: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("got %d instances after reinstall, want 2", len(instances))
	}
	latest, err := second.Tag(TagLatest)
	if err != nil {
		t.Fatalf("resolving latest: %v", err)
	}
	if latest != second.Hash() {
		t.Errorf("latest points at %s, want %s", latest, second.Hash())
	}
	if first.Hash() == second.Hash() {
		t.Fatal("test needs two distinct instances")
	}
}

func TestInstallPackageIdempotent(t *testing.T) {
	s := newTestStore(t)
	contents := fileManifest(t, putObjects(t, s, "same")...)
	first, err := s.InstallPackage("", "alice", "weather", contents)
	if err != nil {
		t.Fatalf("first install: %v", err)
	}
	second, err := s.InstallPackage("", "alice", "weather", contents)
	if err != nil {
		t.Fatalf("second install: %v", err)
	}
	if first.Hash() != second.Hash() {
		t.Errorf("same contents installed as %s then %s", first.Hash(), second.Hash())
	}
	instances, err := second.Instances()
	if err != nil {
		t.Fatalf("listing instances: %v", err)
	}
	if len(instances) != 1 {
		t.Errorf("got %d instances after identical reinstall, want 1", len(instances))
	}
}

func TestCreatePackageDryRun(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreatePackage("", "alice", "draft", true)
	if err != nil {
		t.Fatalf("dry-run create: %v", err)
	}
	want, err := manifest.InstanceDigest(manifest.NewRoot())
	if err != nil {
		t.Fatalf("computing empty instance digest: %v", err)
	}
	if p.Hash() != want {
		t.Errorf("dry-run handle has instance %s, want %s", p.Hash(), want)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("dry-run create touched the filesystem (stat err: %v)", err)
	}
}

func TestCreatePackage(t *testing.T) {
	s := newTestStore(t)
	created, err := s.CreatePackage("", "alice", "fresh", false)
	if err != nil {
		t.Fatalf("creating package: %v", err)
	}
	loaded, err := s.GetPackage("", "alice", "fresh")
	if err != nil {
		t.Fatalf("getting created package: %v", err)
	}
	if loaded == nil {
		t.Fatal("created package not found")
	}
	if loaded.Hash() != created.Hash() {
		t.Errorf("loaded %s, want %s", loaded.Hash(), created.Hash())
	}
	if len(loaded.Contents().Children) != 0 {
		t.Errorf("fresh package has %d children, want 0", len(loaded.Contents().Children))
	}
}

func TestRemovePackage(t *testing.T) {
	s := newTestStore(t)
	shared := putObjects(t, s, "shared blob")[0]
	exclusive := putObjects(t, s, "exclusive blob")[0]

	installTestPackage(t, s, "", "alice", "keeper", "shared blob")
	doomed, err := s.InstallPackage("", "alice", "doomed", fileManifest(t, shared, exclusive))
	if err != nil {
		t.Fatalf("installing doomed package: %v", err)
	}

	removed, err := s.RemovePackage("", "alice", "doomed")
	if err != nil {
		t.Fatalf("removing package: %v", err)
	}
	if _, ok := removed[exclusive]; !ok {
		t.Errorf("exclusive object %s not reported removed", exclusive)
	}
	if _, ok := removed[shared]; ok {
		t.Errorf("shared object %s reported removed", shared)
	}
	if s.HasObject(exclusive) {
		t.Error("exclusive object still stored")
	}
	if !s.HasObject(shared) {
		t.Error("shared object was swept")
	}
	if _, err := os.Stat(doomed.Path()); !os.IsNotExist(err) {
		t.Errorf("package directory still present (stat err: %v)", err)
	}
	keeper, err := s.GetPackage("", "alice", "keeper")
	if err != nil || keeper == nil {
		t.Fatalf("surviving package unreadable: %v", err)
	}
}

func TestRemovePackageAllInstances(t *testing.T) {
	s := newTestStore(t)
	installTestPackage(t, s, "", "alice", "weather", "first")
	if _, err := s.InstallPackage("", "alice", "weather", fileManifest(t, putObjects(t, s, "second")...)); err != nil {
		t.Fatalf("installing second instance: %v", err)
	}

	removed, err := s.RemovePackage("", "alice", "weather")
	if err != nil {
		t.Fatalf("removing package: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("removed %d objects, want 2 (one per instance)", len(removed))
	}
	objects, err := s.ListObjects()
	if err != nil {
		t.Fatalf("listing objects: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("%d objects survived removal of their only package", len(objects))
	}
}

func TestRemovePackageCorruptInstanceAborts(t *testing.T) {
	s := newTestStore(t)
	p := installTestPackage(t, s, "", "alice", "weather")
	writeTestFile(t, filepath.Join(p.contentsDir(), digest.Manifest([]byte("fake")).String()), "garbage")

	_, err := s.RemovePackage("", "alice", "weather")
	var corrupt *CorruptPackageError
	if !errors.As(err, &corrupt) {
		t.Fatalf("removal with corrupt instance returned %v, want CorruptPackageError", err)
	}
	// Nothing may be deleted when the reference set is unknowable.
	if _, err := os.Stat(p.Path()); err != nil {
		t.Errorf("package directory deleted despite aborted removal: %v", err)
	}
	loaded, err := s.GetPackage("", "alice", "weather")
	if err != nil || loaded == nil {
		t.Fatalf("package unreadable after aborted removal: %v", err)
	}
}

func TestRemovePackageAbsent(t *testing.T) {
	s := newTestStore(t)
	removed, err := s.RemovePackage("", "alice", "nothing")
	if err != nil {
		t.Fatalf("removing an absent package errored: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("removing an absent package swept %d objects", len(removed))
	}
}

func TestInstancesWalk(t *testing.T) {
	s := newTestStore(t)
	installTestPackage(t, s, "", "alice", "weather", "w")
	installTestPackage(t, s, "", "bob", "ocean", "o")
	installTestPackage(t, s, "science", "alice", "climate", "c")

	var names []string
	err := s.Instances(func(p *Package) error {
		names = append(names, p.FullName())
		return nil
	})
	if err != nil {
		t.Fatalf("walking instances: %v", err)
	}
	// Lexical walk order: team "default" before "science".
	want := []string{"alice/weather", "bob/ocean", "science:alice/climate"}
	if !slices.Equal(names, want) {
		t.Errorf("walk visited %v, want %v", names, want)
	}
}

func TestInstancesCallbackError(t *testing.T) {
	s := newTestStore(t)
	installTestPackage(t, s, "", "alice", "weather")

	sentinel := errors.New("stop the walk")
	err := s.Instances(func(*Package) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("walk returned %v, want the callback's error", err)
	}
}

func TestInstancesCorruptManifestAborts(t *testing.T) {
	s := newTestStore(t)
	p := installTestPackage(t, s, "", "alice", "weather")
	writeTestFile(t, filepath.Join(p.contentsDir(), digest.Manifest([]byte("fake")).String()), "garbage")

	err := s.Instances(func(*Package) error { return nil })
	var corrupt *CorruptPackageError
	if !errors.As(err, &corrupt) {
		t.Fatalf("walk over corrupt instance returned %v, want CorruptPackageError", err)
	}
}

func TestListPackages(t *testing.T) {
	s := newTestStore(t)

	// alice/weather: first instance tagged latest and v1, second
	// instance untagged.
	first := installTestPackage(t, s, "", "alice", "weather", "one")
	second, err := s.InstallPackage("", "alice", "weather", fileManifest(t, putObjects(t, s, "two")...))
	if err != nil {
		t.Fatalf("installing second instance: %v", err)
	}
	if err := second.SetTag("v1", first.Hash()); err != nil {
		t.Fatalf("tagging v1: %v", err)
	}
	if err := second.SetTag(TagLatest, first.Hash()); err != nil {
		t.Fatalf("moving latest: %v", err)
	}
	// A package outside the default team.
	installTestPackage(t, s, "science", "bob", "ocean", "deep")

	rows, err := s.ListPackages()
	if err != nil {
		t.Fatalf("listing packages: %v", err)
	}

	taggedRows := []ListEntry{
		{Package: "alice/weather", Tag: TagLatest, Hash: first.Hash().String()},
		{Package: "alice/weather", Tag: "v1", Hash: first.Hash().String()},
	}
	untaggedRow := ListEntry{Package: "alice/weather", Hash: second.Hash().String()}
	var want []ListEntry
	if first.Hash().String() < second.Hash().String() {
		want = append(append(want, taggedRows...), untaggedRow)
	} else {
		want = append(append(want, untaggedRow), taggedRows...)
	}

	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4: %+v", len(rows), rows)
	}
	if !slices.Equal(rows[:3], want) {
		t.Errorf("default-team rows are %+v, want %+v", rows[:3], want)
	}
	if rows[3].Package != "science:bob/ocean" || rows[3].Tag != TagLatest {
		t.Errorf("teamed row is %+v, want science:bob/ocean tagged latest", rows[3])
	}
}

func TestListPackagesDanglingTag(t *testing.T) {
	s := newTestStore(t)
	p := installTestPackage(t, s, "", "alice", "weather")
	ghost := digest.Manifest([]byte("instance that never existed"))
	if err := p.SetTag("ghost", ghost); err != nil {
		t.Fatalf("setting dangling tag: %v", err)
	}

	rows, err := s.ListPackages()
	if err != nil {
		t.Fatalf("listing packages: %v", err)
	}
	found := false
	for _, row := range rows {
		if row.Tag == "ghost" && row.Hash == ghost.String() {
			found = true
		}
	}
	if !found {
		t.Errorf("dangling tag missing from listing: %+v", rows)
	}
}

func TestListPackagesEmptyStore(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.ListPackages()
	if err != nil {
		t.Fatalf("listing empty store: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("empty store listed %d rows", len(rows))
	}
}

func TestValidateCoordinates(t *testing.T) {
	cases := []struct {
		team, user, name string
		ok               bool
	}{
		{"", "alice", "weather", true},
		{"science", "alice", "weather", true},
		{"9team", "alice", "weather", false},
		{"", "", "weather", false},
		{"", "alice", "wea-ther", false},
		{"", "al/ice", "weather", false},
	}
	for _, c := range cases {
		err := ValidateCoordinates(c.team, c.user, c.name)
		if c.ok && err != nil {
			t.Errorf("ValidateCoordinates(%q, %q, %q) = %v, want nil", c.team, c.user, c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ValidateCoordinates(%q, %q, %q) succeeded", c.team, c.user, c.name)
		}
	}
}

func TestFindPackageFirstRootWins(t *testing.T) {
	firstRoot := filepath.Join(t.TempDir(), PackageDirName)
	secondRoot := filepath.Join(t.TempDir(), PackageDirName)
	firstStore, err := Open(Config{Path: firstRoot})
	if err != nil {
		t.Fatalf("opening first store: %v", err)
	}
	secondStore, err := Open(Config{Path: secondRoot})
	if err != nil {
		t.Fatalf("opening second store: %v", err)
	}
	inFirst := installTestPackage(t, firstStore, "", "alice", "weather", "from first root")
	installTestPackage(t, secondStore, "", "alice", "weather", "from second root")

	p, err := FindPackage([]string{firstRoot, secondRoot}, "", "alice", "weather", nil)
	if err != nil {
		t.Fatalf("finding package: %v", err)
	}
	if p == nil {
		t.Fatal("package not found in either root")
	}
	if p.Hash() != inFirst.Hash() {
		t.Errorf("found instance %s, want the first root's %s", p.Hash(), inFirst.Hash())
	}
}

func TestFindPackageSkipsCorruptCopy(t *testing.T) {
	firstRoot := filepath.Join(t.TempDir(), PackageDirName)
	secondRoot := filepath.Join(t.TempDir(), PackageDirName)
	firstStore, err := Open(Config{Path: firstRoot})
	if err != nil {
		t.Fatalf("opening first store: %v", err)
	}
	secondStore, err := Open(Config{Path: secondRoot})
	if err != nil {
		t.Fatalf("opening second store: %v", err)
	}
	broken := installTestPackage(t, firstStore, "", "alice", "weather", "will break")
	if err := os.WriteFile(filepath.Join(broken.contentsDir(), broken.Hash().String()), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("corrupting first copy: %v", err)
	}
	good := installTestPackage(t, secondStore, "", "alice", "weather", "still good")

	p, err := FindPackage([]string{firstRoot, secondRoot}, "", "alice", "weather", nil)
	if err != nil {
		t.Fatalf("finding package: %v", err)
	}
	if p == nil {
		t.Fatal("lookup did not fall through to the healthy root")
	}
	if p.Hash() != good.Hash() {
		t.Errorf("found instance %s, want the second root's %s", p.Hash(), good.Hash())
	}
}

func TestFindPackageAbsent(t *testing.T) {
	root := filepath.Join(t.TempDir(), PackageDirName)
	p, err := FindPackage([]string{root}, "", "alice", "nothing", nil)
	if err != nil {
		t.Fatalf("finding absent package errored: %v", err)
	}
	if p != nil {
		t.Fatalf("found %+v for an absent package", p)
	}
}
