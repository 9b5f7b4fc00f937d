// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package depot implements the local package store: an on-disk,
// content-addressable repository of versioned data packages.
//
// A store is one directory tree (whose basename is always
// [PackageDirName]) with this layout:
//
//	root/.format                          format version string
//	root/.lock                            advisory lock file
//	root/objs/<2-hex>/<62-hex>            content objects, 256 shard dirs
//	root/tmp/<staging-name>               pre-hash staging area
//	root/cache/<name>                     compressed download cache
//	root/pkgs/<team>/<user>/<package>/contents/<instance-hash>
//	root/pkgs/<team>/<user>/<package>/tags/<tag-name>
//
// Objects are immutable blobs named by their content digest; writing
// one stages the bytes under tmp/ and atomically renames them into
// place, so a digest that exists is always complete. Package instances
// are immutable manifest snapshots (lib/manifest) named by the digest
// of their canonical encoding. Tags are mutable name → instance-hash
// pointer files scoped to one package.
//
// Opening a store migrates legacy on-disk formats forward before any
// other operation; incompatible formats are rejected. Storage is
// reclaimed only by [Store.Prune], a mark-and-sweep pass that never
// deletes an object referenced by a live instance.
//
// The store is a single-writer design. An advisory file lock
// serializes format migration and prune between cooperating processes;
// it is a courtesy, not a concurrency guarantee.
package depot
