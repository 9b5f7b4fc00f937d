// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config resolves where depot keeps and finds package stores.
//
// Resolution is explicit and happens exactly once, at startup. Three
// sources exist, each exclusive of the ones below it:
//
//   - a YAML file named by the DEPOT_CONFIG environment variable
//     (via [Load]) or an explicit path (via [LoadFile])
//   - the DEPOT_PRIMARY_PACKAGE_DIR and DEPOT_PACKAGE_DIRS environment
//     variables (via [FromEnvironment])
//   - the built-in default under the user's XDG data directory
//     (via [Default])
//
// The store packages themselves never consult the environment; every
// path reaches them through a [Config]. This keeps store behavior
// deterministic and auditable: a given Config always means the same
// directories, no hidden overrides.
//
// Variable expansion is performed on path fields after loading a file:
// ${HOME}, ${XDG_DATA_HOME}, and ${VAR:-default} patterns are
// expanded. No other environment reads occur.
//
// This package depends on no other depot packages except the store's
// layout constants.
package config
