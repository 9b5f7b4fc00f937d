// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete depot CLI command tree. The
// depot binary imports this package and dispatches os.Args through
// [Root].
package commands

import (
	"fmt"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
	"github.com/bureau-foundation/depot/lib/version"
)

// Root builds and returns the complete depot CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "depot",
		Description: `depot: content-addressed package store.

Store and retrieve versioned data packages from a local on-disk
repository. Objects are immutable files named by their BLAKE3 hash;
packages are manifests grouped by team and user, with mutable tags
pointing at immutable instances.`,
		Subcommands: []*cli.Command{
			initCommand(),
			lsCommand(),
			showCommand(),
			createCommand(),
			rmCommand(),
			tagCommand(),
			objectCommand(),
			pruneCommand(),
			verifyCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("depot %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Initialize the configured primary store",
				Command:     "depot init",
			},
			{
				Description: "List every package in the configured stores",
				Command:     "depot ls",
			},
			{
				Description: "Create an empty package under the default team",
				Command:     "depot create alice/weather",
			},
			{
				Description: "Add a file to the object store",
				Command:     "depot object add measurements.bin",
			},
			{
				Description: "Point a tag at a specific instance",
				Command:     "depot tag set alice/weather v1 3f8a...",
			},
			{
				Description: "Preview what prune would remove",
				Command:     "depot prune --dry-run",
			},
			{
				Description: "Check every stored object against its digest",
				Command:     "depot verify",
			},
		},
	}
}
