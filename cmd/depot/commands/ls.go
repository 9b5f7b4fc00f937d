// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
	"github.com/bureau-foundation/depot/lib/depot"
)

type lsParams struct {
	StoreSelection
	cli.JSONOutput
}

func lsCommand() *cli.Command {
	var params lsParams

	return &cli.Command{
		Name:    "ls",
		Summary: "List packages, tags, and instance hashes",
		Usage:   "depot ls [flags]",
		Description: `List every package instance in the configured stores, one row per
instance and tag combination. Untagged instances show an empty tag
column; tags pointing at a missing instance are listed with their
dangling target hash.`,
		Examples: []cli.Example{
			{
				Description: "List all packages",
				Command:     "depot ls",
			},
			{
				Description: "List packages in one specific store",
				Command:     "depot ls --store /data/depot_packages",
			},
			{
				Description: "Machine-readable listing",
				Command:     "depot ls --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("ls", &params)
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger()
			roots, err := params.searchDirs()
			if err != nil {
				return err
			}

			var entries []depot.ListEntry
			for _, root := range roots {
				store, err := depot.Open(depot.Config{Path: root, Logger: logger})
				if err != nil {
					return err
				}
				rows, err := store.ListPackages()
				if err != nil {
					return fmt.Errorf("listing %s: %w", root, err)
				}
				entries = append(entries, rows...)
			}

			if done, err := params.EmitJSON(entries); done {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No packages found.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "PACKAGE\tTAG\tHASH\n")
			for _, entry := range entries {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", entry.Package, entry.Tag, entry.Hash)
			}
			writer.Flush()
			return nil
		},
	}
}
