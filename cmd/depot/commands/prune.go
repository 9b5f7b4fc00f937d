// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
	"github.com/bureau-foundation/depot/lib/digest"
)

type pruneParams struct {
	StoreSelection
	cli.JSONOutput
	DryRun bool `flag:"dry-run" desc:"report what would be removed without deleting"`
}

func pruneCommand() *cli.Command {
	var params pruneParams

	return &cli.Command{
		Name:    "prune",
		Summary: "Remove objects no package references",
		Usage:   "depot prune [flags]",
		Description: `Scan every package instance in the store and delete the objects none
of them references. Objects referenced by any instance of any package
survive, including instances only reachable through old tags.

Use --dry-run to see what would be removed without deleting anything.`,
		Examples: []cli.Example{
			{
				Description: "Preview what prune would remove",
				Command:     "depot prune --dry-run",
			},
			{
				Description: "Remove unreferenced objects",
				Command:     "depot prune",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("prune", &params)
		},
		Run: func(args []string) error {
			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}

			var removed map[digest.Digest]struct{}
			if params.DryRun {
				candidates, err := store.ListObjects()
				if err != nil {
					return err
				}
				live, err := store.LiveObjects()
				if err != nil {
					return err
				}
				removed = make(map[digest.Digest]struct{})
				for d := range candidates {
					if _, ok := live[d]; !ok {
						removed[d] = struct{}{}
					}
				}
			} else {
				removed, err = store.PruneAll()
				if err != nil {
					return err
				}
			}

			hashes := make([]string, 0, len(removed))
			for d := range removed {
				hashes = append(hashes, d.String())
			}
			slices.Sort(hashes)

			if done, err := params.EmitJSON(hashes); done {
				return err
			}

			prefix := ""
			if params.DryRun {
				prefix = "(dry run) "
			}
			fmt.Printf("%sremoved %d objects\n", prefix, len(hashes))
			return nil
		},
	}
}
