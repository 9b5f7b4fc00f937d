// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
)

type rmParams struct {
	StoreSelection
}

func rmCommand() *cli.Command {
	var params rmParams

	return &cli.Command{
		Name:    "rm",
		Summary: "Remove a package and prune its objects",
		Usage:   "depot rm <[team:]user/package> [flags]",
		Description: `Delete a package (every instance and tag), then prune the objects it
referenced. Objects still referenced by other packages survive the
prune. Removing a package that does not exist is a no-op.`,
		Examples: []cli.Example{
			{
				Description: "Remove a package under the default team",
				Command:     "depot rm alice/weather",
			},
			{
				Description: "Remove a package from a specific store",
				Command:     "depot rm science:alice/climate --store /data/depot_packages",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("rm", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("package argument required\n\nUsage: depot rm <[team:]user/package> [flags]")
			}
			team, user, name, err := parsePackageSpec(args[0])
			if err != nil {
				return err
			}

			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			removed, err := store.RemovePackage(team, user, name)
			if err != nil {
				return err
			}

			fmt.Printf("removed %s (%d objects pruned)\n", args[0], len(removed))
			return nil
		},
	}
}
