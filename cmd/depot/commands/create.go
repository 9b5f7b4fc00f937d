// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
)

type createParams struct {
	StoreSelection
	DryRun bool `flag:"dry-run" desc:"compute the instance hash without writing"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create an empty package",
		Usage:   "depot create <[team:]user/package> [flags]",
		Description: `Install a package holding an empty root manifest and point its
"latest" tag at the new instance. Creating a package that already
exists installs another (identical) instance, which is a no-op.

With --dry-run, the instance hash is computed and printed but nothing
is written.`,
		Examples: []cli.Example{
			{
				Description: "Create a package under the default team",
				Command:     "depot create alice/weather",
			},
			{
				Description: "Create a package under an explicit team",
				Command:     "depot create science:alice/climate",
			},
			{
				Description: "See the hash an empty package would get",
				Command:     "depot create alice/weather --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("create", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("package argument required\n\nUsage: depot create <[team:]user/package> [flags]")
			}
			team, user, name, err := parsePackageSpec(args[0])
			if err != nil {
				return err
			}

			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			pkg, err := store.CreatePackage(team, user, name, params.DryRun)
			if err != nil {
				return err
			}

			prefix := ""
			if params.DryRun {
				prefix = "(dry run) "
			}
			fmt.Printf("%s%s %s\n", prefix, pkg.FullName(), pkg.Hash())
			return nil
		},
	}
}
