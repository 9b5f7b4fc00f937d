// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
)

type verifyParams struct {
	StoreSelection
	cli.JSONOutput
}

func verifyCommand() *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check stored objects against their digests",
		Usage:   "depot verify [flags]",
		Description: `Re-hash every object in the store and report entries whose content no
longer matches their name, plus files that do not belong in the object
tree at all. Exits 1 when anything is wrong.`,
		Examples: []cli.Example{
			{
				Description: "Verify the configured primary store",
				Command:     "depot verify",
			},
			{
				Description: "Verify a specific store, machine-readable",
				Command:     "depot verify --store /data/depot_packages --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(args []string) error {
			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			faults, err := store.VerifyObjects()
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(faults); done {
				if err != nil {
					return err
				}
				if len(faults) > 0 {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}

			if len(faults) == 0 {
				fmt.Println("all objects verified")
				return nil
			}
			for _, fault := range faults {
				fmt.Printf("%s: %s\n", fault.Path, fault.Reason)
			}
			fmt.Fprintf(os.Stderr, "%d bad entries\n", len(faults))
			return &cli.ExitError{Code: 1}
		},
	}
}
