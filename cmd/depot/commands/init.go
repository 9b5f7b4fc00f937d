// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
)

type initParams struct {
	StoreSelection
}

func initCommand() *cli.Command {
	var params initParams

	return &cli.Command{
		Name:    "init",
		Summary: "Create an empty package store",
		Usage:   "depot init [flags]",
		Description: `Create the package store directory skeleton: the object shards, the
staging and cache areas, the package tree, and the format marker.

Safe to run on an existing store; everything already present is kept.
The store directory itself must be named "depot_packages".`,
		Examples: []cli.Example{
			{
				Description: "Initialize the configured primary store",
				Command:     "depot init",
			},
			{
				Description: "Initialize a store at an explicit location",
				Command:     "depot init --store /data/depot_packages",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("init", &params)
		},
		Run: func(args []string) error {
			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			if err := store.EnsureLayout(); err != nil {
				return err
			}
			fmt.Printf("initialized %s\n", store.Path())
			return nil
		},
	}
}
