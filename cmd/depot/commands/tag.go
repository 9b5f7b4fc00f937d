// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
	"github.com/bureau-foundation/depot/lib/depot"
	"github.com/bureau-foundation/depot/lib/digest"
)

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:    "tag",
		Summary: "Manage package tags",
		Description: `Tags are mutable name → instance pointers stored alongside a
package's instances. The "latest" tag is repointed automatically on
every install; other tags only move when set explicitly.`,
		Subcommands: []*cli.Command{
			tagLsCommand(),
			tagSetCommand(),
			tagRmCommand(),
		},
	}
}

// --- tag ls ---

type tagLsParams struct {
	StoreSelection
	cli.JSONOutput
}

func tagLsCommand() *cli.Command {
	var params tagLsParams

	return &cli.Command{
		Name:    "ls",
		Summary: "List a package's tags",
		Usage:   "depot tag ls <[team:]user/package> [flags]",
		Examples: []cli.Example{
			{
				Description: "List the tags of a package",
				Command:     "depot tag ls alice/weather",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("tag ls", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("package argument required\n\nUsage: depot tag ls <[team:]user/package> [flags]")
			}
			team, user, name, err := parsePackageSpec(args[0])
			if err != nil {
				return err
			}

			roots, err := params.searchDirs()
			if err != nil {
				return err
			}
			pkg, err := depot.FindPackage(roots, team, user, name, cli.NewCommandLogger())
			if err != nil {
				return err
			}
			if pkg == nil {
				return fmt.Errorf("package %s not found", args[0])
			}

			tags, err := pkg.Tags()
			if err != nil {
				return err
			}

			byName := make(map[string]string, len(tags))
			for tagName, target := range tags {
				byName[tagName] = target.String()
			}
			if done, err := params.EmitJSON(byName); done {
				return err
			}

			if len(tags) == 0 {
				fmt.Println("No tags found.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "TAG\tHASH\n")
			tagNames := make([]string, 0, len(tags))
			for tagName := range tags {
				tagNames = append(tagNames, tagName)
			}
			slices.Sort(tagNames)
			for _, tagName := range tagNames {
				fmt.Fprintf(writer, "%s\t%s\n", tagName, tags[tagName])
			}
			writer.Flush()
			return nil
		},
	}
}

// --- tag set ---

type tagSetParams struct {
	StoreSelection
}

func tagSetCommand() *cli.Command {
	var params tagSetParams

	return &cli.Command{
		Name:    "set",
		Summary: "Create or repoint a tag",
		Usage:   "depot tag set <[team:]user/package> <tag> <instance-hash> [flags]",
		Description: `Point a tag at an instance of the package. Existing tags are
overwritten. The instance hash must be the full 64-character hex
digest of an installed instance.`,
		Examples: []cli.Example{
			{
				Description: "Pin a named version",
				Command:     "depot tag set alice/weather v1 3f8a1c...",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("tag set", &params)
		},
		Run: func(args []string) error {
			if len(args) < 3 {
				return fmt.Errorf("package, tag, and instance arguments required\n\nUsage: depot tag set <[team:]user/package> <tag> <instance-hash> [flags]")
			}
			team, user, name, err := parsePackageSpec(args[0])
			if err != nil {
				return err
			}
			instance, err := digest.Parse(args[2])
			if err != nil {
				return err
			}

			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			pkg, err := store.GetPackage(team, user, name)
			if err != nil {
				return err
			}
			if pkg == nil {
				return fmt.Errorf("package %s not found", args[0])
			}

			if err := pkg.SetTag(args[1], instance); err != nil {
				return err
			}
			fmt.Printf("%s → %s\n", args[1], instance)
			return nil
		},
	}
}

// --- tag rm ---

type tagRmParams struct {
	StoreSelection
}

func tagRmCommand() *cli.Command {
	var params tagRmParams

	return &cli.Command{
		Name:    "rm",
		Summary: "Delete a tag",
		Usage:   "depot tag rm <[team:]user/package> <tag> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("tag rm", &params)
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("package and tag arguments required\n\nUsage: depot tag rm <[team:]user/package> <tag> [flags]")
			}
			team, user, name, err := parsePackageSpec(args[0])
			if err != nil {
				return err
			}

			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			pkg, err := store.GetPackage(team, user, name)
			if err != nil {
				return err
			}
			if pkg == nil {
				return fmt.Errorf("package %s not found", args[0])
			}

			if err := pkg.DeleteTag(args[1]); err != nil {
				return err
			}
			fmt.Printf("deleted: %s\n", args[1])
			return nil
		},
	}
}
