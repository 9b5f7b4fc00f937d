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
)

type showParams struct {
	StoreSelection
	cli.JSONOutput
}

// showResult is the JSON shape emitted by "depot show --json".
type showResult struct {
	Package   string            `json:"package"`
	Hash      string            `json:"hash"`
	Path      string            `json:"path"`
	Objects   int               `json:"objects"`
	Instances []string          `json:"instances"`
	Tags      map[string]string `json:"tags"`
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show package details",
		Usage:   "depot show <[team:]user/package> [flags]",
		Description: `Display a package's current instance hash, its on-disk location, its
object count, and every tag. The configured stores are searched in
order; the first store holding the package wins.`,
		Examples: []cli.Example{
			{
				Description: "Show a package under the default team",
				Command:     "depot show alice/weather",
			},
			{
				Description: "Show a package under an explicit team",
				Command:     "depot show science:alice/climate --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("package argument required\n\nUsage: depot show <[team:]user/package> [flags]")
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

			instances, err := pkg.Instances()
			if err != nil {
				return err
			}
			tags, err := pkg.Tags()
			if err != nil {
				return err
			}

			result := showResult{
				Package:   pkg.FullName(),
				Hash:      pkg.Hash().String(),
				Path:      pkg.Path(),
				Objects:   len(pkg.ObjectDigests()),
				Instances: make([]string, 0, len(instances)),
				Tags:      make(map[string]string, len(tags)),
			}
			for _, instance := range instances {
				result.Instances = append(result.Instances, instance.String())
			}
			for tagName, target := range tags {
				result.Tags[tagName] = target.String()
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "Package:\t%s\n", pkg.FullName())
			fmt.Fprintf(writer, "Hash:\t%s\n", pkg.Hash())
			fmt.Fprintf(writer, "Path:\t%s\n", pkg.Path())
			fmt.Fprintf(writer, "Objects:\t%d\n", len(pkg.ObjectDigests()))
			fmt.Fprintf(writer, "Instances:\t%d\n", len(instances))
			tagNames := make([]string, 0, len(tags))
			for tagName := range tags {
				tagNames = append(tagNames, tagName)
			}
			slices.Sort(tagNames)
			for _, tagName := range tagNames {
				fmt.Fprintf(writer, "Tag:\t%s → %s\n", tagName, tags[tagName])
			}
			writer.Flush()
			return nil
		},
	}
}
