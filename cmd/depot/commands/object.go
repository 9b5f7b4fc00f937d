// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/cmd/depot/cli"
	"github.com/bureau-foundation/depot/lib/digest"
)

func objectCommand() *cli.Command {
	return &cli.Command{
		Name:    "object",
		Summary: "Work with raw store objects",
		Description: `Low-level access to the content-addressed object store. Objects are
immutable files named by the BLAKE3 hash of their content; packages
reference them by hash.`,
		Subcommands: []*cli.Command{
			objectAddCommand(),
			objectCatCommand(),
			objectHasCommand(),
		},
	}
}

// --- object add ---

type objectAddParams struct {
	StoreSelection
}

func objectAddCommand() *cli.Command {
	var params objectAddParams

	return &cli.Command{
		Name:    "add",
		Summary: "Copy files into the object store",
		Usage:   "depot object add <file>... [flags]",
		Description: `Hash each file and copy it into the object store, printing one digest
per line. Files whose content is already stored are not copied again.
The source files are left in place.`,
		Examples: []cli.Example{
			{
				Description: "Add a file and capture its hash",
				Command:     "depot object add measurements.bin",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("object add", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("file argument required\n\nUsage: depot object add <file>... [flags]")
			}

			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			for _, path := range args {
				d, err := store.IngestFile(path)
				if err != nil {
					return err
				}
				fmt.Println(d)
			}
			return nil
		},
	}
}

// --- object cat ---

type objectCatParams struct {
	StoreSelection
}

func objectCatCommand() *cli.Command {
	var params objectCatParams

	return &cli.Command{
		Name:    "cat",
		Summary: "Write an object's content to stdout",
		Usage:   "depot object cat <hash> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("object cat", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("hash argument required\n\nUsage: depot object cat <hash> [flags]")
			}
			d, err := digest.Parse(args[0])
			if err != nil {
				return err
			}

			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			reader, err := store.ObjectReader(d)
			if err != nil {
				return err
			}
			defer reader.Close()

			if _, err := io.Copy(os.Stdout, reader); err != nil {
				return fmt.Errorf("writing object %s: %w", d, err)
			}
			return nil
		},
	}
}

// --- object has ---

type objectHasParams struct {
	StoreSelection
}

func objectHasCommand() *cli.Command {
	var params objectHasParams

	return &cli.Command{
		Name:    "has",
		Summary: "Check whether an object is stored",
		Usage:   "depot object has <hash> [flags]",
		Description: `Check if an object exists in the store. Exits 0 and prints the hash
and size when it does, exits 1 when it does not.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("object has", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("hash argument required\n\nUsage: depot object has <hash> [flags]")
			}
			d, err := digest.Parse(args[0])
			if err != nil {
				return err
			}

			store, err := params.open(cli.NewCommandLogger())
			if err != nil {
				return err
			}
			if !store.HasObject(d) {
				fmt.Fprintf(os.Stderr, "not found: %s\n", args[0])
				return &cli.ExitError{Code: 1}
			}

			info, err := os.Stat(store.ObjectPath(d))
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", d, formatSize(info.Size()))
			return nil
		},
	}
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
