// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/depot/lib/config"
	"github.com/bureau-foundation/depot/lib/depot"
)

// StoreSelection manages the --store flag shared by depot commands.
// Implements [cli.FlagBinder] so it integrates with the params struct
// system while resolving its default from the configuration layer at
// run time rather than at bind time (loading the configuration can
// fail, and AddFlags cannot return an error).
//
// Exported so that embedded struct fields are visible to reflection in
// [cli.FlagsFromParams] — unexported embedded types cause field.IsExported()
// to return false, silently skipping FlagBinder detection.
type StoreSelection struct {
	Store string
}

// AddFlags registers the --store flag. An empty value means "use the
// configured primary store", resolved when the command runs.
func (s *StoreSelection) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.Store, "store", "", "package store directory (default: configured primary store)")
}

// storePath returns the directory named by --store, or the configured
// primary store when the flag is unset.
func (s *StoreSelection) storePath() (string, error) {
	if s.Store != "" {
		return s.Store, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return cfg.PrimaryDir, nil
}

// open opens the selected package store, running any pending format
// migrations.
func (s *StoreSelection) open(logger *slog.Logger) (*depot.Store, error) {
	path, err := s.storePath()
	if err != nil {
		return nil, err
	}
	return depot.Open(depot.Config{Path: path, Logger: logger})
}

// searchDirs returns the store directories consulted by read commands:
// only --store when it is given, otherwise every configured store root.
func (s *StoreSelection) searchDirs() ([]string, error) {
	if s.Store != "" {
		return []string{s.Store}, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.StoreDirs(), nil
}

// parsePackageSpec splits a "[team:]user/package" argument into its
// coordinates. The team part is optional; an absent team addresses the
// store's default team.
func parsePackageSpec(spec string) (team, user, name string, err error) {
	rest := spec
	if before, after, ok := strings.Cut(rest, ":"); ok {
		if before == "" {
			return "", "", "", fmt.Errorf("package spec %q has an empty team", spec)
		}
		team, rest = before, after
	}
	user, name, ok := strings.Cut(rest, "/")
	if !ok {
		return "", "", "", fmt.Errorf("package spec %q must look like [team:]user/package", spec)
	}
	return team, user, name, nil
}
