// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/depot/lib/depot"
)

// Config names the package stores a depot command operates on.
type Config struct {
	// PrimaryDir is the store root that receives all writes and is
	// searched first on lookups. Its basename must be
	// depot.PackageDirName.
	PrimaryDir string `yaml:"primary_dir"`

	// ExtraDirs are additional store roots searched, in order, after
	// the primary when a package is looked up. They are never written
	// to by this process.
	ExtraDirs []string `yaml:"extra_dirs"`
}

// Default returns the built-in configuration: a single store under the
// user's XDG data directory.
func Default() *Config {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return &Config{
		PrimaryDir: filepath.Join(dataDir, "depot", depot.PackageDirName),
	}
}

// FromEnvironment resolves the configuration from the process
// environment, falling back to [Default] for anything unset. This is
// the single place depot reads its store variables:
//
//	DEPOT_PRIMARY_PACKAGE_DIR   the primary store root
//	DEPOT_PACKAGE_DIRS          colon-separated extra store roots
func FromEnvironment() *Config {
	cfg := Default()
	if primary := os.Getenv("DEPOT_PRIMARY_PACKAGE_DIR"); primary != "" {
		cfg.PrimaryDir = primary
	}
	if dirs := os.Getenv("DEPOT_PACKAGE_DIRS"); dirs != "" {
		for _, dir := range strings.Split(dirs, ":") {
			if dir != "" {
				cfg.ExtraDirs = append(cfg.ExtraDirs, dir)
			}
		}
	}
	return cfg
}

// Load resolves the configuration for a command: the YAML file named
// by DEPOT_CONFIG when that is set, the environment variables
// otherwise. A configuration file is the single source of truth; the
// store environment variables do not override its values.
func Load() (*Config, error) {
	if path := os.Getenv("DEPOT_CONFIG"); path != "" {
		return LoadFile(path)
	}
	return FromEnvironment(), nil
}

// LoadFile loads configuration from a specific YAML file, merging it
// over [Default]. The only expansion performed is ${HOME} and similar
// path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// configured paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":          os.Getenv("HOME"),
		"XDG_DATA_HOME": os.Getenv("XDG_DATA_HOME"),
	}
	c.PrimaryDir = expandVars(c.PrimaryDir, vars)
	for i, dir := range c.ExtraDirs {
		c.ExtraDirs[i] = expandVars(dir, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them
// at once.
func (c *Config) Validate() error {
	var errs []error
	if c.PrimaryDir == "" {
		errs = append(errs, fmt.Errorf("primary_dir is required"))
	}
	for _, dir := range c.StoreDirs() {
		if base := filepath.Base(dir); base != depot.PackageDirName {
			errs = append(errs, fmt.Errorf("store root %s: basename is %q, want %q", dir, base, depot.PackageDirName))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// StoreDirs returns the search path: the primary store followed by the
// extra stores, with duplicates and empty entries dropped.
func (c *Config) StoreDirs() []string {
	var dirs []string
	for _, dir := range append([]string{c.PrimaryDir}, c.ExtraDirs...) {
		if dir == "" || slices.Contains(dirs, dir) {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
