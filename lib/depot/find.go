// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package depot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// FindPackage searches a sequence of store roots for a package and
// returns the first hit, opening (and migrating) each root as it is
// visited. A copy that exists in some root but fails to load is
// skipped with a log line: lookup is lenient so one damaged store
// cannot mask a good copy later in the path. Not finding the package
// anywhere returns (nil, nil).
func FindPackage(roots []string, team, user, name string, logger *slog.Logger) (*Package, error) {
	if err := ValidateCoordinates(team, user, name); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, root := range roots {
		store, err := Open(Config{Path: root, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("opening store %s: %w", root, err)
		}
		p, err := store.GetPackage(team, user, name)
		if err != nil {
			var corrupt *CorruptPackageError
			if errors.As(err, &corrupt) {
				logger.Debug("skipping corrupt package copy during lookup", "root", root, "error", err)
				continue
			}
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, nil
}
