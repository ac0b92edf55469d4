// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package migration

import (
	"context"
	"log/slog"
	"os"
)

// Guard is what storage-touching call sites actually hold. It wraps the
// Middleware so a feature author writes one line before the real work:
//
//	if err := guard.Check(ctx, "search", projectPath); err != nil {
//	    return err
//	}
//
// Check is the primary, context-first interface and is the only one
// library code may use. CheckBlocking exists solely for the outermost
// CLI entry point, where no context is in flight yet.
type Guard struct {
	mw     *Middleware
	logger *slog.Logger
}

// NewGuard wraps the middleware. A nil logger uses slog.Default().
func NewGuard(mw *Middleware, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{mw: mw, logger: logger}
}

// Check ensures storage compatibility before operationName touches
// vector-store data. An empty projectPath means the current working
// directory.
//
// If no project path can be determined at all, the check is skipped with
// a logged warning rather than failing: infrastructure ambiguity must
// never mask the guarded operation's own errors.
func (g *Guard) Check(ctx context.Context, operationName, projectPath string) error {
	if projectPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			g.logger.Warn("migration.guard.skip",
				"operation", operationName,
				"reason", "working directory unavailable",
				"err", err,
			)
			return nil
		}
		projectPath = wd
	}

	return g.mw.EnsureCompatible(ctx, operationName, projectPath)
}

// CheckBlocking is the adapter for the CLI entry point. It must not be
// called from library code; anything with a context uses Check.
func (g *Guard) CheckBlocking(operationName, projectPath string) error {
	return g.Check(context.Background(), operationName, projectPath)
}
