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

package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/kraklabs/scout/internal/config"
	"github.com/kraklabs/scout/pkg/container"
	"github.com/kraklabs/scout/pkg/migration"
	"github.com/kraklabs/scout/pkg/project"
)

// Service is the assembled migration subsystem: one per process, built
// here, owned by main, and passed to every guarded call site.
type Service struct {
	Config     *config.Config
	Runtime    container.Runtime
	State      *migration.StateStore
	Middleware *migration.Middleware
	Guard      *migration.Guard
}

// NewService wires the migration middleware from configuration.
//
// The assembly order follows the dependency graph, leaves first: state
// store, locator, container runtime, executor, middleware, guard.
//
// Parameters:
//   - cfg: loaded configuration (must not be nil)
//   - logger: optional logger (nil uses default)
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("bootstrap.service.init",
		"container", cfg.ContainerName,
		"state_file", cfg.StateFile,
		"legacy_root", cfg.LegacyRoot,
	)

	ids := project.SHA256IDGenerator{}
	state := migration.NewStateStore(cfg.StateFile, logger)
	locator := migration.NewLegacyLocator(cfg.LegacyRoot, ids, logger)
	runtime := container.NewDockerRuntime(cfg.ContainerName, container.WithLogger(logger))
	executor := migration.NewExecutor(state, locator, runtime, cfg.ContainerName, cfg.LocalDirName, logger)
	middleware := migration.NewMiddleware(state, locator, executor, ids, logger)

	return &Service{
		Config:     cfg,
		Runtime:    runtime,
		State:      state,
		Middleware: middleware,
		Guard:      migration.NewGuard(middleware, logger),
	}, nil
}
