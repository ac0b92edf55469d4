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
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kraklabs/scout/pkg/project"
)

// Info is the transient answer to "does this project need migrating?".
// It is what `scout status` renders; nothing in it is persisted.
type Info struct {
	Needed        bool             `json:"needed"`
	Reason        string           `json:"reason"`
	ProjectID     string           `json:"project_id"`
	Collections   []CollectionInfo `json:"collections,omitempty"`
	MigrationType string           `json:"migration_type"`
}

// Migration types reported in Info.
const (
	MigrationTypeNone      = "none"
	MigrationTypeContainer = "container"
	MigrationTypeProject   = "project"
	MigrationTypeBoth      = "container+project"
)

// Middleware is the single entry point every storage-touching operation
// goes through. It decides whether the container or the target project
// still uses the legacy layout and runs the Executor for whichever does,
// before the operation proceeds.
//
// Exactly one Middleware exists per process, constructed by bootstrap and
// passed to call sites; there is no package-level instance. Migrations
// are rare infrastructure events, so one coarse lock serializes all of
// them, across all projects, keeping container stop/start sequencing
// race-free.
type Middleware struct {
	state    *StateStore
	locator  Locator
	executor *Executor
	ids      project.IDGenerator
	logger   *slog.Logger

	// migrateMu is the coarse lock. Never run two migrations
	// concurrently, regardless of project.
	migrateMu sync.Mutex

	// group collapses concurrent EnsureCompatible calls for the same
	// (operation, project) key into a single execution.
	group singleflight.Group

	// session records (operation, project) keys that have already
	// passed this process's lifetime. A hit skips durable state
	// entirely.
	sessionMu sync.Mutex
	session   map[string]struct{}
}

// NewMiddleware creates the orchestrator. A nil logger uses
// slog.Default().
func NewMiddleware(state *StateStore, locator Locator, executor *Executor, ids project.IDGenerator, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		state:    state,
		locator:  locator,
		executor: executor,
		ids:      ids,
		logger:   logger,
		session:  make(map[string]struct{}),
	}
}

// EnsureCompatible guarantees the storage layout is current before
// operationName runs against the project at projectPath. An empty
// projectPath means the current working directory.
//
// A prior success for the same (operation, project) key short-circuits
// without touching durable state. Otherwise the coarse lock is taken,
// container and project needs are evaluated, and the Executor runs for
// whichever are true.
//
// Migration failure is fatal to the triggering operation. Proceeding on
// mismatched storage risks silent data loss, so there is no partial
// success: the failure is recorded against the project and returned.
func (m *Middleware) EnsureCompatible(ctx context.Context, operationName, projectPath string) error {
	if projectPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		projectPath = wd
	}

	canonical, err := project.Canonicalize(projectPath)
	if err != nil {
		return fmt.Errorf("canonicalize project path: %w", err)
	}

	key := operationName + "\x00" + canonical
	if m.sessionSeen(key) {
		metrics().sessionCacheHit.Inc()
		return nil
	}

	_, err, _ = m.group.Do(key, func() (any, error) {
		// A concurrent duplicate may have completed while this call
		// waited on the flight group.
		if m.sessionSeen(key) {
			metrics().sessionCacheHit.Inc()
			return nil, nil
		}

		ensureErr := m.ensure(ctx, operationName, canonical, key)
		if ensureErr != nil {
			// Recorded here, inside the flight, so duplicates sharing
			// this result do not each append an identical entry to the
			// bounded failure history.
			if markErr := m.state.MarkMigrationFailed(canonical, ensureErr); markErr != nil {
				m.logger.Error("migration.mark_failed.error", "project", canonical, "err", markErr)
			}
		}
		return nil, ensureErr
	})
	if err != nil {
		return fmt.Errorf("storage migration for %s: %w", operationName, err)
	}
	return nil
}

// ensure evaluates and runs whatever migrations the key's target needs.
// It holds the coarse lock for the whole check-and-migrate window, during
// which this subsystem exclusively owns the state file and both
// collection directories.
func (m *Middleware) ensure(ctx context.Context, operationName, canonical, key string) error {
	m.migrateMu.Lock()
	defer m.migrateMu.Unlock()

	metrics().checks.Inc()

	needContainer := m.state.NeedsContainerMigration()
	needProject := m.state.NeedsProjectMigration(canonical)

	if needContainer || needProject {
		m.logger.Info("migration.ensure",
			"operation", operationName,
			"project", canonical,
			"container_needed", needContainer,
			"project_needed", needProject,
		)
	}

	if needContainer {
		if err := m.executor.MigrateContainer(ctx); err != nil {
			return err
		}
	}
	if needProject {
		if err := m.executor.MigrateProject(ctx, canonical); err != nil {
			return err
		}
	}

	m.markSession(key)
	return nil
}

// Inspect reports whether migration is needed for the project at
// projectPath without performing any of it.
func (m *Middleware) Inspect(ctx context.Context, projectPath string) (*Info, error) {
	if projectPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		projectPath = wd
	}

	canonical, err := project.Canonicalize(projectPath)
	if err != nil {
		return nil, fmt.Errorf("canonicalize project path: %w", err)
	}

	info := &Info{
		ProjectID:     m.ids.GenerateID(canonical),
		MigrationType: MigrationTypeNone,
		Reason:        "storage layout is current",
	}

	needContainer := m.state.NeedsContainerMigration()
	needProject := m.state.NeedsProjectMigration(canonical)

	if needProject {
		collections, err := m.locator.Locate(ctx, canonical)
		if err != nil {
			return nil, err
		}
		info.Collections = collections
	}

	switch {
	case needContainer && needProject:
		info.Needed = true
		info.MigrationType = MigrationTypeBoth
		info.Reason = "container and project still use the legacy layout"
	case needContainer:
		info.Needed = true
		info.MigrationType = MigrationTypeContainer
		info.Reason = "container still uses the legacy shared mount"
	case needProject:
		info.Needed = true
		info.MigrationType = MigrationTypeProject
		info.Reason = "project is not recorded as migrated"
	}

	return info, nil
}

// State returns a copy of the durable migration record, for status
// rendering.
func (m *Middleware) State() *State {
	return m.state.Load()
}

func (m *Middleware) sessionSeen(key string) bool {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
	_, ok := m.session[key]
	return ok
}

func (m *Middleware) markSession(key string) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
	m.session[key] = struct{}{}
}
