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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/kraklabs/scout/pkg/project"
)

// StateVersion identifies the storage layout this code migrates to.
const StateVersion = "2.0.0"

// maxFailedMigrations bounds the failure history kept in the state file.
// The list is a ring: newest kept, oldest evicted.
const maxFailedMigrations = 10

// FailedMigration records one migration attempt that did not complete.
type FailedMigration struct {
	Project   string    `json:"project"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the durable migration record persisted to disk.
//
// MigratedProjects holds canonicalized absolute paths, sorted, each at
// most once. Once a project or the container is marked migrated the state
// never regresses to unmigrated except via Reset.
type State struct {
	ContainerMigrated bool              `json:"container_migrated"`
	MigratedProjects  []string          `json:"migrated_projects"`
	MigrationVersion  string            `json:"migration_version"`
	LastCheck         *time.Time        `json:"last_check,omitempty"`
	FailedMigrations  []FailedMigration `json:"failed_migrations,omitempty"`
}

// defaultState returns the record a fresh (or unreadable) install starts
// from: nothing migrated.
func defaultState() *State {
	return &State{
		MigratedProjects: []string{},
		MigrationVersion: StateVersion,
	}
}

// clone returns a deep copy so callers can't mutate the cached record.
func (s *State) clone() *State {
	cp := *s
	cp.MigratedProjects = slices.Clone(s.MigratedProjects)
	cp.FailedMigrations = slices.Clone(s.FailedMigrations)
	if s.LastCheck != nil {
		t := *s.LastCheck
		cp.LastCheck = &t
	}
	return &cp
}

// hasProject reports whether the canonical path is recorded as migrated.
func (s *State) hasProject(canonical string) bool {
	_, found := slices.BinarySearch(s.MigratedProjects, canonical)
	return found
}

// addProject inserts the canonical path, keeping the list sorted and
// duplicate-free.
func (s *State) addProject(canonical string) {
	idx, found := slices.BinarySearch(s.MigratedProjects, canonical)
	if found {
		return
	}
	s.MigratedProjects = slices.Insert(s.MigratedProjects, idx, canonical)
}

// StateStore is the durable migration-state record with its access
// discipline: one fine-grained mutex serializes every load-modify-save
// cycle, and the file is rewritten in full (temp file + rename)
// immediately after each mutation.
//
// A corrupt or unreadable state file is never fatal. It degrades to the
// default unmigrated state with a logged warning, which biases toward
// re-checking rather than silently skipping a needed migration.
type StateStore struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cached *State // lazily loaded once per process
}

// NewStateStore creates a store persisting to path. A nil logger uses
// slog.Default().
func NewStateStore(path string, logger *slog.Logger) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{path: path, logger: logger}
}

// Load returns a copy of the current state, reading the file on first
// use. Unreadable or corrupt state degrades to the defaults.
func (s *StateStore) Load() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked().clone()
}

// loadLocked returns the cached state, reading it from disk exactly once
// per process. Callers must hold s.mu.
func (s *StateStore) loadLocked() *State {
	if s.cached != nil {
		return s.cached
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("migration.state.unreadable", "path", s.path, "err", err)
		}
		s.cached = defaultState()
		return s.cached
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("migration.state.corrupt", "path", s.path, "err", err)
		s.cached = defaultState()
		return s.cached
	}

	if st.MigratedProjects == nil {
		st.MigratedProjects = []string{}
	}
	slices.Sort(st.MigratedProjects)
	st.MigratedProjects = slices.Compact(st.MigratedProjects)
	if st.MigrationVersion == "" {
		st.MigrationVersion = StateVersion
	}

	s.cached = &st
	return s.cached
}

// saveLocked overwrites the state file with the cached record. Callers
// must hold s.mu.
func (s *StateStore) saveLocked() error {
	now := time.Now().UTC()
	s.cached.LastCheck = &now

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(s.cached, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	// Write atomically (temp file + rename) so a crash mid-write never
	// leaves a truncated record behind.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write state temp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

// MarkContainerMigrated records that the shared container has been moved
// to the new layout.
func (s *StateStore) MarkContainerMigrated() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.loadLocked()
	st.ContainerMigrated = true
	st.MigrationVersion = StateVersion
	return s.saveLocked()
}

// MarkProjectMigrated records the project at path as migrated. The path
// is canonicalized before storage so equivalent spellings share one entry.
func (s *StateStore) MarkProjectMigrated(path string) error {
	canonical, err := project.Canonicalize(path)
	if err != nil {
		return fmt.Errorf("canonicalize %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.loadLocked()
	st.addProject(canonical)
	return s.saveLocked()
}

// MarkMigrationFailed appends a failure record for the project, evicting
// the oldest entry once the list is full. A failed migration is never
// marked complete, so retries remain possible.
func (s *StateStore) MarkMigrationFailed(path string, cause error) error {
	canonical, err := project.Canonicalize(path)
	if err != nil {
		canonical = path // still record the failure under the raw path
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.loadLocked()
	st.FailedMigrations = append(st.FailedMigrations, FailedMigration{
		Project:   canonical,
		Error:     cause.Error(),
		Timestamp: time.Now().UTC(),
	})
	if n := len(st.FailedMigrations); n > maxFailedMigrations {
		st.FailedMigrations = st.FailedMigrations[n-maxFailedMigrations:]
	}
	return s.saveLocked()
}

// NeedsContainerMigration reports whether the shared container still has
// to be migrated.
func (s *StateStore) NeedsContainerMigration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loadLocked().ContainerMigrated
}

// NeedsProjectMigration reports whether the project at path still has to
// be migrated. Lookups use the canonical path; a path that cannot be
// canonicalized is reported as needing migration, the safe default.
func (s *StateStore) NeedsProjectMigration(path string) bool {
	canonical, err := project.Canonicalize(path)
	if err != nil {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loadLocked().hasProject(canonical)
}

// Reset replaces the whole record with defaults. This is the only way
// migration state regresses to unmigrated.
func (s *StateStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = defaultState()
	return s.saveLocked()
}
