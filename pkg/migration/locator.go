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
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/scout/pkg/project"
)

// CollectionInfo describes one legacy collection belonging to a project.
type CollectionInfo struct {
	// Name is the collection directory name inside legacy storage.
	Name string `json:"name"`

	// SourcePath is the absolute path of the collection directory.
	SourcePath string `json:"source_path"`

	// SizeBytes is the recursive byte size of the collection, with
	// unreadable entries skipped.
	SizeBytes int64 `json:"size_bytes"`

	// ProjectID is the owning project's id.
	ProjectID string `json:"project_id"`
}

// Locator finds legacy-storage collections belonging to a project.
type Locator interface {
	Locate(ctx context.Context, projectPath string) ([]CollectionInfo, error)
}

// LegacyLocator scans the legacy shared storage root for collections
// whose names embed a project's id.
//
// The root comes from configuration when set. Otherwise a small list of
// known historical install locations is probed; that list is a
// last-resort fallback for installs predating the legacy_root config
// field. An unresolvable root is not an error: no legacy storage means
// nothing to migrate.
type LegacyLocator struct {
	explicitRoot string
	ids          project.IDGenerator
	logger       *slog.Logger

	// candidateRoots overrides the probe list; nil means the default
	// historical locations. Tests point this at a temp dir.
	candidateRoots []string
}

// LocatorOption configures a LegacyLocator.
type LocatorOption func(*LegacyLocator)

// WithCandidateRoots overrides the fallback probe list.
func WithCandidateRoots(roots []string) LocatorOption {
	return func(l *LegacyLocator) { l.candidateRoots = roots }
}

// NewLegacyLocator creates a locator. explicitRoot may be empty, in which
// case the candidate locations are probed. A nil logger uses
// slog.Default().
func NewLegacyLocator(explicitRoot string, ids project.IDGenerator, logger *slog.Logger, opts ...LocatorOption) *LegacyLocator {
	if logger == nil {
		logger = slog.Default()
	}
	l := &LegacyLocator{
		explicitRoot: explicitRoot,
		ids:          ids,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the legacy collections belonging to the project at
// projectPath. An empty result means nothing to migrate, which covers
// both "new project" and "no legacy storage on this machine".
func (l *LegacyLocator) Locate(ctx context.Context, projectPath string) ([]CollectionInfo, error) {
	canonical, err := project.Canonicalize(projectPath)
	if err != nil {
		return nil, fmt.Errorf("canonicalize project path: %w", err)
	}
	projectID := l.ids.GenerateID(canonical)

	root, ok := l.resolveRoot()
	if !ok {
		l.logger.Debug("migration.locator.no_legacy_root", "project_id", projectID)
		return nil, nil
	}

	collectionsDir := filepath.Join(root, "collections")
	entries, err := os.ReadDir(collectionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read legacy collections dir %s: %w", collectionsDir, err)
	}

	var found []CollectionInfo
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || !strings.Contains(entry.Name(), projectID) {
			continue
		}

		sourcePath := filepath.Join(collectionsDir, entry.Name())
		found = append(found, CollectionInfo{
			Name:       entry.Name(),
			SourcePath: sourcePath,
			SizeBytes:  dirSize(sourcePath),
			ProjectID:  projectID,
		})
	}

	l.logger.Debug("migration.locator.scan",
		"project_id", projectID,
		"root", root,
		"collections", len(found),
	)
	return found, nil
}

// resolveRoot returns the legacy storage root, preferring explicit
// configuration over the candidate probe list.
func (l *LegacyLocator) resolveRoot() (string, bool) {
	if l.explicitRoot != "" {
		if info, err := os.Stat(l.explicitRoot); err == nil && info.IsDir() {
			return l.explicitRoot, true
		}
		return "", false
	}

	for _, candidate := range l.candidates() {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// candidates returns the historical legacy-root locations to probe.
func (l *LegacyLocator) candidates() []string {
	if l.candidateRoots != nil {
		return l.candidateRoots
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".scout", "qdrant", "storage"),
		filepath.Join(home, ".scout", "storage"),
		filepath.Join(home, ".local", "share", "scout", "qdrant", "storage"),
	}
}

// dirSize returns the recursive byte size of a directory tree.
// Unreadable entries are skipped rather than failing the whole scan.
func dirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}
