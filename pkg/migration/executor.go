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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/kraklabs/scout/pkg/container"
	"github.com/kraklabs/scout/pkg/project"
)

// Executor performs the actual migration work: stopping the shared
// container, and moving a project's collections from legacy storage into
// the project-local layout with backup, verification, and rollback.
//
// No step is cancellable once the destructive phase has begun; a
// migration either completes or fails into the backup-based rollback
// path. Callers impose deadlines, the executor imposes none.
type Executor struct {
	state         *StateStore
	locator       Locator
	runtime       container.Runtime
	containerName string

	// localDirName is the per-project data directory relative to the
	// project root, e.g. ".scout/vector". Collections land under
	// <project>/<localDirName>/collections/.
	localDirName string

	// backupRoot defaults to the system temp dir.
	backupRoot string

	logger *slog.Logger
	clock  func() time.Time
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithBackupRoot overrides where timestamped backups are created.
func WithBackupRoot(dir string) ExecutorOption {
	return func(e *Executor) { e.backupRoot = dir }
}

// WithExecutorClock substitutes the time source. Tests use it to pin
// backup directory names.
func WithExecutorClock(clock func() time.Time) ExecutorOption {
	return func(e *Executor) { e.clock = clock }
}

// NewExecutor creates an executor. A nil logger uses slog.Default().
func NewExecutor(state *StateStore, locator Locator, runtime container.Runtime, containerName, localDirName string, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		state:         state,
		locator:       locator,
		runtime:       runtime,
		containerName: containerName,
		localDirName:  localDirName,
		backupRoot:    os.TempDir(),
		logger:        logger,
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MigrateContainer moves the container runtime off the legacy shared
// mount. If the container does not exist there is nothing to remount and
// the next start uses the new layout natively; if it exists it is
// stopped, and the start-up subsystem mounts the new layout on next
// start. Either way the container is then recorded as migrated.
//
// If the runtime cannot report existence, the container is assumed to
// exist: failing to read container state must bias toward migrating, not
// toward skipping.
func (e *Executor) MigrateContainer(ctx context.Context) error {
	start := e.clock()
	e.logger.Info("migration.container.start", "container", e.containerName)

	exists, err := e.runtime.Exists(ctx, e.containerName)
	if err != nil {
		e.logger.Warn("migration.container.exists_unknown", "container", e.containerName, "err", err)
		exists = true
	}

	if exists {
		if err := e.runtime.Stop(ctx); err != nil {
			metrics().containerFailed.Inc()
			return fmt.Errorf("stop container %s: %w", e.containerName, err)
		}
	}

	if err := e.state.MarkContainerMigrated(); err != nil {
		return fmt.Errorf("mark container migrated: %w", err)
	}

	metrics().containerMigrated.Inc()
	e.logger.Info("migration.container.done",
		"container", e.containerName,
		"existed", exists,
		"duration", e.clock().Sub(start),
	)
	return nil
}

// MigrateProject moves every legacy collection belonging to the project
// at projectPath into the project-local layout.
//
// The sequence is: locate, create destination tree, back up every source,
// stop the container, move each collection, verify sizes, mark migrated.
// Any failure after the container stop restores every source from its
// backup and returns the original error; a restore failure on top is
// reported as a RollbackError.
func (e *Executor) MigrateProject(ctx context.Context, projectPath string) error {
	start := e.clock()

	canonical, err := project.Canonicalize(projectPath)
	if err != nil {
		return fmt.Errorf("canonicalize project path: %w", err)
	}

	collections, err := e.locator.Locate(ctx, canonical)
	if err != nil {
		return fmt.Errorf("locate legacy collections: %w", err)
	}

	if len(collections) == 0 {
		// New project, or no legacy storage at all. Nothing to move.
		e.logger.Info("migration.project.nothing_to_migrate", "project", canonical)
		if err := e.state.MarkProjectMigrated(canonical); err != nil {
			return fmt.Errorf("mark project migrated: %w", err)
		}
		metrics().projectsMigrated.Inc()
		return nil
	}

	var totalBytes int64
	for _, c := range collections {
		totalBytes += c.SizeBytes
	}
	e.logger.Info("migration.project.start",
		"project", canonical,
		"collections", len(collections),
		"bytes", totalBytes,
	)
	metrics().projectsStarted.Inc()

	destDir := filepath.Join(canonical, e.localDirName, "collections")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		metrics().projectsFailed.Inc()
		return fmt.Errorf("create local collections dir: %w", err)
	}

	// Full backup of every source before any destructive step. The
	// backup is deliberately not cleaned up on success; disk space is
	// cheaper than an unrecoverable migration.
	backupDir := filepath.Join(e.backupRoot, fmt.Sprintf("scout-migration-backup-%s", e.clock().UTC().Format("20060102-150405.000000000")))
	for _, c := range collections {
		if err := copyDir(c.SourcePath, filepath.Join(backupDir, c.Name)); err != nil {
			// Sources are untouched at this point, so there is nothing
			// to roll back yet.
			metrics().projectsFailed.Inc()
			return fmt.Errorf("backup collection %s: %w", c.Name, err)
		}
	}
	e.logger.Info("migration.project.backup.done", "project", canonical, "backup_dir", backupDir)

	// From here on any failure goes through the rollback path.
	if err := e.moveAndVerify(ctx, collections, destDir); err != nil {
		metrics().projectsFailed.Inc()
		if restoreErr := e.rollback(collections, destDir, backupDir); restoreErr != nil {
			metrics().doubleFaults.Inc()
			return &RollbackError{Cause: err, RestoreErr: restoreErr, BackupDir: backupDir}
		}
		metrics().rollbacks.Inc()
		return err
	}

	if err := e.state.MarkProjectMigrated(canonical); err != nil {
		return fmt.Errorf("mark project migrated: %w", err)
	}

	metrics().projectsMigrated.Inc()
	metrics().bytesMoved.Add(float64(totalBytes))
	metrics().projectDuration.Observe(e.clock().Sub(start).Seconds())
	e.logger.Info("migration.project.done",
		"project", canonical,
		"collections", len(collections),
		"bytes", totalBytes,
		"duration", e.clock().Sub(start),
	)
	return nil
}

// moveAndVerify runs the destructive phase: stop the container so no
// writer is live, move each collection, then verify sizes.
func (e *Executor) moveAndVerify(ctx context.Context, collections []CollectionInfo, destDir string) error {
	if err := e.runtime.Stop(ctx); err != nil {
		return fmt.Errorf("stop container %s: %w", e.containerName, err)
	}

	for _, c := range collections {
		dest := filepath.Join(destDir, c.Name)

		// A destination of the same name is a remnant of a prior failed
		// attempt; clear it so the move lands clean. This is what makes
		// retries idempotent.
		if _, err := os.Stat(dest); err == nil {
			if err := os.RemoveAll(dest); err != nil {
				return fmt.Errorf("clear stale destination %s: %w", dest, err)
			}
		}

		// Source and destination are on the same filesystem, so the
		// rename is atomic and costs nothing compared to copy+delete.
		if err := os.Rename(c.SourcePath, dest); err != nil {
			return fmt.Errorf("move collection %s: %w", c.Name, err)
		}
		e.logger.Debug("migration.collection.moved", "collection", c.Name, "dest", dest)
	}

	return e.verify(collections, destDir)
}

// verify checks every destination exists and its size is within
// SizeTolerance of the recorded source size.
func (e *Executor) verify(collections []CollectionInfo, destDir string) error {
	for _, c := range collections {
		dest := filepath.Join(destDir, c.Name)
		if _, err := os.Stat(dest); err != nil {
			return &IntegrityError{Collection: c.Name, Missing: true}
		}

		got := dirSize(dest)
		diff := got - c.SizeBytes
		if diff < 0 {
			diff = -diff
		}
		if diff > SizeTolerance {
			return &IntegrityError{Collection: c.Name, SourceBytes: c.SizeBytes, DestBytes: got}
		}
	}
	return nil
}

// rollback restores every source collection from its backup into legacy
// storage, overwriting whatever partial state the failed attempt left,
// and removes partially-moved destinations. Per-collection restore
// failures are collected rather than aborting at the first one, so every
// collection that can be restored is.
func (e *Executor) rollback(collections []CollectionInfo, destDir, backupDir string) error {
	e.logger.Warn("migration.rollback.start", "backup_dir", backupDir)

	var result *multierror.Error
	for _, c := range collections {
		backup := filepath.Join(backupDir, c.Name)

		if err := os.RemoveAll(c.SourcePath); err != nil {
			result = multierror.Append(result, fmt.Errorf("clear partial source %s: %w", c.Name, err))
			continue
		}
		if err := copyDir(backup, c.SourcePath); err != nil {
			result = multierror.Append(result, fmt.Errorf("restore collection %s: %w", c.Name, err))
			continue
		}

		// Best effort: a destination left behind by a completed move
		// would shadow the restored source on the next attempt anyway
		// (stale destinations are pre-cleared), but removing it now
		// keeps the tree unambiguous.
		_ = os.RemoveAll(filepath.Join(destDir, c.Name))
	}

	if err := result.ErrorOrNil(); err != nil {
		e.logger.Error("migration.rollback.failed", "err", err, "backup_dir", backupDir)
		return err
	}

	e.logger.Warn("migration.rollback.done", "backup_dir", backupDir)
	return nil
}

// copyDir recursively copies a directory tree, preserving file modes.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies a single regular file, preserving its mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
