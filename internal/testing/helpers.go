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

package testing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// LegacyStore is a fake legacy shared storage tree rooted in a temp dir.
// Its layout mirrors the real thing: <root>/collections/<name>/...
type LegacyStore struct {
	// Root is the legacy storage root, suitable as a locator's explicit
	// root or candidate.
	Root string
}

// NewLegacyStore creates an empty legacy storage tree under t.TempDir.
func NewLegacyStore(t *testing.T) *LegacyStore {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "collections"), 0o755); err != nil {
		t.Fatalf("create collections dir: %v", err)
	}
	return &LegacyStore{Root: root}
}

// AddCollection creates a collection directory holding a single segment
// file of exactly size bytes, and returns the collection path.
func (s *LegacyStore) AddCollection(t *testing.T, name string, size int) string {
	t.Helper()

	dir := filepath.Join(s.Root, "collections", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create collection %s: %v", name, err)
	}
	WriteFileOfSize(t, filepath.Join(dir, "segment.dat"), size)
	return dir
}

// CollectionPath returns where a collection lives (or lived) in the store.
func (s *LegacyStore) CollectionPath(name string) string {
	return filepath.Join(s.Root, "collections", name)
}

// NewProjectDir creates a project directory under t.TempDir. The path is
// symlink-resolved so it can be compared against canonicalized paths
// (macOS tempdirs live behind /var -> /private/var).
func NewProjectDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("resolve project dir: %v", err)
	}
	return resolved
}

// WriteFileOfSize writes a file of exactly size bytes.
func WriteFileOfSize(t *testing.T, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// DirSize returns the recursive byte size of a directory tree. Test
// assertions use it to compare trees before and after a migration.
func DirSize(t *testing.T, path string) int64 {
	t.Helper()

	var total int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", path, err)
	}
	return total
}

// FakeRuntime is an in-memory container.Runtime. It records call counts
// and can be primed to fail any operation.
type FakeRuntime struct {
	mu sync.Mutex

	// ContainerExists is what Exists reports.
	ContainerExists bool

	// ExistsErr, StopErr, StartErr make the corresponding call fail.
	ExistsErr error
	StopErr   error
	StartErr  error

	// OnStop, if set, runs inside Stop before the error check. Tests use
	// it to inject failures at precise points in a migration.
	OnStop func() error

	ExistsCalls int
	StopCalls   int
	StartCalls  int
}

// NewFakeRuntime creates a fake whose container does or does not exist.
func NewFakeRuntime(exists bool) *FakeRuntime {
	return &FakeRuntime{ContainerExists: exists}
}

func (f *FakeRuntime) Exists(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExistsCalls++
	return f.ContainerExists, f.ExistsErr
}

func (f *FakeRuntime) Stop(_ context.Context) error {
	f.mu.Lock()
	f.StopCalls++
	onStop := f.OnStop
	stopErr := f.StopErr
	f.mu.Unlock()

	if onStop != nil {
		if err := onStop(); err != nil {
			return err
		}
	}
	return stopErr
}

func (f *FakeRuntime) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StartCalls++
	return f.StartErr
}
