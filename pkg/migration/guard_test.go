// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package migration

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scouttest "github.com/kraklabs/scout/internal/testing"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
}

func newTestGuard(t *testing.T, loc Locator, rt *scouttest.FakeRuntime) (*Guard, *StateStore) {
	t.Helper()
	mw, state := newTestMiddleware(t, loc, rt)
	return NewGuard(mw, nil), state
}

func TestGuard_Check(t *testing.T) {
	proj := scouttest.NewProjectDir(t)
	rt := scouttest.NewFakeRuntime(true)
	guard, state := newTestGuard(t, &stubLocator{}, rt)

	require.NoError(t, guard.Check(context.Background(), "search", proj))
	assert.False(t, state.NeedsContainerMigration())
	assert.False(t, state.NeedsProjectMigration(proj))
}

func TestGuard_CheckPropagatesFailure(t *testing.T) {
	proj := scouttest.NewProjectDir(t)
	rt := scouttest.NewFakeRuntime(true)
	rt.StopErr = errors.New("engine hung")
	guard, _ := newTestGuard(t, &stubLocator{}, rt)

	err := guard.Check(context.Background(), "search", proj)
	assert.ErrorContains(t, err, "storage migration for search")
}

// TestGuard_CheckDefaultsToWorkingDirectory verifies an empty project
// path targets the current working directory.
func TestGuard_CheckDefaultsToWorkingDirectory(t *testing.T) {
	proj := scouttest.NewProjectDir(t)
	chdir(t, proj)

	rt := scouttest.NewFakeRuntime(true)
	guard, state := newTestGuard(t, &stubLocator{}, rt)

	require.NoError(t, guard.Check(context.Background(), "search", ""))
	assert.False(t, state.NeedsProjectMigration(proj))
}

// TestGuard_SkipsWhenCwdUnavailable verifies the guard degrades to a
// logged skip when no project can be determined: the guarded operation
// must still run.
func TestGuard_SkipsWhenCwdUnavailable(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.Remove(dir))

	rt := scouttest.NewFakeRuntime(true)
	guard, state := newTestGuard(t, &stubLocator{}, rt)

	assert.NoError(t, guard.Check(context.Background(), "search", ""))
	assert.Equal(t, 0, rt.StopCalls, "no migration may run without a project")
	assert.True(t, state.NeedsContainerMigration())
}

func TestGuard_CheckBlocking(t *testing.T) {
	proj := scouttest.NewProjectDir(t)
	guard, state := newTestGuard(t, &stubLocator{}, scouttest.NewFakeRuntime(false))

	require.NoError(t, guard.CheckBlocking("start", proj))
	assert.False(t, state.NeedsProjectMigration(proj))
}
