// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultContainerName, cfg.ContainerName)
	assert.Equal(t, DefaultLocalDirName, cfg.LocalDirName)
	assert.NotEmpty(t, cfg.StateFile)
	assert.Empty(t, cfg.LegacyRoot)
}

func TestLoad_FileOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "container_name: custom-qdrant\nlegacy_root: /var/lib/scout/qdrant\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom-qdrant", cfg.ContainerName)
	assert.Equal(t, "/var/lib/scout/qdrant", cfg.LegacyRoot)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultLocalDirName, cfg.LocalDirName)
	assert.NotEmpty(t, cfg.StateFile)
}

func TestLoad_MalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("container_name: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
