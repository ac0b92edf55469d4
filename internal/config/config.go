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

// Package config loads Scout's per-user configuration from
// ~/.scout/config.yaml.
//
// Every field has a working default, so a missing config file is not an
// error: a fresh install runs entirely on defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds Scout's per-user settings.
type Config struct {
	// ContainerName is the name of the vector-store container.
	ContainerName string `yaml:"container_name"`

	// LegacyRoot is the root of the old shared vector-store volume.
	// When set, it is used as-is. When empty, a small list of known
	// historical install locations is probed instead; that heuristic is
	// a last-resort fallback, not the primary mechanism.
	LegacyRoot string `yaml:"legacy_root,omitempty"`

	// StateFile is the path of the durable migration-state record.
	// Defaults to ~/.scout/migration.json.
	StateFile string `yaml:"state_file,omitempty"`

	// LocalDirName is the per-project directory that holds local
	// vector-store data, relative to the project root.
	LocalDirName string `yaml:"local_dir,omitempty"`
}

const (
	// DefaultContainerName is the vector-store container Scout manages.
	DefaultContainerName = "scout-qdrant"

	// DefaultLocalDirName is where per-project collections live,
	// relative to the project root.
	DefaultLocalDirName = ".scout/vector"
)

// Default returns the configuration a fresh install runs with.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	return &Config{
		ContainerName: DefaultContainerName,
		StateFile:     filepath.Join(home, ".scout", "migration.json"),
		LocalDirName:  DefaultLocalDirName,
	}, nil
}

// Path returns the default config file location (~/.scout/config.yaml).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".scout", "config.yaml"), nil
}

// Load reads the config file at path, applying defaults for unset fields.
// An empty path means the default location. A missing file returns the
// defaults; a file that exists but cannot be parsed is an error, because
// silently ignoring explicit configuration is worse than failing.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Re-apply defaults for fields the file left empty.
	if cfg.ContainerName == "" {
		cfg.ContainerName = DefaultContainerName
	}
	if cfg.LocalDirName == "" {
		cfg.LocalDirName = DefaultLocalDirName
	}
	if cfg.StateFile == "" {
		def, err := Default()
		if err != nil {
			return nil, err
		}
		cfg.StateFile = def.StateFile
	}

	return cfg, nil
}
