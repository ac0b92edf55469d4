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

package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// IDGenerator derives a deterministic project identifier from a project's
// canonical path. The same path must always yield the same id, across
// process restarts and across machines with the same filesystem layout,
// because the id is what associates collections in shared storage with
// their owning project.
type IDGenerator interface {
	GenerateID(canonicalProjectPath string) string
}

// SHA256IDGenerator is the default IDGenerator. It hashes the normalized
// canonical path and keeps a short hex prefix, which is what collection
// names in shared storage embed.
type SHA256IDGenerator struct{}

// GenerateID generates a deterministic project ID from a canonical path.
// Strategy: hash(normalized path), first 8 bytes as hex. Sixteen hex
// characters keeps collection names readable while making accidental
// collisions between projects on one machine implausible.
func (SHA256IDGenerator) GenerateID(canonicalProjectPath string) string {
	normalized := normalizePath(canonicalProjectPath)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:8])
}

// Canonicalize resolves a project path to its canonical absolute form:
// absolute, symlinks resolved, cleaned. Relative, absolute, and symlinked
// spellings of the same directory all canonicalize to the same string, so
// canonical paths are safe to use as state-file keys.
//
// If the path does not exist, symlink resolution is skipped and the
// cleaned absolute path is returned; id generation for a missing path is
// still deterministic.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Path may not exist yet. Fall back to the cleaned absolute form.
		return filepath.Clean(abs), nil
	}
	return resolved, nil
}

// normalizePath normalizes a path for consistent ID generation.
// Ensures cross-platform consistency by:
//   - Cleaning the path (removing redundant separators, etc.)
//   - Normalizing path separators to forward slashes
//
// This ensures IDs are the same on Windows and Unix systems for
// equivalent paths.
func normalizePath(path string) string {
	path = filepath.Clean(path)
	return filepath.ToSlash(path)
}
