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
	"errors"
	"fmt"
)

// SizeTolerance is the allowed difference, in bytes, between a migrated
// collection and its recorded source size. Filesystems may round
// directory metadata differently across a move; anything past this bound
// means the move lost data.
const SizeTolerance = 1024

// ErrIntegrity tags verification failures so callers can match them with
// errors.Is.
var ErrIntegrity = errors.New("integrity check failed")

// IntegrityError reports a collection whose migrated size is outside the
// tolerance, or which is missing entirely after the move.
type IntegrityError struct {
	Collection  string
	SourceBytes int64
	DestBytes   int64
	Missing     bool
}

func (e *IntegrityError) Error() string {
	if e.Missing {
		return fmt.Sprintf("collection %s: destination missing after move", e.Collection)
	}
	return fmt.Sprintf("collection %s: size mismatch after move: source %d bytes, destination %d bytes (tolerance %d)",
		e.Collection, e.SourceBytes, e.DestBytes, SizeTolerance)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// RollbackError is the double fault: a migration failed and the
// backup-based restore failed too. Both errors are preserved; neither may
// be swallowed, because at this point legacy storage can no longer be
// assumed intact and the operator needs the full picture.
type RollbackError struct {
	// Cause is the original migration failure that triggered the rollback.
	Cause error

	// RestoreErr is what went wrong while restoring from backup. It may
	// aggregate several per-collection failures.
	RestoreErr error

	// BackupDir is where the untouched backup copies still live.
	BackupDir string
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("migration failed (%v) and rollback also failed (%v); backup preserved at %s",
		e.Cause, e.RestoreErr, e.BackupDir)
}

// Unwrap exposes both faults to errors.Is / errors.As.
func (e *RollbackError) Unwrap() []error {
	return []error{e.Cause, e.RestoreErr}
}
