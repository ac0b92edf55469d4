// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegrityError(t *testing.T) {
	mismatch := &IntegrityError{Collection: "code_abc", SourceBytes: 2000, DestBytes: 100}
	assert.ErrorIs(t, mismatch, ErrIntegrity)
	assert.Contains(t, mismatch.Error(), "size mismatch")
	assert.Contains(t, mismatch.Error(), "code_abc")

	missing := &IntegrityError{Collection: "code_abc", Missing: true}
	assert.ErrorIs(t, missing, ErrIntegrity)
	assert.Contains(t, missing.Error(), "destination missing")
}

func TestRollbackError_PreservesBothFaults(t *testing.T) {
	cause := errors.New("move interrupted")
	restore := errors.New("backup unreadable")
	err := &RollbackError{Cause: cause, RestoreErr: restore, BackupDir: "/tmp/backup"}

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, restore)
	assert.Contains(t, err.Error(), "/tmp/backup")
}
