// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output writes machine-readable command output.
//
// Commands with a --json flag render through this package so tooling
// gets one consistent shape: pretty-printed JSON on stdout with 2-space
// indentation and a trailing newline. Human-readable rendering lives in
// the ui package, and error surfaces go through the errors package.
//
// Typical use in a command:
//
//	result := &StatusResult{
//	    ProjectID:       "d41d8cd98f00b204",
//	    ProjectMigrated: true,
//	}
//	if err := output.JSON(result); err != nil {
//	    errors.FatalError(err, true)
//	}
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSON writes data as pretty-printed JSON to stdout.
//
// Returns an error if encoding fails (e.g. for unencodable types like
// channels or functions).
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON to w. It exists so tests
// can capture the output.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}
