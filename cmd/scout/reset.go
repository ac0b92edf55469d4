// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
)

// runReset executes the 'reset' CLI command. It deletes the current
// project's local vector data, and with --migrations also resets the
// durable migration record, the one sanctioned way migration state
// regresses to unmigrated.
func runReset(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")
	resetMigrations := fs.Bool("migrations", false, "Also reset migration state (forces re-check on next run)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scout reset [options]

Deletes the project's local vector-store data, clearing all indexed data.
This is useful before a full re-index to ensure a clean slate.

With --migrations, the durable migration record is also reset, so the
next storage-touching command re-checks (and if needed re-runs) the
legacy-storage migration.

WARNING: This operation is destructive and cannot be undone!

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		fmt.Fprintf(os.Stderr, "Error: you must pass --yes to confirm the reset\n")
		fmt.Fprintf(os.Stderr, "This will delete all indexed data for the project.\n")
		os.Exit(1)
	}

	svc := newService(globals)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot get current directory: %v\n", err)
		os.Exit(1)
	}
	dataDir := filepath.Join(cwd, svc.Config.LocalDirName)

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		fmt.Printf("No local data found at %s\n", dataDir)
	} else {
		fmt.Printf("Resetting project data (deleting %s)...\n", dataDir)
		if err := os.RemoveAll(dataDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to delete data: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Local vector data deleted.")
	}

	if *resetMigrations {
		if err := svc.State.Reset(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to reset migration state: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migration state reset. The next storage-touching command re-checks.")
	}
}
