// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scout/internal/errors"
	"github.com/kraklabs/scout/internal/output"
	"github.com/kraklabs/scout/internal/ui"
	"github.com/kraklabs/scout/pkg/migration"
)

// StatusResult represents storage and migration status for JSON output.
type StatusResult struct {
	ProjectID         string                      `json:"project_id"`
	ContainerMigrated bool                        `json:"container_migrated"`
	ProjectMigrated   bool                        `json:"project_migrated"`
	MigrationVersion  string                      `json:"migration_version"`
	LastCheck         *time.Time                  `json:"last_check,omitempty"`
	Pending           *migration.Info             `json:"pending,omitempty"`
	FailedMigrations  []migration.FailedMigration `json:"failed_migrations,omitempty"`
	Timestamp         time.Time                   `json:"timestamp"`
}

// runStatus executes the 'status' CLI command.
//
// It reports whether the container and the current project are on the
// per-project storage layout, which legacy collections (if any) are
// still waiting to move, and recent migration failures. It inspects
// without migrating; the first data-touching command performs the actual
// move.
//
// Flags:
//   - --json: Output results as JSON (default: false)
//   - --project: Project path (default: current directory)
func runStatus(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")
	projectPath := fs.String("project", "", "Project path (default: current directory)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scout status [options]

Shows storage layout and migration status for a project.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	svc := newService(globals)

	info, err := svc.Middleware.Inspect(context.Background(), *projectPath)
	if err != nil {
		errors.FatalError(errors.NewStorageError(
			"Cannot inspect storage layout",
			err.Error(),
			"Check that the project directory is readable",
			err,
		), *jsonOutput)
	}

	state := svc.Middleware.State()
	result := &StatusResult{
		ProjectID:         info.ProjectID,
		ContainerMigrated: state.ContainerMigrated,
		ProjectMigrated:   !info.Needed || info.MigrationType == migration.MigrationTypeContainer,
		MigrationVersion:  state.MigrationVersion,
		LastCheck:         state.LastCheck,
		FailedMigrations:  state.FailedMigrations,
		Timestamp:         time.Now(),
	}
	if info.Needed {
		result.Pending = info
	}

	if *jsonOutput {
		if err := output.JSON(result); err != nil {
			errors.FatalError(err, true)
		}
		return
	}

	ui.Header("Scout Storage Status")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), result.ProjectID)
	fmt.Printf("%s %s\n", ui.Label("Layout version:"), result.MigrationVersion)

	if result.Pending == nil {
		ui.Success("Storage layout is current")
	} else {
		ui.Warningf("Migration pending: %s", result.Pending.Reason)
		for _, c := range result.Pending.Collections {
			fmt.Printf("  %s %s\n", c.Name, ui.DimText(humanize.Bytes(uint64(c.SizeBytes))))
		}
		fmt.Println()
		fmt.Println("The migration runs automatically on the next command that")
		fmt.Println("touches vector-store data.")
	}

	if len(result.FailedMigrations) > 0 {
		fmt.Println()
		ui.SubHeader("Recent migration failures:")
		for _, f := range result.FailedMigrations {
			fmt.Printf("  %s %s\n    %s\n",
				humanize.Time(f.Timestamp), ui.DimText(f.Project), f.Error)
		}
	}
}
