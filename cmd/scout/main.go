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

// Package main implements the Scout CLI for managing the local
// vector-store infrastructure of AI-assisted code search.
//
// Usage:
//
//	scout status [--json]   Show storage and migration status
//	scout start             Start the vector-store container
//	scout stop              Stop the vector-store container
//	scout reset --yes       Reset local project data
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kraklabs/scout/internal/bootstrap"
	"github.com/kraklabs/scout/internal/config"
	"github.com/kraklabs/scout/internal/errors"
	"github.com/kraklabs/scout/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags carries the flags shared by every subcommand.
type GlobalFlags struct {
	JSON       bool
	NoColor    bool
	ConfigPath string
}

// main is the entry point for the Scout CLI.
//
// It parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: Display version information and exit
//   - --json: Output as JSON where the command supports it
//   - --no-color: Disable colored output
//   - --config: Path to ~/.scout/config.yaml
//
// Commands:
//   - status: Show storage layout and migration status
//   - start: Start the vector-store container
//   - stop: Stop the vector-store container
//   - reset: Reset local project data (destructive!)
func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output as JSON where supported")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		configPath  = flag.String("config", "", "Path to config file (default: ~/.scout/config.yaml)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Scout - AI-assisted code search

Scout gives AI assistants semantic search over your codebase. Vector
data lives per project, next to the code it indexes, served by a local
Qdrant container that Scout manages for you.

Usage:
  scout <command> [options]

Commands:
  status        Show storage layout and migration status
  start         Start the vector-store container
  stop          Stop the vector-store container
  reset         Reset local project data (destructive!)

Global Options:
  --json        Output as JSON where supported
  --no-color    Disable colored output
  --config      Path to config file
  --verbose     Enable debug logging
  --version     Show version and exit

Examples:
  scout start                        Bring up the vector store
  scout status                       Show migration and storage status
  scout status --json                Output as JSON (for tooling)
  scout reset --yes                  Delete this project's local data

Data Storage:
  Per-project data lives in <project>/.scout/vector/
  Installations older than v2 are migrated there automatically the
  first time any command touches vector-store data.

For detailed command help: scout <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("scout version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	ui.InitColors(*noColor)
	initLogging(*verbose)

	globals := GlobalFlags{
		JSON:       *jsonOutput,
		NoColor:    *noColor,
		ConfigPath: *configPath,
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "status":
		runStatus(cmdArgs, globals)
	case "start":
		runStart(cmdArgs, globals)
	case "stop":
		runStop(cmdArgs, globals)
	case "reset":
		runReset(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

// initLogging routes slog to stderr so command output on stdout stays
// machine-parseable in --json mode.
func initLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newService loads configuration and assembles the per-process migration
// service. Every command goes through here, so the middleware is built
// exactly once per invocation.
func newService(globals GlobalFlags) *bootstrap.Service {
	cfg, err := config.Load(globals.ConfigPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load Scout configuration",
			err.Error(),
			"Check ~/.scout/config.yaml for syntax errors",
			err,
		), globals.JSON)
	}

	svc, err := bootstrap.NewService(cfg, slog.Default())
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot initialize Scout",
			err.Error(),
			"This is a bug. Please report it at github.com/kraklabs/scout/issues",
			err,
		), globals.JSON)
	}
	return svc
}
