// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scout/internal/errors"
	"github.com/kraklabs/scout/internal/ui"
)

// runStop executes the 'stop' CLI command, stopping the vector-store
// container. All data is preserved.
func runStop(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scout stop [options]

Description:
  Stop the Scout vector-store container. All indexed data is preserved;
  to also remove local data, use 'scout reset --yes' instead.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  scout stop
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.Header("Stopping Scout Vector Store")

	if err := checkDocker(); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	svc := newService(globals)

	ui.Info("Stopping container...")
	if err := svc.Runtime.Stop(context.Background()); err != nil {
		errors.FatalError(errors.NewContainerError(
			"Failed to stop the vector-store container",
			err.Error(),
			"Check Docker logs for details",
			err,
		), globals.JSON)
	}

	ui.Success("Scout vector store stopped")
}
