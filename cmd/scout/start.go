// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scout/internal/errors"
	"github.com/kraklabs/scout/internal/ui"
)

// runStart executes the 'start' CLI command, bringing up the vector-store
// container. The storage guard runs first: an installation still on the
// legacy shared layout is migrated before the container comes up, so the
// container only ever mounts per-project storage.
func runStart(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	timeout := fs.Duration("timeout", 2*time.Minute, "Total timeout for start and health checks")
	projectPath := fs.String("project", "", "Project path (default: current directory)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scout start [options]

Description:
  Start the Scout vector-store container. This command:
  1. Verifies that Docker is running.
  2. Ensures the storage layout is current (migrating if needed).
  3. Starts the Qdrant container with the project-local volume.
  4. Waits for the store to become healthy.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  scout start
  scout start --timeout 5m
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.Header("Starting Scout Vector Store")

	// 1. Check if docker is installed and daemon is running
	if err := checkDocker(); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	ui.Success("Docker is running")

	svc := newService(globals)

	// 2. Storage guard. This is the outermost CLI entry point, the one
	// place the blocking adapter is allowed.
	if err := svc.Guard.CheckBlocking("start", *projectPath); err != nil {
		errors.FatalError(errors.NewMigrationError(
			"Storage migration failed",
			err.Error(),
			"Re-run 'scout start'; a failed migration is safe to retry",
			err,
		), globals.JSON)
	}
	ui.Success("Storage layout is current")

	// 3. Start the container
	ui.Info("Starting vector-store container...")
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := svc.Runtime.Start(ctx); err != nil {
		errors.FatalError(errors.NewContainerError(
			"Failed to start the vector-store container",
			err.Error(),
			"Check container logs with: docker logs "+svc.Config.ContainerName,
			err,
		), globals.JSON)
	}

	// 4. Health check
	ui.Info("Waiting for the vector store to be ready...")
	if err := waitForHealth("http://localhost:6333/healthz", *timeout); err != nil {
		errors.FatalError(errors.NewContainerError(
			"Vector store health check failed",
			"The store did not become healthy within the timeout",
			"Check container logs with: docker logs "+svc.Config.ContainerName,
			err,
		), globals.JSON)
	}

	ui.Success("Scout vector store is up and running!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  scout status   Check storage status")
}

func checkDocker() error {
	cmd := exec.Command("docker", "info")
	if err := cmd.Run(); err != nil {
		return errors.NewContainerError(
			"Docker is not running",
			"Failed to execute 'docker info'",
			"Make sure Docker Desktop (or Engine) is installed and started",
			err,
		)
	}
	return nil
}

func waitForHealth(url string, timeout time.Duration) error {
	start := time.Now()
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		if time.Since(start) > timeout {
			return fmt.Errorf("timeout waiting for health check")
		}

		resp, err := client.Get(url)
		if err == nil {
			if resp.StatusCode == http.StatusOK {
				resp.Body.Close()
				return nil
			}
			resp.Body.Close()
		}

		time.Sleep(2 * time.Second)
	}
}
