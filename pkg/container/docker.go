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

package container

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// CommandRunner executes a container-engine CLI command and returns its
// combined output. It exists so tests can substitute a fake engine.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner is the default CommandRunner backed by os/exec.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DockerRuntime implements Runtime by shelling out to the docker CLI.
//
// Stop and Start are retried with exponential backoff: the Docker daemon
// intermittently refuses commands while a container is mid-transition,
// and a short retry window rides those out.
type DockerRuntime struct {
	// Name is the container name, e.g. "scout-qdrant".
	Name string

	run    CommandRunner
	logger *slog.Logger
}

// DockerOption configures a DockerRuntime.
type DockerOption func(*DockerRuntime)

// WithCommandRunner substitutes the command execution function. Used by
// tests to fake the docker CLI.
func WithCommandRunner(run CommandRunner) DockerOption {
	return func(d *DockerRuntime) { d.run = run }
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) DockerOption {
	return func(d *DockerRuntime) { d.logger = logger }
}

// NewDockerRuntime creates a docker-CLI-backed Runtime for the named
// container.
func NewDockerRuntime(name string, opts ...DockerOption) *DockerRuntime {
	d := &DockerRuntime{
		Name:   name,
		run:    execRunner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Exists reports whether a container with the given name exists, running
// or stopped. It lists all containers filtered by exact name.
func (d *DockerRuntime) Exists(ctx context.Context, name string) (bool, error) {
	out, err := d.run(ctx, "docker", "ps", "-a", "--filter", "name=^"+name+"$", "--format", "{{.Names}}")
	if err != nil {
		return false, fmt.Errorf("docker ps: %w", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// Stop stops the container. A container that is already stopped or does
// not exist is treated as success.
func (d *DockerRuntime) Stop(ctx context.Context) error {
	d.logger.Info("container.stop", "name", d.Name)

	op := func() error {
		out, err := d.run(ctx, "docker", "stop", d.Name)
		if err != nil {
			if isNoSuchContainer(out) {
				return nil
			}
			return fmt.Errorf("docker stop %s: %w: %s", d.Name, err, strings.TrimSpace(string(out)))
		}
		return nil
	}

	if err := backoff.Retry(op, d.newBackoff(ctx)); err != nil {
		return err
	}

	d.logger.Info("container.stop.done", "name", d.Name)
	return nil
}

// Start starts the container.
func (d *DockerRuntime) Start(ctx context.Context) error {
	d.logger.Info("container.start", "name", d.Name)

	op := func() error {
		out, err := d.run(ctx, "docker", "start", d.Name)
		if err != nil {
			return fmt.Errorf("docker start %s: %w: %s", d.Name, err, strings.TrimSpace(string(out)))
		}
		return nil
	}

	if err := backoff.Retry(op, d.newBackoff(ctx)); err != nil {
		return err
	}

	d.logger.Info("container.start.done", "name", d.Name)
	return nil
}

func (d *DockerRuntime) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(b, ctx)
}

// isNoSuchContainer detects the daemon's missing-container error text.
func isNoSuchContainer(out []byte) bool {
	return strings.Contains(strings.ToLower(string(out)), "no such container")
}
