// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package container adapts the Docker CLI to the narrow Runtime interface
// Scout consumes: does the vector-store container exist, stop it, start it.
//
// The adapter deliberately exposes nothing about images, volumes, or
// compose files. Mount layout is the start-up subsystem's policy; the
// migration middleware only needs to guarantee no writer is alive while
// collections move.
package container
