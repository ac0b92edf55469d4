// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package project derives stable project identities from filesystem paths.
//
// A project id is a deterministic hash of the project's canonical path.
// Collections in the shared (legacy) vector store embed this id in their
// names, which is how the migration subsystem associates on-disk
// collections with the project that owns them.
package project
