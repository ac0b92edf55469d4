// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package migration upgrades Scout installations from the legacy shared
// vector-store volume to the per-project local layout.
//
// There is no "migrate now" command. Every storage-touching operation
// calls Guard.Check (or the Middleware directly) before reading or
// writing vector-store data; the first such call on an old installation
// performs the migration transparently and the rest short-circuit on the
// session cache.
//
// The subsystem is built from small pieces, leaves first:
//
//   - StateStore: durable record of what has already been migrated
//     (~/.scout/migration.json, full-file overwrite on every mutation).
//   - Locator: finds legacy collections belonging to a project by the
//     project id embedded in collection names.
//   - Executor: backup, atomic move, size verification, backup-based
//     rollback on failure.
//   - Middleware: the single entry point. Session-caches successful
//     (operation, project) checks and serializes all migration work
//     behind one coarse lock.
//   - Guard: the call-site adapter is explicit, not woven in; callers
//     invoke Check before the real work.
//
// While a check or migration is in flight, the state file and both
// collection directories are exclusively owned by this package. No other
// component may touch them concurrently; that is a contract the rest of
// the system honors.
package migration
