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

// Package bootstrap assembles Scout's migration service at process
// start-up.
//
// The migration middleware used to be reachable through a package-level
// singleton; it is now an explicitly constructed service. Bootstrap is
// the one place that builds it, and everything downstream receives it by
// reference:
//
//	svc, err := bootstrap.NewService(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Guard.CheckBlocking("index", projectPath); err != nil {
//	    // migration failed; the operation must not proceed
//	}
//
// One Service per process preserves the single-instance semantics the
// session cache and the coarse migration lock depend on, without hidden
// global state.
package bootstrap
