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

import "context"

// Runtime is the narrow view of the container engine the rest of Scout
// consumes. How the vector-store container is built and which volumes it
// mounts is owned by the start-up subsystem; everything else only needs
// to know whether the container exists and how to stop or start it.
type Runtime interface {
	// Exists reports whether a container with the given name exists,
	// running or not.
	Exists(ctx context.Context, name string) (bool, error)

	// Stop stops the vector-store container. Stopping a container that
	// is not running is not an error.
	Stop(ctx context.Context) error

	// Start starts the vector-store container.
	Start(ctx context.Context) error
}
