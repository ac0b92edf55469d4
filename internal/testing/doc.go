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

// Package testing provides test fixtures for the migration subsystem.
//
// The fixtures build the two filesystem shapes migration tests care
// about (a legacy shared storage tree and a project directory) plus a
// fake container runtime, all rooted in t.TempDir so cleanup is
// automatic.
//
// # Quick Start
//
//	func TestMigratesProject(t *testing.T) {
//	    store := scouttest.NewLegacyStore(t)
//	    proj := scouttest.NewProjectDir(t)
//
//	    id := project.SHA256IDGenerator{}.GenerateID(proj)
//	    store.AddCollection(t, "code_"+id, 1000)
//
//	    rt := scouttest.NewFakeRuntime(true)
//	    // wire StateStore/Locator/Executor against store.Root and proj...
//	}
//
// FakeRuntime counts Exists/Stop/Start calls and can be primed to fail,
// which is how the rollback paths are exercised without Docker.
package testing
