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

package migration

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// migrationMetrics holds Prometheus metrics for the migration subsystem.
type migrationMetrics struct {
	once sync.Once

	// Container
	containerMigrated prometheus.Counter
	containerFailed   prometheus.Counter

	// Projects
	projectsStarted  prometheus.Counter
	projectsMigrated prometheus.Counter
	projectsFailed   prometheus.Counter

	// Recovery
	rollbacks    prometheus.Counter
	doubleFaults prometheus.Counter

	// Volume / durations
	bytesMoved      prometheus.Counter
	projectDuration prometheus.Histogram

	// Middleware
	checks          prometheus.Counter
	sessionCacheHit prometheus.Counter
}

var migMetrics migrationMetrics

func (m *migrationMetrics) init() {
	m.once.Do(func() {
		m.containerMigrated = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_container_migrated_total", Help: "Container migrations completed"})
		m.containerFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_container_failed_total", Help: "Container migrations failed"})

		m.projectsStarted = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_projects_started_total", Help: "Project migrations started (with collections to move)"})
		m.projectsMigrated = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_projects_migrated_total", Help: "Project migrations completed"})
		m.projectsFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_projects_failed_total", Help: "Project migrations failed"})

		m.rollbacks = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_rollbacks_total", Help: "Backup-based rollbacks completed"})
		m.doubleFaults = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_double_faults_total", Help: "Rollbacks that themselves failed"})

		m.bytesMoved = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_bytes_moved_total", Help: "Collection bytes moved to local storage"})
		m.projectDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scout_migration_project_seconds",
			Help:    "Duration of project migrations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		})

		m.checks = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_checks_total", Help: "EnsureCompatible evaluations against durable state"})
		m.sessionCacheHit = prometheus.NewCounter(prometheus.CounterOpts{Name: "scout_migration_session_cache_hits_total", Help: "Checks short-circuited by the session cache"})

		prometheus.MustRegister(
			m.containerMigrated, m.containerFailed,
			m.projectsStarted, m.projectsMigrated, m.projectsFailed,
			m.rollbacks, m.doubleFaults,
			m.bytesMoved, m.projectDuration,
			m.checks, m.sessionCacheHit,
		)
	})
}

// metrics returns the initialized package metrics.
func metrics() *migrationMetrics {
	migMetrics.init()
	return &migMetrics
}
