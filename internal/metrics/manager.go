// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Manager owns the prometheus registry and the engine's instruments.
type Manager struct {
	registry *prometheus.Registry

	ReleasesFetched  *prometheus.CounterVec
	ReleasesGrabbed  prometheus.Counter
	ReleasesUpgraded prometheus.Counter
	ReleasesRejected prometheus.Counter
	SyncCycleSeconds prometheus.Histogram
}

func NewManager() *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		ReleasesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sportarr_releases_fetched_total",
			Help: "Raw releases fetched from indexers",
		}, []string{"indexer"}),
		ReleasesGrabbed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportarr_releases_grabbed_total",
			Help: "Releases sent to a download client",
		}),
		ReleasesUpgraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportarr_releases_upgraded_total",
			Help: "Grabs that replaced an existing file or download",
		}),
		ReleasesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sportarr_releases_rejected_total",
			Help: "Matched releases skipped by the decision engine",
		}),
		SyncCycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sportarr_sync_cycle_seconds",
			Help:    "Duration of one RSS sync cycle",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	registry.MustRegister(
		m.ReleasesFetched,
		m.ReleasesGrabbed,
		m.ReleasesUpgraded,
		m.ReleasesRejected,
		m.SyncCycleSeconds,
	)
	return m
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
