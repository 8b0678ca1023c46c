// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigSyncInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		minutes int
		want    time.Duration
	}{
		{name: "below minimum clamps up", minutes: 1, want: 10 * time.Minute},
		{name: "zero clamps up", minutes: 0, want: 10 * time.Minute},
		{name: "within range", minutes: 30, want: 30 * time.Minute},
		{name: "above maximum clamps down", minutes: 600, want: 120 * time.Minute},
		{name: "boundary minimum", minutes: 10, want: 10 * time.Minute},
		{name: "boundary maximum", minutes: 120, want: 120 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{RssSyncInterval: tt.minutes}
			assert.Equal(t, tt.want, cfg.SyncInterval())
		})
	}
}

func TestConfigReleaseAgeCutoff(t *testing.T) {
	t.Parallel()

	t.Run("age limit only", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{RssReleaseAgeLimit: 7}
		assert.Equal(t, 7*24*time.Hour, cfg.ReleaseAgeCutoff(0))
	})

	t.Run("indexer retention tightens cutoff", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{RssReleaseAgeLimit: 30}
		assert.Equal(t, 2*24*time.Hour, cfg.ReleaseAgeCutoff(2))
	})

	t.Run("looser retention does not widen cutoff", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{RssReleaseAgeLimit: 3}
		assert.Equal(t, 3*24*time.Hour, cfg.ReleaseAgeCutoff(90))
	})

	t.Run("global retention used when indexer has none", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{RssReleaseAgeLimit: 30, IndexerRetention: 5}
		assert.Equal(t, 5*24*time.Hour, cfg.ReleaseAgeCutoff(0))
	})

	t.Run("everything disabled means unbounded", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{}
		assert.Equal(t, time.Duration(0), cfg.ReleaseAgeCutoff(0))
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, 15*time.Minute, cfg.SearchCacheTTL())
	assert.Equal(t, 2*time.Second, cfg.GrabDelay())

	cfg = &Config{SearchCacheTTLMinutes: 60, GrabDelaySeconds: 10}
	assert.Equal(t, time.Hour, cfg.SearchCacheTTL())
	assert.Equal(t, 10*time.Second, cfg.GrabDelay())
}
