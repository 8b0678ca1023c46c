// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import "time"

// RSS sync interval clamp bounds. Anything outside this range either hammers
// the indexers or lets the catalog go stale.
const (
	MinRssSyncInterval = 10 * time.Minute
	MaxRssSyncInterval = 120 * time.Minute
)

// Config represents the application configuration
type Config struct {
	Version       string
	Host          string `toml:"host" mapstructure:"host"`
	Port          int    `toml:"port" mapstructure:"port"`
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	DataDir       string `toml:"dataDir" mapstructure:"dataDir"`
	SessionSecret string `toml:"sessionSecret" mapstructure:"sessionSecret"`

	MetricsEnabled bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost    string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort    int    `toml:"metricsPort" mapstructure:"metricsPort"`

	// RssSyncInterval is the minutes between RSS sync cycles. Clamped to
	// [10, 120] before use.
	RssSyncInterval int `toml:"rssSyncInterval" mapstructure:"rssSyncInterval"`
	// MaxRssReleasesPerIndexer caps the feed size requested per indexer per cycle.
	MaxRssReleasesPerIndexer int `toml:"maxRssReleasesPerIndexer" mapstructure:"maxRssReleasesPerIndexer"`
	// RssReleaseAgeLimit drops feed entries older than this many days.
	RssReleaseAgeLimit int `toml:"rssReleaseAgeLimit" mapstructure:"rssReleaseAgeLimit"`
	// IndexerRetention further tightens the age cutoff per indexer, in days.
	// 0 disables the retention bound.
	IndexerRetention int `toml:"indexerRetention" mapstructure:"indexerRetention"`
	// EnableMultiPartEpisodes turns on segment (part) handling for sports whose
	// broadcasts are split into ordered cards.
	EnableMultiPartEpisodes bool `toml:"enableMultiPartEpisodes" mapstructure:"enableMultiPartEpisodes"`
	// GrabDelaySeconds is the pause inserted between successive grabs so
	// download clients are not saturated.
	GrabDelaySeconds int `toml:"grabDelaySeconds" mapstructure:"grabDelaySeconds"`
	// SearchCacheTTLMinutes controls how long raw indexer results are reused.
	SearchCacheTTLMinutes int `toml:"searchCacheTTLMinutes" mapstructure:"searchCacheTTLMinutes"`
}

// SyncInterval returns the configured RSS sync interval clamped to the safe range.
func (c *Config) SyncInterval() time.Duration {
	d := time.Duration(c.RssSyncInterval) * time.Minute
	if d < MinRssSyncInterval {
		return MinRssSyncInterval
	}
	if d > MaxRssSyncInterval {
		return MaxRssSyncInterval
	}
	return d
}

// ReleaseAgeCutoff returns the effective freshness cutoff: the tighter of the
// RSS age limit and the per-indexer retention window (0 = unbounded).
func (c *Config) ReleaseAgeCutoff(indexerRetentionDays int) time.Duration {
	limit := time.Duration(c.RssReleaseAgeLimit) * 24 * time.Hour

	retention := indexerRetentionDays
	if retention == 0 {
		retention = c.IndexerRetention
	}
	if retention > 0 {
		r := time.Duration(retention) * 24 * time.Hour
		if limit == 0 || r < limit {
			limit = r
		}
	}
	return limit
}

// SearchCacheTTL returns the caller-facing result cache TTL.
func (c *Config) SearchCacheTTL() time.Duration {
	if c.SearchCacheTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.SearchCacheTTLMinutes) * time.Minute
}

// GrabDelay returns the pause between successive grabs within one cycle.
func (c *Config) GrabDelay() time.Duration {
	if c.GrabDelaySeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.GrabDelaySeconds) * time.Second
}
