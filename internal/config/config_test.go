// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := New(dir)
	require.NoError(t, err)

	configPath := filepath.Join(dir, "config.toml")
	_, err = os.Stat(configPath)
	require.NoError(t, err, "expected config.toml to be created")

	assert.Equal(t, 8484, cfg.Config.Port)
	assert.Equal(t, "INFO", cfg.Config.LogLevel)
	assert.Equal(t, 15, cfg.Config.RssSyncInterval)
	assert.True(t, cfg.Config.EnableMultiPartEpisodes)
	assert.NotEmpty(t, cfg.Config.SessionSecret)
}

func TestNewReadsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `host = "0.0.0.0"
port = 9090
logLevel = "DEBUG"
sessionSecret = "test-secret"
rssSyncInterval = 45
enableMultiPartEpisodes = false
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Config.Host)
	assert.Equal(t, 9090, cfg.Config.Port)
	assert.Equal(t, "DEBUG", cfg.Config.LogLevel)
	assert.Equal(t, 45, cfg.Config.RssSyncInterval)
	assert.False(t, cfg.Config.EnableMultiPartEpisodes)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `port = 9090
sessionSecret = "test-secret"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	t.Setenv("SPORTARR__PORT", "7001")
	t.Setenv("SPORTARR__RSS_SYNC_INTERVAL", "60")

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Config.Port)
	assert.Equal(t, 60, cfg.Config.RssSyncInterval)
}

func TestSessionSecretFromFile(t *testing.T) {
	dir := t.TempDir()

	secretPath := filepath.Join(dir, "secret")
	require.NoError(t, os.WriteFile(secretPath, []byte("file-secret\n"), 0600))

	t.Setenv("SPORTARR__SESSION_SECRET_FILE", secretPath)

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, "file-secret", cfg.Config.SessionSecret)
}

func TestGetDatabasePath(t *testing.T) {
	dir := t.TempDir()

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "sportarr.db"), cfg.GetDatabasePath())
}

func TestGetEncryptionKeyLength(t *testing.T) {
	dir := t.TempDir()

	cfg, err := New(dir)
	require.NoError(t, err)

	key := cfg.GetEncryptionKey()
	assert.Len(t, key, 32)

	cfg.Config.SessionSecret = "short"
	key = cfg.GetEncryptionKey()
	assert.Len(t, key, 32)
}
