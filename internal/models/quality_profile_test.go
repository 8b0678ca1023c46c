// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityProfileAllowsQuality(t *testing.T) {
	t.Parallel()

	p := &QualityProfile{
		Name:      "HD",
		Qualities: []string{"2160p WEBDL", "1080p BluRay", "1080p WEBDL"},
	}

	assert.True(t, p.AllowsQuality("1080p WEBDL"))
	assert.True(t, p.AllowsQuality("1080p webdl"))
	assert.False(t, p.AllowsQuality("720p HDTV"))
}

func TestQualityProfileStoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := NewQualityProfileStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, &QualityProfile{
		Name:              "HD Upgrades",
		Qualities:         []string{"2160p WEBDL", "1080p WEBDL"},
		UpgradesEnabled:   true,
		UpgradeUntilScore: 300,
		MinFormatScore:    -50,
		FormatScores:      map[int]int{1: 25, 2: -100},
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2160p WEBDL", "1080p WEBDL"}, got.Qualities)
	assert.Equal(t, map[int]int{1: 25, 2: -100}, got.FormatScores)
	assert.Equal(t, 300, got.UpgradeUntilScore)

	_, err = store.Create(ctx, &QualityProfile{
		Name:      "HD Upgrades",
		Qualities: []string{"1080p WEBDL"},
	})
	assert.Error(t, err, "duplicate name rejected")

	_, err = store.Get(ctx, created.ID+1000)
	assert.ErrorIs(t, err, ErrQualityProfileNotFound)
}
