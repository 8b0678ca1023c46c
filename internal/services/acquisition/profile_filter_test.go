// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/sportarr/internal/models"
)

func TestApplyReleaseProfilesRequiredKeyword(t *testing.T) {
	t.Parallel()

	profiles := []*models.ReleaseProfile{
		{ID: 1, Name: "english only", Enabled: true, Required: []string{"english"}},
	}

	eval := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.1080p.WEB.h264-GRP"}, Approved: true}
	ApplyReleaseProfiles(eval, profiles)

	assert.False(t, eval.Approved)
	require.Len(t, eval.Rejections, 1)
	assert.Contains(t, eval.Rejections[0], `missing required keyword "english"`)
}

func TestApplyReleaseProfilesIgnoredKeyword(t *testing.T) {
	t.Parallel()

	profiles := []*models.ReleaseProfile{
		{ID: 1, Name: "no cams", Enabled: true, Ignored: []string{"cam", "telesync"}},
	}

	eval := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.CAM.x264-GRP"}, Approved: true}
	ApplyReleaseProfiles(eval, profiles)

	assert.False(t, eval.Approved)
	assert.Contains(t, eval.Rejections[0], `contains ignored keyword "cam"`)
}

func TestApplyReleaseProfilesPreferredScore(t *testing.T) {
	t.Parallel()

	profiles := []*models.ReleaseProfile{
		{
			ID:      1,
			Name:    "preferences",
			Enabled: true,
			Preferred: map[string]int{
				"proper": 10,
				"repack": 5,
				"dts":    -5,
			},
		},
	}

	eval := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.1080p.PROPER.REPACK.WEB-GRP"}, Approved: true, QualityScore: 150}
	ApplyReleaseProfiles(eval, profiles)

	assert.True(t, eval.Approved)
	assert.Equal(t, 15, eval.PreferredScore)
	assert.Equal(t, 165, eval.TotalScore())
}

func TestApplyReleaseProfilesRejectedProfileAddsNoScore(t *testing.T) {
	t.Parallel()

	profiles := []*models.ReleaseProfile{
		{
			ID:        1,
			Name:      "strict",
			Enabled:   true,
			Required:  []string{"bluray"},
			Preferred: map[string]int{"proper": 10},
		},
	}

	eval := &Evaluation{Release: Release{Title: "UFC.300.PROPER.1080p.WEB-GRP"}, Approved: true}
	ApplyReleaseProfiles(eval, profiles)

	assert.False(t, eval.Approved)
	assert.Zero(t, eval.PreferredScore)
}

func TestApplyReleaseProfilesScoping(t *testing.T) {
	t.Parallel()

	indexerID := 7
	profiles := []*models.ReleaseProfile{
		{ID: 1, Name: "disabled", Enabled: false, Ignored: []string{"web"}},
		{ID: 2, Name: "other indexer", Enabled: true, IndexerID: &indexerID, Ignored: []string{"web"}},
	}

	eval := &Evaluation{Release: Release{Title: "UFC.300.1080p.WEB-GRP", IndexerID: 3}, Approved: true}
	ApplyReleaseProfiles(eval, profiles)

	// Disabled profiles and profiles scoped to another indexer do not apply.
	assert.True(t, eval.Approved)
	assert.Empty(t, eval.Rejections)
}
