// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/pkg/releases"
)

func testEvent(id int, title string, sport models.SportCategory, airDate time.Time) *models.Event {
	return &models.Event{
		ID:        id,
		Title:     title,
		Sport:     sport,
		AirDate:   &airDate,
		Monitored: true,
	}
}

func newTestMatcher() *Matcher {
	return NewMatcher(releases.NewDefaultParser())
}

func TestFindMatchAttributesRelease(t *testing.T) {
	t.Parallel()

	m := newTestMatcher()
	events := []*models.Event{
		testEvent(1, "UFC 299", models.SportMMA, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)),
		testEvent(2, "UFC 300", models.SportMMA, time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)),
	}

	rel := Release{Title: "UFC.300.Pereira.vs.Hill.1080p.WEB.h264-GRP"}
	match, ok := m.FindMatch(rel, events)
	require.True(t, ok)
	assert.Equal(t, 2, match.Event.ID)
	assert.GreaterOrEqual(t, match.Confidence, matchConfidenceThreshold)
}

func TestFindMatchWrongEditionNumber(t *testing.T) {
	t.Parallel()

	m := newTestMatcher()
	events := []*models.Event{
		testEvent(1, "UFC 300", models.SportMMA, time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)),
	}

	// The keyword pre-filter passes on "ufc" but the edition number
	// differs, which is a hard rejection regardless of overlap.
	_, ok := m.FindMatch(Release{Title: "UFC.299.Prelims.1080p.WEB.h264-GRP"}, events)
	assert.False(t, ok)
}

func TestFindMatchWrongYear(t *testing.T) {
	t.Parallel()

	m := newTestMatcher()
	events := []*models.Event{
		testEvent(1, "Wrestle Kingdom", models.SportWrestling, time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)),
	}

	_, ok := m.FindMatch(Release{Title: "Wrestle.Kingdom.2024.1080p.WEB.h264-GRP"}, events)
	assert.False(t, ok)
}

func TestFindMatchWrongCompetingSide(t *testing.T) {
	t.Parallel()

	m := newTestMatcher()
	events := []*models.Event{
		testEvent(1, "Boxing Fury vs Usyk", models.SportBoxing, time.Date(2026, 5, 18, 0, 0, 0, 0, time.UTC)),
	}

	match, ok := m.FindMatch(Release{Title: "Boxing.2026.05.18.Fury.vs.Usyk.1080p.WEB-GRP"}, events)
	require.True(t, ok)
	assert.Equal(t, 1, match.Event.ID)

	// Same promotion, wrong opponent.
	_, ok = m.FindMatch(Release{Title: "Boxing.2026.05.18.Fury.vs.Joshua.1080p.WEB-GRP"}, events)
	assert.False(t, ok)
}

func TestFindMatchNormalizesDiacritics(t *testing.T) {
	t.Parallel()

	m := newTestMatcher()
	events := []*models.Event{
		testEvent(1, "UFC 285 Ngannou vs Gané", models.SportMMA, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)),
	}

	// Release groups spell accented names in plain ASCII.
	match, ok := m.FindMatch(Release{Title: "UFC.285.Ngannou.vs.Gane.2026.1080p.WEB.h264-GRP"}, events)
	require.True(t, ok)
	assert.Equal(t, 1, match.Event.ID)
}

func TestFindMatchIgnoresNonVideoContent(t *testing.T) {
	t.Parallel()

	m := newTestMatcher()
	events := []*models.Event{
		testEvent(1, "UFC 300", models.SportMMA, time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)),
	}

	_, ok := m.FindMatch(Release{Title: "UFC.300.Official.Soundtrack.FLAC-GRP"}, events)
	assert.False(t, ok)
}

func TestFindMatchKeywordPrefilter(t *testing.T) {
	t.Parallel()

	m := newTestMatcher()
	events := []*models.Event{
		testEvent(1, "UFC 300", models.SportMMA, time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)),
	}

	// No keyword overlap at all never reaches validation.
	_, ok := m.FindMatch(Release{Title: "NBA.Finals.Game.7.1080p.WEB.h264-GRP"}, events)
	assert.False(t, ok)
}

func TestEventKeywordsStripNoiseWords(t *testing.T) {
	t.Parallel()

	keywords := eventKeywords("The UFC 300 at Las Vegas: Pereira vs Hill")
	assert.Equal(t, []string{"ufc", "300", "las", "vegas", "pereira", "hill"}, keywords)
}

func TestVersusSides(t *testing.T) {
	t.Parallel()

	left, right, ok := versusSides("UFC 300 Pereira vs Hill")
	require.True(t, ok)
	assert.Equal(t, "pereira", left)
	assert.Equal(t, "hill", right)

	left, right, ok = versusSides("Boxing Fury v Usyk")
	require.True(t, ok)
	assert.Equal(t, "fury", left)
	assert.Equal(t, "usyk", right)

	_, _, ok = versusSides("Formula 1 Monaco GP")
	assert.False(t, ok)
}
