// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/sportarr/internal/models"
)

func TestDetectPartOrdering(t *testing.T) {
	t.Parallel()

	// "Early Prelims" must never classify as "Prelims", across every
	// separator variant.
	titles := []string{
		"UFC 300 Early Prelims 1080p WEB h264-GRP",
		"UFC.300.Early.Prelims.1080p.WEB.h264-GRP",
		"UFC_300_Early_Prelims_1080p_WEB_h264-GRP",
		"UFC-300-Early-Prelims-1080p-WEB-h264-GRP",
		"ufc.300.early.prelims.1080p.web.h264-grp.mkv",
	}
	for _, title := range titles {
		part, ok := DetectPart(title, models.SportMMA)
		require.True(t, ok, title)
		assert.Equal(t, "Early Prelims", part.Name, title)
		assert.Equal(t, 1, part.Number, title)
	}
}

func TestDetectPartSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title   string
		name    string
		number  int
		matched bool
	}{
		{"UFC.300.Prelims.720p.HDTV.x264-GRP", "Prelims", 2, true},
		{"UFC.300.Prelim.720p.HDTV.x264-GRP", "Prelims", 2, true},
		{"UFC.300.Main.Card.2160p.WEB-DL.h265-GRP", "Main Card", 3, true},
		{"UFC.300.Post.Show.1080p.WEB.h264-GRP", "Post Show", 4, true},
		{"UFC.300.Post.Fight.Show.1080p.WEB.h264-GRP", "Post Show", 4, true},
		{"UFC.300.1080p.WEB.h264-GRP", "", 0, false},
		{"Boxing.Fury.vs.Usyk.Main.Card.1080p.WEB-GRP", "Main Card", 3, true},
	}

	for _, tc := range tests {
		part, ok := DetectPart(tc.title, models.SportMMA)
		assert.Equal(t, tc.matched, ok, tc.title)
		if tc.matched {
			assert.Equal(t, tc.name, part.Name, tc.title)
			assert.Equal(t, tc.number, part.Number, tc.title)
		}
	}
}

func TestDetectPartNonSegmentedSport(t *testing.T) {
	t.Parallel()

	// A qualifying session is its own event, not a segment, even when a
	// segment pattern coincidentally appears in the title.
	_, ok := DetectPart("Formula.1.2026.Monaco.GP.Main.Card.1080p.SkyF1-GRP", models.SportMotorsport)
	assert.False(t, ok)

	_, ok = DetectPart("NFL.2026.Week.1.Prelims.720p.WEB-GRP", models.SportFootball)
	assert.False(t, ok)
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UFC 300 Early Prelims 1080p", cleanTitle("UFC.300.Early_Prelims-1080p.mkv"))
	assert.Equal(t, "UFC 300", cleanTitle("  UFC..300  "))
	// Only known media extensions are stripped.
	assert.Equal(t, "UFC 300 x264", cleanTitle("UFC.300.x264"))
}
