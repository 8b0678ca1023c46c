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

func newTestEvaluator() *Evaluator {
	return NewEvaluator(releases.NewDefaultParser())
}

func permissiveProfile() *models.QualityProfile {
	return &models.QualityProfile{
		ID:   1,
		Name: "any",
		Qualities: []string{
			"2160p WEBDL", "2160p BLURAY",
			"1080p WEBDL", "1080p BLURAY", "1080p WEBRIP", "1080p HDTV",
			"720p WEBDL", "720p HDTV",
		},
	}
}

func segmentedEvent(segments ...string) *models.Event {
	airDate := time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)
	return &models.Event{
		ID:                1,
		Title:             "UFC 300",
		Sport:             models.SportMMA,
		AirDate:           &airDate,
		Monitored:         true,
		MonitoredSegments: segments,
	}
}

func TestEvaluateQualityWeights(t *testing.T) {
	t.Parallel()

	ev := newTestEvaluator()

	tests := []struct {
		title string
		score int
	}{
		{"UFC.300.Main.Card.2160p.WEB-DL.h265-GRP", 250},
		{"UFC.300.Main.Card.1080p.BluRay.x264-GRP", 160},
		{"UFC.300.Main.Card.1080p.WEB-DL.h264-GRP", 150},
		{"UFC.300.Main.Card.1080p.WEBRip.x264-GRP", 140},
		{"UFC.300.Main.Card.720p.HDTV.x264-GRP", 70},
	}

	for _, tc := range tests {
		eval := &Evaluation{Release: Release{Title: tc.title}, Approved: true, Segment: "Main Card"}
		ev.Evaluate(eval, permissiveProfile(), nil, segmentedEvent(), true)
		assert.Equal(t, tc.score, eval.QualityScore, tc.title)
	}
}

func TestEvaluateTotalScoreIsSumOfComponents(t *testing.T) {
	t.Parallel()

	eval := &Evaluation{QualityScore: 150, FormatScore: 25, PreferredScore: 10}
	assert.Equal(t, 185, eval.TotalScore())
}

func TestEvaluateDisallowedQuality(t *testing.T) {
	t.Parallel()

	ev := newTestEvaluator()
	profile := &models.QualityProfile{ID: 1, Name: "hd-only", Qualities: []string{"1080p WEBDL"}}

	eval := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.720p.HDTV.x264-GRP"}, Approved: true, Segment: "Main Card"}
	ev.Evaluate(eval, profile, nil, segmentedEvent(), true)

	assert.False(t, eval.Approved)
	require.NotEmpty(t, eval.Rejections)
	assert.Contains(t, eval.Rejections[0], "not allowed by profile")
}

func TestEvaluateCustomFormats(t *testing.T) {
	t.Parallel()

	ev := newTestEvaluator()

	formats := []*models.CustomFormat{
		{
			ID:   1,
			Name: "web 1080p",
			Specifications: []models.Specification{
				{Kind: models.SpecResolution, Value: "1080p"},
				{Kind: models.SpecSource, Value: "WEBDL"},
			},
		},
		{
			ID:   2,
			Name: "no remux",
			Specifications: []models.Specification{
				{Kind: models.SpecTitlePattern, Value: `remux`, Negate: true},
			},
		},
		{
			ID:             3,
			Name:           "empty never matches",
			Specifications: nil,
		},
		{
			ID:   4,
			Name: "scene group",
			Specifications: []models.Specification{
				{Kind: models.SpecGroupPattern, Value: `^grp$`},
			},
		},
	}

	profile := permissiveProfile()
	profile.FormatScores = map[int]int{1: 25, 2: 5, 3: 100, 4: 10}

	eval := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.1080p.WEB-DL.h264-GRP"}, Approved: true, Segment: "Main Card"}
	ev.Evaluate(eval, profile, formats, segmentedEvent(), true)

	// Formats 1, 2, and 4 match; the empty specification set never does.
	assert.Equal(t, 40, eval.FormatScore)
	assert.True(t, eval.Approved)
}

func TestEvaluateCustomFormatAndSemantics(t *testing.T) {
	t.Parallel()

	ev := newTestEvaluator()

	formats := []*models.CustomFormat{
		{
			ID:   1,
			Name: "2160p webdl",
			Specifications: []models.Specification{
				{Kind: models.SpecResolution, Value: "2160p"},
				{Kind: models.SpecSource, Value: "WEBDL"},
			},
		},
	}
	profile := permissiveProfile()
	profile.FormatScores = map[int]int{1: 50}

	// Resolution matches but the source does not, so the AND fails.
	eval := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.2160p.BluRay.h265-GRP"}, Approved: true, Segment: "Main Card"}
	ev.Evaluate(eval, profile, formats, segmentedEvent(), true)
	assert.Zero(t, eval.FormatScore)
}

func TestEvaluateSizeRangeSpecification(t *testing.T) {
	t.Parallel()

	ev := newTestEvaluator()

	formats := []*models.CustomFormat{
		{
			ID:   1,
			Name: "reasonable size",
			Specifications: []models.Specification{
				{Kind: models.SpecSizeRange, MinSize: 1 << 30, MaxSize: 20 << 30},
			},
		},
	}
	profile := permissiveProfile()
	profile.FormatScores = map[int]int{1: 15}

	inRange := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.1080p.WEB-DL.h264-GRP", Size: 5 << 30}, Approved: true, Segment: "Main Card"}
	ev.Evaluate(inRange, profile, formats, segmentedEvent(), true)
	assert.Equal(t, 15, inRange.FormatScore)

	tooSmall := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.1080p.WEB-DL.h264-GRP", Size: 100 << 20}, Approved: true, Segment: "Main Card"}
	ev.Evaluate(tooSmall, profile, formats, segmentedEvent(), true)
	assert.Zero(t, tooSmall.FormatScore)
}

func TestEvaluateMinFormatScore(t *testing.T) {
	t.Parallel()

	ev := newTestEvaluator()
	profile := permissiveProfile()
	profile.MinFormatScore = 10

	eval := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.1080p.WEB-DL.h264-GRP"}, Approved: true, Segment: "Main Card"}
	ev.Evaluate(eval, profile, nil, segmentedEvent(), true)

	assert.False(t, eval.Approved)
	require.NotEmpty(t, eval.Rejections)
	assert.Contains(t, eval.Rejections[0], "below profile minimum")
}

func TestEvaluateSegmentPolicy(t *testing.T) {
	t.Parallel()

	ev := newTestEvaluator()
	profile := permissiveProfile()

	// Full-event release while segments are required.
	full := &Evaluation{Release: Release{Title: "UFC.300.1080p.WEB-DL.h264-GRP"}, Approved: true}
	ev.Evaluate(full, profile, nil, segmentedEvent(), true)
	assert.False(t, full.Approved)
	assert.Contains(t, full.SegmentRejection, "multi-part segments are required")

	// Segment release while multi-part is disabled.
	seg := &Evaluation{Release: Release{Title: "UFC.300.Prelims.1080p.WEB-DL.h264-GRP"}, Approved: true, Segment: "Prelims"}
	ev.Evaluate(seg, profile, nil, segmentedEvent(), false)
	assert.False(t, seg.Approved)
	assert.Contains(t, seg.SegmentRejection, "multi-part segments are disabled")

	// Detected segment not in the monitored list.
	unmonitored := &Evaluation{Release: Release{Title: "UFC.300.Early.Prelims.1080p.WEB-DL.h264-GRP"}, Approved: true, Segment: "Early Prelims"}
	ev.Evaluate(unmonitored, profile, nil, segmentedEvent("Main Card", "Prelims"), true)
	assert.False(t, unmonitored.Approved)
	assert.Contains(t, unmonitored.SegmentRejection, `segment "Early Prelims" not monitored`)

	// Monitored segment passes with no rejections.
	monitored := &Evaluation{Release: Release{Title: "UFC.300.Main.Card.1080p.WEB-DL.h264-GRP"}, Approved: true, Segment: "Main Card"}
	ev.Evaluate(monitored, profile, nil, segmentedEvent("Main Card", "Prelims"), true)
	assert.True(t, monitored.Approved)
	assert.Empty(t, monitored.SegmentRejection)
}
