// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvaluations() []Evaluation {
	return []Evaluation{
		{
			Release: Release{
				Title:       "UFC.300.Main.Card.1080p.WEB.h264-GRP",
				DownloadURL: "https://indexer.example/dl/1.torrent",
				Indexer:     "sports-indexer",
				Size:        4 << 30,
			},
			EventID:      42,
			Confidence:   95,
			Segment:      "Main Card",
			PartNumber:   3,
			QualityScore: 150,
			FormatScore:  25,
			Approved:     false,
			Rejections:   []string{"existing file already scores 200"},
		},
		{
			Release: Release{
				Title:   "UFC.300.Prelims.720p.HDTV.x264-GRP",
				Indexer: "sports-indexer",
			},
			EventID:  42,
			Approved: false,
		},
	}
}

func TestCacheRoundTripResetsEntityFields(t *testing.T) {
	t.Parallel()

	cache := NewSearchCache(15 * time.Minute)
	defer cache.Close()

	cache.Store("UFC 300", sampleEvaluations())

	got, hit := cache.TryGet("UFC 300", 15*time.Minute)
	require.True(t, hit)
	require.Len(t, got, 2)

	for _, eval := range got {
		assert.True(t, eval.Approved)
		assert.Nil(t, eval.Rejections)
		assert.Zero(t, eval.EventID)
		assert.Zero(t, eval.Confidence)
		assert.Empty(t, eval.Segment)
		assert.Zero(t, eval.QualityScore)
		assert.Zero(t, eval.FormatScore)
		assert.Zero(t, eval.PreferredScore)
		assert.Zero(t, eval.TotalScore())
	}

	// Raw indexer facts survive.
	assert.Equal(t, "UFC.300.Main.Card.1080p.WEB.h264-GRP", got[0].Release.Title)
	assert.Equal(t, "https://indexer.example/dl/1.torrent", got[0].Release.DownloadURL)
	assert.Equal(t, int64(4<<30), got[0].Release.Size)
}

func TestCacheKeyNormalization(t *testing.T) {
	t.Parallel()

	cache := NewSearchCache(15 * time.Minute)
	defer cache.Close()

	cache.Store("  UFC 300  ", sampleEvaluations())

	_, hit := cache.TryGet("ufc 300", 15*time.Minute)
	assert.True(t, hit)

	_, hit = cache.TryGet("UFC 300", 15*time.Minute)
	assert.True(t, hit)

	_, hit = cache.TryGet("UFC 299", 15*time.Minute)
	assert.False(t, hit)
}

func TestCacheExpiredEntryIsMissAndDeleted(t *testing.T) {
	t.Parallel()

	cache := NewSearchCache(15 * time.Minute)
	defer cache.Close()

	cache.Store("UFC 300", sampleEvaluations())

	// A zero freshness window treats any stored entry as stale.
	time.Sleep(5 * time.Millisecond)
	_, hit := cache.TryGet("UFC 300", 0)
	assert.False(t, hit)

	// The stale read deleted the entry, so a generous window misses too.
	_, hit = cache.TryGet("UFC 300", time.Hour)
	assert.False(t, hit)
}

func TestCacheInvalidateAndClear(t *testing.T) {
	t.Parallel()

	cache := NewSearchCache(15 * time.Minute)
	defer cache.Close()

	cache.Store("UFC 300", sampleEvaluations())
	cache.Store("UFC 301", sampleEvaluations())

	cache.Invalidate("ufc 300")
	_, hit := cache.TryGet("UFC 300", time.Hour)
	assert.False(t, hit)
	_, hit = cache.TryGet("UFC 301", time.Hour)
	assert.True(t, hit)

	cache.Clear()
	_, hit = cache.TryGet("UFC 301", time.Hour)
	assert.False(t, hit)
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := NewSearchCache(15 * time.Minute)
	defer cache.Close()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				cache.Store("UFC 300", sampleEvaluations())
				cache.TryGet("UFC 300", 15*time.Minute)
				cache.Invalidate("UFC 300")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
