// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package acquisition implements the release acquisition and matching
// engine: the periodic discovery loop, title-to-event matching with segment
// detection, quality and custom-format scoring, the admission decision
// chain, and the short-lived result cache.
package acquisition

import (
	"time"

	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/internal/services/torznab"
)

// Release holds the indexer-reported facts for one candidate. Immutable
// once fetched; everything derived lives on Evaluation.
type Release struct {
	Title       string
	GUID        string
	DownloadURL string
	Indexer     string
	IndexerID   int
	Protocol    models.IndexerProtocol
	InfoHash    string
	Size        int64
	PublishDate time.Time
	Seeders     int
	Peers       int
}

func releaseFromResult(res torznab.Result, indexer *models.Indexer) Release {
	return Release{
		Title:       res.Title,
		GUID:        res.GUID,
		DownloadURL: res.Link,
		Indexer:     res.Indexer,
		IndexerID:   indexer.ID,
		Protocol:    indexer.Protocol,
		InfoHash:    res.InfoHash,
		Size:        res.Size,
		PublishDate: res.PublishDate,
		Seeders:     res.Seeders,
		Peers:       res.Peers,
	}
}

// Evaluation is a Release scored against one monitored event. Recomputed
// on every match; only the raw Release part survives caching.
type Evaluation struct {
	Release Release

	EventID        int
	Confidence     int
	Segment        string
	PartNumber     int
	Quality        string
	QualityScore   int
	FormatScore    int
	PreferredScore int
	Approved       bool
	Rejections     []string

	// SegmentRejection mirrors the multi-part policy or segment monitoring
	// rejection, if one was recorded. The decision chain checks it before
	// touching queue state.
	SegmentRejection string
}

// TotalScore is always the sum of the three score components.
func (e *Evaluation) TotalScore() int {
	return e.QualityScore + e.FormatScore + e.PreferredScore
}

// Reject appends a rejection reason and clears approval.
func (e *Evaluation) Reject(reason string) {
	e.Approved = false
	e.Rejections = append(e.Rejections, reason)
}

// resetToNeutral strips every event-specific field so a cached release can
// be re-evaluated against any event without leaking a prior decision.
func (e *Evaluation) resetToNeutral() {
	e.EventID = 0
	e.Confidence = 0
	e.Segment = ""
	e.PartNumber = 0
	e.Quality = ""
	e.QualityScore = 0
	e.FormatScore = 0
	e.PreferredScore = 0
	e.Approved = true
	e.Rejections = nil
	e.SegmentRejection = ""
}
