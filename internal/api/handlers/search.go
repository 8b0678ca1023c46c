// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/internal/services/acquisition"
)

// ReleaseSearcher runs the acquisition pipeline for one event on demand.
type ReleaseSearcher interface {
	Search(ctx context.Context, eventID int) ([]acquisition.Decision, error)
}

// SearchDecisionResponse is the per-release outcome of a manual search.
type SearchDecisionResponse struct {
	Title      string   `json:"title"`
	Indexer    string   `json:"indexer,omitempty"`
	Protocol   string   `json:"protocol"`
	Size       int64    `json:"size"`
	EventID    int      `json:"eventId,omitempty"`
	Segment    string   `json:"segment,omitempty"`
	Quality    string   `json:"quality,omitempty"`
	TotalScore int      `json:"totalScore"`
	Approved   bool     `json:"approved"`
	Grabbed    bool     `json:"grabbed"`
	Upgrade    bool     `json:"upgrade,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Rejections []string `json:"rejections,omitempty"`
}

type SearchHandler struct {
	searcher ReleaseSearcher
}

func NewSearchHandler(searcher ReleaseSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// TriggerSearch runs a manual search for the given event and reports the
// decision for every candidate release the indexers returned.
func (h *SearchHandler) TriggerSearch(w http.ResponseWriter, r *http.Request) {
	eventID, ok := ParseIntParam(w, r, "eventID", "event ID")
	if !ok {
		return
	}

	decisions, err := h.searcher.Search(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			RespondError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Error().Err(err).Int("eventID", eventID).Msg("Manual search failed")
		RespondError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	resp := make([]SearchDecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		resp = append(resp, newSearchDecisionResponse(d))
	}

	RespondJSON(w, http.StatusOK, resp)
}

func newSearchDecisionResponse(d acquisition.Decision) SearchDecisionResponse {
	out := SearchDecisionResponse{
		Grabbed: d.Grabbed,
		Upgrade: d.Upgrade,
		Reason:  d.Reason,
	}
	if d.Eval != nil {
		out.Title = d.Eval.Release.Title
		out.Indexer = d.Eval.Release.Indexer
		out.Protocol = string(d.Eval.Release.Protocol)
		out.Size = d.Eval.Release.Size
		out.EventID = d.Eval.EventID
		out.Segment = d.Eval.Segment
		out.Quality = d.Eval.Quality
		out.TotalScore = d.Eval.TotalScore()
		out.Approved = d.Eval.Approved
		out.Rejections = d.Eval.Rejections
	}
	return out
}
