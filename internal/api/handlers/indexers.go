// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/models"
)

type IndexersHandler struct {
	indexerStore *models.IndexerStore
}

func NewIndexersHandler(indexerStore *models.IndexerStore) *IndexersHandler {
	return &IndexersHandler{indexerStore: indexerStore}
}

// ListIndexers returns every configured indexer. API keys are stored
// encrypted and never serialized.
func (h *IndexersHandler) ListIndexers(w http.ResponseWriter, r *http.Request) {
	indexers, err := h.indexerStore.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list indexers")
		RespondError(w, http.StatusInternalServerError, "Failed to list indexers")
		return
	}

	RespondJSON(w, http.StatusOK, indexers)
}
