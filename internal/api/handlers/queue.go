// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/models"
)

type QueueHandler struct {
	queueStore *models.QueueStore
}

func NewQueueHandler(queueStore *models.QueueStore) *QueueHandler {
	return &QueueHandler{queueStore: queueStore}
}

// ListQueue returns a read-only snapshot of every queue item, newest first.
func (h *QueueHandler) ListQueue(w http.ResponseWriter, r *http.Request) {
	items, err := h.queueStore.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list queue items")
		RespondError(w, http.StatusInternalServerError, "Failed to list queue items")
		return
	}

	RespondJSON(w, http.StatusOK, items)
}
