// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/models"
)

type EventsHandler struct {
	eventStore *models.EventStore
}

func NewEventsHandler(eventStore *models.EventStore) *EventsHandler {
	return &EventsHandler{eventStore: eventStore}
}

// ListEvents returns every tracked event.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list events")
		RespondError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	RespondJSON(w, http.StatusOK, events)
}

// GetEvent returns a single event by ID.
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := ParseIntParam(w, r, "eventID", "event ID")
	if !ok {
		return
	}

	event, err := h.eventStore.Get(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			RespondError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Error().Err(err).Int("eventID", eventID).Msg("Failed to get event")
		RespondError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}

	RespondJSON(w, http.StatusOK, event)
}
