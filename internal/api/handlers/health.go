// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"time"
)

// SyncStatus reports when the acquisition loop last completed a cycle.
type SyncStatus interface {
	LastSync() time.Time
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	LastSync *time.Time `json:"lastSync,omitempty"`
}

type HealthHandler struct {
	version string
	sync    SyncStatus
}

func NewHealthHandler(version string, sync SyncStatus) *HealthHandler {
	return &HealthHandler{
		version: version,
		sync:    sync,
	}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}
	if h.sync != nil {
		if ts := h.sync.LastSync(); !ts.IsZero() {
			resp.LastSync = &ts
		}
	}
	RespondJSON(w, http.StatusOK, resp)
}
