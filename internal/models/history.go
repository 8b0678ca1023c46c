// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/autobrr/sportarr/internal/dbinterface"
)

var ErrHistoryEntryNotFound = errors.New("history entry not found")

// HistoryEntry records a grab. When an upgrade replaces an earlier grab the
// earlier entries are marked superseded rather than deleted.
type HistoryEntry struct {
	ID           int       `json:"id"`
	EventID      int       `json:"eventId"`
	Segment      string    `json:"segment,omitempty"`
	ReleaseTitle string    `json:"releaseTitle"`
	Indexer      string    `json:"indexer,omitempty"`
	InfoHash     string    `json:"infoHash,omitempty"`
	TotalScore   int       `json:"totalScore"`
	Superseded   bool      `json:"superseded"`
	GrabbedAt    time.Time `json:"grabbedAt"`
}

// HistoryStore handles persistence for grab history.
type HistoryStore struct {
	db dbinterface.Querier
}

// NewHistoryStore returns a new HistoryStore backed by db.
func NewHistoryStore(db dbinterface.Querier) *HistoryStore {
	return &HistoryStore{db: db}
}

const historyColumns = `id, event_id, segment, release_title, indexer, info_hash, total_score, superseded, grabbed_at`

func scanHistoryEntry(row interface{ Scan(...any) error }) (*HistoryEntry, error) {
	var h HistoryEntry
	if err := row.Scan(&h.ID, &h.EventID, &h.Segment, &h.ReleaseTitle, &h.Indexer, &h.InfoHash, &h.TotalScore, &h.Superseded, &h.GrabbedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// Add records a grab and marks all earlier entries for the same slot
// superseded so exactly one current entry exists per (event, segment).
func (s *HistoryStore) Add(ctx context.Context, h *HistoryEntry) (*HistoryEntry, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE grab_history
		SET superseded = 1
		WHERE event_id = ? AND segment = ? AND superseded = 0
	`, h.EventID, h.Segment)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO grab_history (event_id, segment, release_title, indexer, info_hash, total_score, superseded)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, h.EventID, h.Segment, h.ReleaseTitle, h.Indexer, h.InfoHash, h.TotalScore)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Get returns the history entry with the given id, or ErrHistoryEntryNotFound.
func (s *HistoryStore) Get(ctx context.Context, id int) (*HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM grab_history
		WHERE id = ?
	`, id)

	h, err := scanHistoryEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHistoryEntryNotFound
		}
		return nil, err
	}
	return h, nil
}

// Current returns the non-superseded entry for a slot, or
// ErrHistoryEntryNotFound when nothing was ever grabbed.
func (s *HistoryStore) Current(ctx context.Context, eventID int, segment string) (*HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM grab_history
		WHERE event_id = ? AND segment = ? AND superseded = 0
		ORDER BY grabbed_at DESC, id DESC
		LIMIT 1
	`, eventID, segment)

	h, err := scanHistoryEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHistoryEntryNotFound
		}
		return nil, err
	}
	return h, nil
}

// ListByEvent returns all history entries for an event, newest first.
func (s *HistoryStore) ListByEvent(ctx context.Context, eventID int) ([]*HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM grab_history
		WHERE event_id = ?
		ORDER BY grabbed_at DESC, id DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		h, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
