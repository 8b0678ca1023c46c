// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/autobrr/sportarr/internal/dbinterface"
)

var ErrBlocklistEntryNotFound = errors.New("blocklist entry not found")

// BlocklistEntry blocks a release either by info hash or by the
// (title, indexer) pair when no hash is known (usenet).
type BlocklistEntry struct {
	ID           int       `json:"id"`
	EventID      *int      `json:"eventId,omitempty"`
	InfoHash     string    `json:"infoHash,omitempty"`
	ReleaseTitle string    `json:"releaseTitle,omitempty"`
	Indexer      string    `json:"indexer,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate returns a non-nil error if the entry identifies no release.
func (b *BlocklistEntry) Validate() error {
	if b == nil {
		return errors.New("blocklist entry is nil")
	}
	if strings.TrimSpace(b.InfoHash) == "" && strings.TrimSpace(b.ReleaseTitle) == "" {
		return errors.New("blocklist entry requires an info hash or a release title")
	}
	return nil
}

// BlocklistStore handles persistence for the release blocklist.
type BlocklistStore struct {
	db dbinterface.Querier
}

// NewBlocklistStore returns a new BlocklistStore backed by db.
func NewBlocklistStore(db dbinterface.Querier) *BlocklistStore {
	return &BlocklistStore{db: db}
}

// Add inserts a new blocklist entry.
func (s *BlocklistStore) Add(ctx context.Context, b *BlocklistEntry) error {
	if err := b.Validate(); err != nil {
		return err
	}

	var eventID any
	if b.EventID != nil {
		eventID = *b.EventID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocklist (event_id, info_hash, release_title, indexer, reason)
		VALUES (?, ?, ?, ?, ?)
	`, eventID, strings.ToLower(strings.TrimSpace(b.InfoHash)), b.ReleaseTitle, b.Indexer, b.Reason)
	return err
}

// IsBlocked reports whether a release is blocked, matched by info hash when
// available, otherwise by the (title, indexer) pair.
func (s *BlocklistStore) IsBlocked(ctx context.Context, infoHash, releaseTitle, indexer string) (bool, error) {
	hash := strings.ToLower(strings.TrimSpace(infoHash))
	if hash != "" {
		var count int
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM blocklist WHERE info_hash = ?
		`, hash).Scan(&count)
		if err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM blocklist WHERE release_title = ? AND indexer = ? AND release_title != ''
	`, releaseTitle, indexer).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all blocklist entries, newest first.
func (s *BlocklistStore) List(ctx context.Context) ([]*BlocklistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, info_hash, release_title, indexer, reason, created_at
		FROM blocklist
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*BlocklistEntry
	for rows.Next() {
		var b BlocklistEntry
		var eventID *int
		if err := rows.Scan(&b.ID, &eventID, &b.InfoHash, &b.ReleaseTitle, &b.Indexer, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.EventID = eventID
		entries = append(entries, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes a blocklist entry.
func (s *BlocklistStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocklist WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBlocklistEntryNotFound
	}
	return nil
}
