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

var ErrQueueItemNotFound = errors.New("queue item not found")

// QueueStatus is the lifecycle state of a queue item.
type QueueStatus string

const (
	QueueStatusQueued      QueueStatus = "queued"
	QueueStatusDownloading QueueStatus = "downloading"
	QueueStatusCompleted   QueueStatus = "completed"
	QueueStatusImporting   QueueStatus = "importing"
	QueueStatusImported    QueueStatus = "imported"
	QueueStatusFailed      QueueStatus = "failed"
	QueueStatusCancelled   QueueStatus = "cancelled"
)

// Active reports whether the item still occupies its (event, segment) slot.
func (s QueueStatus) Active() bool {
	switch s {
	case QueueStatusQueued, QueueStatusDownloading, QueueStatusCompleted, QueueStatusImporting:
		return true
	}
	return false
}

// QueueItem is a grabbed release moving through the download pipeline.
type QueueItem struct {
	ID           int         `json:"id"`
	EventID      int         `json:"eventId"`
	Segment      string      `json:"segment,omitempty"`
	ReleaseTitle string      `json:"releaseTitle"`
	Indexer      string      `json:"indexer,omitempty"`
	DownloadURL  string      `json:"downloadUrl,omitempty"`
	InfoHash     string      `json:"infoHash,omitempty"`
	Status       QueueStatus `json:"status"`
	TotalScore   int         `json:"totalScore"`
	QualityScore int         `json:"qualityScore"`
	FormatScore  int         `json:"formatScore"`
	RetryCount   int         `json:"retryCount"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// QueueStore handles persistence for the download queue.
type QueueStore struct {
	db dbinterface.Querier
}

// NewQueueStore returns a new QueueStore backed by db.
func NewQueueStore(db dbinterface.Querier) *QueueStore {
	return &QueueStore{db: db}
}

const queueColumns = `id, event_id, segment, release_title, indexer, download_url, info_hash, status, total_score, quality_score, format_score, retry_count, error_message, created_at, updated_at`

func scanQueueItem(row interface{ Scan(...any) error }) (*QueueItem, error) {
	var q QueueItem
	if err := row.Scan(&q.ID, &q.EventID, &q.Segment, &q.ReleaseTitle, &q.Indexer, &q.DownloadURL, &q.InfoHash, &q.Status, &q.TotalScore, &q.QualityScore, &q.FormatScore, &q.RetryCount, &q.ErrorMessage, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

// Get returns the queue item with the given id, or ErrQueueItemNotFound.
func (s *QueueStore) Get(ctx context.Context, id int) (*QueueItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_items
		WHERE id = ?
	`, id)

	q, err := scanQueueItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQueueItemNotFound
		}
		return nil, err
	}
	return q, nil
}

// List returns all queue items, newest first.
func (s *QueueStore) List(ctx context.Context) ([]*QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_items
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQueueItems(rows)
}

// ListActive returns queue items still occupying their (event, segment) slot.
func (s *QueueStore) ListActive(ctx context.Context) ([]*QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_items
		WHERE status IN ('queued', 'downloading', 'completed', 'importing')
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQueueItems(rows)
}

// ListActiveForSlot returns active queue items for an event segment.
func (s *QueueStore) ListActiveForSlot(ctx context.Context, eventID int, segment string) ([]*QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_items
		WHERE event_id = ? AND segment = ?
			AND status IN ('queued', 'downloading', 'completed', 'importing')
		ORDER BY created_at ASC, id ASC
	`, eventID, segment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQueueItems(rows)
}

// HasCompletedForSlot reports whether the slot has a grab that finished
// downloading and is waiting on import. Imported items do not count; once a
// file is on disk, upgrades are decided by comparing against its score.
func (s *QueueStore) HasCompletedForSlot(ctx context.Context, eventID int, segment string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM queue_items
		WHERE event_id = ? AND segment = ?
			AND status IN ('completed', 'importing')
	`, eventID, segment).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestForSlot returns the most recent attempt for an event segment
// regardless of status, or ErrQueueItemNotFound when the slot was never
// tried. The retry backoff ladder keys off this row when it is failed.
func (s *QueueStore) LatestForSlot(ctx context.Context, eventID int, segment string) (*QueueItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+queueColumns+`
		FROM queue_items
		WHERE event_id = ? AND segment = ?
		ORDER BY updated_at DESC, id DESC
		LIMIT 1
	`, eventID, segment)

	q, err := scanQueueItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQueueItemNotFound
		}
		return nil, err
	}
	return q, nil
}

func collectQueueItems(rows *sql.Rows) ([]*QueueItem, error) {
	var items []*QueueItem
	for rows.Next() {
		q, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new queue item and returns it with the generated ID.
func (s *QueueStore) Create(ctx context.Context, q *QueueItem) (*QueueItem, error) {
	if q.Status == "" {
		q.Status = QueueStatusQueued
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO queue_items (event_id, segment, release_title, indexer, download_url, info_hash, status, total_score, quality_score, format_score, retry_count, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.EventID, q.Segment, q.ReleaseTitle, q.Indexer, q.DownloadURL, q.InfoHash, q.Status, q.TotalScore, q.QualityScore, q.FormatScore, q.RetryCount, q.ErrorMessage)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// SetStatus transitions a queue item to the given status.
func (s *QueueStore) SetStatus(ctx context.Context, id int, status QueueStatus, errorMessage string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items
		SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, errorMessage, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQueueItemNotFound
	}
	return nil
}

// MarkFailed transitions a queue item to failed and increments its retry count.
func (s *QueueStore) MarkFailed(ctx context.Context, id int, errorMessage string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items
		SET status = 'failed', error_message = ?, retry_count = retry_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, errorMessage, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQueueItemNotFound
	}
	return nil
}

// Delete removes a queue item.
func (s *QueueStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQueueItemNotFound
	}
	return nil
}
