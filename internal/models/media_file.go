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

var ErrMediaFileNotFound = errors.New("media file not found")

// MediaFile is an imported file on disk for an event segment. The empty
// segment represents the whole broadcast.
type MediaFile struct {
	ID           int       `json:"id"`
	EventID      int       `json:"eventId"`
	Segment      string    `json:"segment,omitempty"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Quality      string    `json:"quality,omitempty"`
	QualityScore int       `json:"qualityScore"`
	FormatScore  int       `json:"formatScore"`
	AddedAt      time.Time `json:"addedAt"`
}

// TotalScore is the combined quality and custom format score used for
// upgrade comparisons against candidate releases.
func (f *MediaFile) TotalScore() int {
	return f.QualityScore + f.FormatScore
}

// MediaFileStore handles persistence for imported media files.
type MediaFileStore struct {
	db dbinterface.Querier
}

// NewMediaFileStore returns a new MediaFileStore backed by db.
func NewMediaFileStore(db dbinterface.Querier) *MediaFileStore {
	return &MediaFileStore{db: db}
}

const mediaFileColumns = `id, event_id, segment, path, size, quality, quality_score, format_score, added_at`

func scanMediaFile(row interface{ Scan(...any) error }) (*MediaFile, error) {
	var f MediaFile
	if err := row.Scan(&f.ID, &f.EventID, &f.Segment, &f.Path, &f.Size, &f.Quality, &f.QualityScore, &f.FormatScore, &f.AddedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByEventSegment returns the file for an event segment, or
// ErrMediaFileNotFound when the segment has no file on disk.
func (s *MediaFileStore) GetByEventSegment(ctx context.Context, eventID int, segment string) (*MediaFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mediaFileColumns+`
		FROM media_files
		WHERE event_id = ? AND segment = ?
	`, eventID, segment)

	f, err := scanMediaFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListByEvent returns all files for an event.
func (s *MediaFileStore) ListByEvent(ctx context.Context, eventID int) ([]*MediaFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mediaFileColumns+`
		FROM media_files
		WHERE event_id = ?
		ORDER BY segment ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*MediaFile
	for rows.Next() {
		f, err := scanMediaFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// Upsert inserts or replaces the file for an event segment.
func (s *MediaFileStore) Upsert(ctx context.Context, f *MediaFile) (*MediaFile, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_files (event_id, segment, path, size, quality, quality_score, format_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id, segment) DO UPDATE SET
			path = excluded.path,
			size = excluded.size,
			quality = excluded.quality,
			quality_score = excluded.quality_score,
			format_score = excluded.format_score,
			added_at = CURRENT_TIMESTAMP
	`, f.EventID, f.Segment, f.Path, f.Size, f.Quality, f.QualityScore, f.FormatScore)
	if err != nil {
		return nil, err
	}
	return s.GetByEventSegment(ctx, f.EventID, f.Segment)
}

// Delete removes the file record with the given id.
func (s *MediaFileStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMediaFileNotFound
	}
	return nil
}
