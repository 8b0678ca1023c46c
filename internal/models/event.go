// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/sportarr/internal/dbinterface"
)

var ErrEventNotFound = errors.New("event not found")

// SportCategory classifies an event for segment handling. Combat sports are
// broadcast as ordered card segments, everything else is a single broadcast.
type SportCategory string

const (
	SportMMA        SportCategory = "mma"
	SportBoxing     SportCategory = "boxing"
	SportKickboxing SportCategory = "kickboxing"
	SportWrestling  SportCategory = "wrestling"
	SportFootball   SportCategory = "football"
	SportBasketball SportCategory = "basketball"
	SportBaseball   SportCategory = "baseball"
	SportHockey     SportCategory = "hockey"
	SportSoccer     SportCategory = "soccer"
	SportMotorsport SportCategory = "motorsport"
	SportTennis     SportCategory = "tennis"
	SportOther      SportCategory = "other"
)

// Segmented reports whether broadcasts of this sport are split into
// ordered card segments (Early Prelims, Prelims, Main Card, Post Show).
func (s SportCategory) Segmented() bool {
	switch s {
	case SportMMA, SportBoxing, SportKickboxing, SportWrestling:
		return true
	}
	return false
}

// Event is a scheduled sporting event being monitored for releases.
type Event struct {
	ID        int           `json:"id"`
	Title     string        `json:"title"`
	League    string        `json:"league,omitempty"`
	Sport     SportCategory `json:"sport"`
	AirDate   *time.Time    `json:"airDate,omitempty"`
	Monitored bool          `json:"monitored"`
	// MonitoredSegments lists the segment names wanted for this event.
	// Empty means all segments are wanted.
	MonitoredSegments []string  `json:"monitoredSegments"`
	QualityProfileID  *int      `json:"qualityProfileId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Validate returns a non-nil error if the event is missing required data.
func (e *Event) Validate() error {
	if e == nil {
		return errors.New("event is nil")
	}
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("event title is required")
	}
	if strings.TrimSpace(string(e.Sport)) == "" {
		return errors.New("event sport is required")
	}
	return nil
}

// WantsSegment reports whether the given segment is monitored for this event.
// An empty monitored list means all segments are wanted. The empty segment
// (whole broadcast) is always wanted.
func (e *Event) WantsSegment(segment string) bool {
	if segment == "" || len(e.MonitoredSegments) == 0 {
		return true
	}
	for _, s := range e.MonitoredSegments {
		if strings.EqualFold(s, segment) {
			return true
		}
	}
	return false
}

// EventStore handles persistence for events.
type EventStore struct {
	db dbinterface.Querier
}

// NewEventStore returns a new EventStore backed by db.
func NewEventStore(db dbinterface.Querier) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, title, league, sport, air_date, monitored, monitored_segments, quality_profile_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var e Event
	var segmentsJSON string
	var airDate sql.NullTime
	var profileID sql.NullInt64

	if err := row.Scan(&e.ID, &e.Title, &e.League, &e.Sport, &airDate, &e.Monitored, &segmentsJSON, &profileID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(segmentsJSON), &e.MonitoredSegments); err != nil {
		return nil, fmt.Errorf("unmarshal monitored_segments: %w", err)
	}
	if e.MonitoredSegments == nil {
		e.MonitoredSegments = []string{}
	}
	if airDate.Valid {
		e.AirDate = &airDate.Time
	}
	if profileID.Valid {
		id := int(profileID.Int64)
		e.QualityProfileID = &id
	}
	return &e, nil
}

// Get returns the event with the given id, or ErrEventNotFound.
func (s *EventStore) Get(ctx context.Context, id int) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = ?
	`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns all events ordered by air date descending.
func (s *EventStore) List(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY air_date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListMonitored returns all monitored events ordered by air date descending.
func (s *EventStore) ListMonitored(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE monitored = 1
		ORDER BY air_date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*Event, error) {
	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Create inserts a new event and returns it with the generated ID.
func (s *EventStore) Create(ctx context.Context, e *Event) (*Event, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	segmentsJSON, err := json.Marshal(e.MonitoredSegments)
	if err != nil {
		return nil, fmt.Errorf("marshal monitored_segments: %w", err)
	}

	var airDate any
	if e.AirDate != nil {
		airDate = *e.AirDate
	}
	var profileID any
	if e.QualityProfileID != nil {
		profileID = *e.QualityProfileID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (title, league, sport, air_date, monitored, monitored_segments, quality_profile_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(e.Title), strings.TrimSpace(e.League), e.Sport, airDate, e.Monitored, string(segmentsJSON), profileID)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update replaces the mutable fields of an existing event.
func (s *EventStore) Update(ctx context.Context, e *Event) (*Event, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	segmentsJSON, err := json.Marshal(e.MonitoredSegments)
	if err != nil {
		return nil, fmt.Errorf("marshal monitored_segments: %w", err)
	}

	var airDate any
	if e.AirDate != nil {
		airDate = *e.AirDate
	}
	var profileID any
	if e.QualityProfileID != nil {
		profileID = *e.QualityProfileID
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, league = ?, sport = ?, air_date = ?, monitored = ?, monitored_segments = ?, quality_profile_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(e.Title), strings.TrimSpace(e.League), e.Sport, airDate, e.Monitored, string(segmentsJSON), profileID, e.ID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, e.ID)
}

// Delete removes the event with the given id.
func (s *EventStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}
