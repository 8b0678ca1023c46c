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

var ErrReleaseProfileNotFound = errors.New("release profile not found")

// ReleaseProfile filters releases by keyword and awards scores for preferred
// terms. A nil IndexerID applies the profile to all indexers.
type ReleaseProfile struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	// Required terms must all appear in the release title.
	Required []string `json:"required"`
	// Ignored terms reject the release when any appears in the title.
	Ignored []string `json:"ignored"`
	// Preferred maps terms to score adjustments. Matching terms add their
	// score to the release, positive or negative.
	Preferred map[string]int `json:"preferred"`
	IndexerID *int           `json:"indexerId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Validate returns a non-nil error if the profile is missing required data.
func (p *ReleaseProfile) Validate() error {
	if p == nil {
		return errors.New("release profile is nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("release profile name is required")
	}
	if len(p.Required) == 0 && len(p.Ignored) == 0 && len(p.Preferred) == 0 {
		return errors.New("release profile must define at least one term")
	}
	return nil
}

// AppliesTo reports whether the profile applies to the given indexer.
func (p *ReleaseProfile) AppliesTo(indexerID int) bool {
	return p.IndexerID == nil || *p.IndexerID == indexerID
}

// ReleaseProfileStore handles persistence for release profiles.
type ReleaseProfileStore struct {
	db dbinterface.Querier
}

// NewReleaseProfileStore returns a new ReleaseProfileStore backed by db.
func NewReleaseProfileStore(db dbinterface.Querier) *ReleaseProfileStore {
	return &ReleaseProfileStore{db: db}
}

const releaseProfileColumns = `id, name, enabled, required, ignored, preferred, indexer_id, created_at, updated_at`

func scanReleaseProfile(row interface{ Scan(...any) error }) (*ReleaseProfile, error) {
	var p ReleaseProfile
	var requiredJSON, ignoredJSON, preferredJSON string
	var indexerID sql.NullInt64

	if err := row.Scan(&p.ID, &p.Name, &p.Enabled, &requiredJSON, &ignoredJSON, &preferredJSON, &indexerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(requiredJSON), &p.Required); err != nil {
		return nil, fmt.Errorf("unmarshal required: %w", err)
	}
	if err := json.Unmarshal([]byte(ignoredJSON), &p.Ignored); err != nil {
		return nil, fmt.Errorf("unmarshal ignored: %w", err)
	}
	if err := json.Unmarshal([]byte(preferredJSON), &p.Preferred); err != nil {
		return nil, fmt.Errorf("unmarshal preferred: %w", err)
	}
	if p.Required == nil {
		p.Required = []string{}
	}
	if p.Ignored == nil {
		p.Ignored = []string{}
	}
	if p.Preferred == nil {
		p.Preferred = map[string]int{}
	}
	if indexerID.Valid {
		id := int(indexerID.Int64)
		p.IndexerID = &id
	}
	return &p, nil
}

// List returns all release profiles ordered by name.
func (s *ReleaseProfileStore) List(ctx context.Context) ([]*ReleaseProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+releaseProfileColumns+`
		FROM release_profiles
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReleaseProfiles(rows)
}

// ListEnabled returns all enabled release profiles.
func (s *ReleaseProfileStore) ListEnabled(ctx context.Context) ([]*ReleaseProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+releaseProfileColumns+`
		FROM release_profiles
		WHERE enabled = 1
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReleaseProfiles(rows)
}

func collectReleaseProfiles(rows *sql.Rows) ([]*ReleaseProfile, error) {
	var profiles []*ReleaseProfile
	for rows.Next() {
		p, err := scanReleaseProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Get returns the release profile with the given id, or ErrReleaseProfileNotFound.
func (s *ReleaseProfileStore) Get(ctx context.Context, id int) (*ReleaseProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+releaseProfileColumns+`
		FROM release_profiles
		WHERE id = ?
	`, id)

	p, err := scanReleaseProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReleaseProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a new release profile and returns it with the generated ID.
func (s *ReleaseProfileStore) Create(ctx context.Context, p *ReleaseProfile) (*ReleaseProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	requiredJSON, ignoredJSON, preferredJSON, err := marshalReleaseProfileTerms(p)
	if err != nil {
		return nil, err
	}

	var indexerID any
	if p.IndexerID != nil {
		indexerID = *p.IndexerID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO release_profiles (name, enabled, required, ignored, preferred, indexer_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(p.Name), p.Enabled, requiredJSON, ignoredJSON, preferredJSON, indexerID)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update replaces the mutable fields of an existing release profile.
func (s *ReleaseProfileStore) Update(ctx context.Context, p *ReleaseProfile) (*ReleaseProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	requiredJSON, ignoredJSON, preferredJSON, err := marshalReleaseProfileTerms(p)
	if err != nil {
		return nil, err
	}

	var indexerID any
	if p.IndexerID != nil {
		indexerID = *p.IndexerID
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE release_profiles
		SET name = ?, enabled = ?, required = ?, ignored = ?, preferred = ?, indexer_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(p.Name), p.Enabled, requiredJSON, ignoredJSON, preferredJSON, indexerID, p.ID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

func marshalReleaseProfileTerms(p *ReleaseProfile) (string, string, string, error) {
	requiredJSON, err := json.Marshal(p.Required)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal required: %w", err)
	}
	ignoredJSON, err := json.Marshal(p.Ignored)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal ignored: %w", err)
	}
	preferredJSON, err := json.Marshal(p.Preferred)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal preferred: %w", err)
	}
	return string(requiredJSON), string(ignoredJSON), string(preferredJSON), nil
}

// Delete removes the release profile with the given id.
func (s *ReleaseProfileStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM release_profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReleaseProfileNotFound
	}
	return nil
}
