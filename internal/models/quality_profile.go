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

var ErrQualityProfileNotFound = errors.New("quality profile not found")

// QualityProfile defines which qualities are acceptable for an event and how
// custom formats contribute to release scoring.
type QualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Qualities lists acceptable quality names (e.g. "1080p WEBDL") from
	// most to least preferred. Releases outside this list are rejected.
	Qualities []string `json:"qualities"`
	// UpgradesEnabled allows replacing an existing file when a higher
	// scoring release appears.
	UpgradesEnabled bool `json:"upgradesEnabled"`
	// UpgradeUntilScore stops upgrade grabs once the existing file reaches
	// this total score. Zero means no ceiling.
	UpgradeUntilScore int `json:"upgradeUntilScore"`
	// MinFormatScore rejects releases whose custom format score falls below
	// this floor.
	MinFormatScore int `json:"minFormatScore"`
	// FormatScores maps custom format IDs to the score awarded when the
	// format matches a release.
	FormatScores map[int]int `json:"formatScores"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Validate returns a non-nil error if the profile is missing required data.
func (p *QualityProfile) Validate() error {
	if p == nil {
		return errors.New("quality profile is nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("quality profile name is required")
	}
	if len(p.Qualities) == 0 {
		return errors.New("quality profile must allow at least one quality")
	}
	for i, q := range p.Qualities {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("quality %d is empty", i)
		}
	}
	return nil
}

// AllowsQuality reports whether the named quality is acceptable under this profile.
func (p *QualityProfile) AllowsQuality(name string) bool {
	for _, q := range p.Qualities {
		if strings.EqualFold(q, name) {
			return true
		}
	}
	return false
}

// QualityProfileStore handles persistence for quality profiles.
type QualityProfileStore struct {
	db dbinterface.Querier
}

// NewQualityProfileStore returns a new QualityProfileStore backed by db.
func NewQualityProfileStore(db dbinterface.Querier) *QualityProfileStore {
	return &QualityProfileStore{db: db}
}

func scanQualityProfile(dest *QualityProfile, qualitiesJSON, formatScoresJSON string) error {
	if err := json.Unmarshal([]byte(qualitiesJSON), &dest.Qualities); err != nil {
		return fmt.Errorf("unmarshal qualities: %w", err)
	}
	if err := json.Unmarshal([]byte(formatScoresJSON), &dest.FormatScores); err != nil {
		return fmt.Errorf("unmarshal format_scores: %w", err)
	}
	if dest.Qualities == nil {
		dest.Qualities = []string{}
	}
	if dest.FormatScores == nil {
		dest.FormatScores = map[int]int{}
	}
	return nil
}

const qualityProfileColumns = `id, name, qualities, upgrades_enabled, upgrade_until_score, min_format_score, format_scores, created_at, updated_at`

// List returns all quality profiles ordered by name.
func (s *QualityProfileStore) List(ctx context.Context) ([]*QualityProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+qualityProfileColumns+`
		FROM quality_profiles
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*QualityProfile
	for rows.Next() {
		var p QualityProfile
		var qualitiesJSON, formatScoresJSON string
		if err := rows.Scan(&p.ID, &p.Name, &qualitiesJSON, &p.UpgradesEnabled, &p.UpgradeUntilScore, &p.MinFormatScore, &formatScoresJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := scanQualityProfile(&p, qualitiesJSON, formatScoresJSON); err != nil {
			return nil, fmt.Errorf("quality profile %d: %w", p.ID, err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Get returns the quality profile with the given id, or ErrQualityProfileNotFound.
func (s *QualityProfileStore) Get(ctx context.Context, id int) (*QualityProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+qualityProfileColumns+`
		FROM quality_profiles
		WHERE id = ?
	`, id)

	var p QualityProfile
	var qualitiesJSON, formatScoresJSON string
	if err := row.Scan(&p.ID, &p.Name, &qualitiesJSON, &p.UpgradesEnabled, &p.UpgradeUntilScore, &p.MinFormatScore, &formatScoresJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQualityProfileNotFound
		}
		return nil, err
	}
	if err := scanQualityProfile(&p, qualitiesJSON, formatScoresJSON); err != nil {
		return nil, fmt.Errorf("quality profile %d: %w", p.ID, err)
	}
	return &p, nil
}

// Create inserts a new quality profile and returns it with the generated ID.
func (s *QualityProfileStore) Create(ctx context.Context, p *QualityProfile) (*QualityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	qualitiesJSON, err := json.Marshal(p.Qualities)
	if err != nil {
		return nil, fmt.Errorf("marshal qualities: %w", err)
	}
	formatScoresJSON, err := json.Marshal(p.FormatScores)
	if err != nil {
		return nil, fmt.Errorf("marshal format_scores: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quality_profiles (name, qualities, upgrades_enabled, upgrade_until_score, min_format_score, format_scores)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(p.Name), string(qualitiesJSON), p.UpgradesEnabled, p.UpgradeUntilScore, p.MinFormatScore, string(formatScoresJSON))
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("quality profile %q already exists", p.Name)
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update replaces the mutable fields of an existing quality profile.
func (s *QualityProfileStore) Update(ctx context.Context, p *QualityProfile) (*QualityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	qualitiesJSON, err := json.Marshal(p.Qualities)
	if err != nil {
		return nil, fmt.Errorf("marshal qualities: %w", err)
	}
	formatScoresJSON, err := json.Marshal(p.FormatScores)
	if err != nil {
		return nil, fmt.Errorf("marshal format_scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE quality_profiles
		SET name = ?, qualities = ?, upgrades_enabled = ?, upgrade_until_score = ?, min_format_score = ?, format_scores = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(p.Name), string(qualitiesJSON), p.UpgradesEnabled, p.UpgradeUntilScore, p.MinFormatScore, string(formatScoresJSON), p.ID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

// Delete removes the quality profile with the given id.
func (s *QualityProfileStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quality_profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQualityProfileNotFound
	}
	return nil
}
