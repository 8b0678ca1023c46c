// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/autobrr/sportarr/internal/dbinterface"
)

var ErrCustomFormatNotFound = errors.New("custom format not found")

// SpecificationKind discriminates what a custom format specification matches
// against. Each kind has its own value semantics, so an unknown kind is a
// validation error rather than a silent non-match.
type SpecificationKind string

const (
	// SpecTitlePattern matches a regular expression against the release title.
	SpecTitlePattern SpecificationKind = "titlePattern"
	// SpecSource matches the parsed source (WEBDL, BluRay, ...).
	SpecSource SpecificationKind = "source"
	// SpecResolution matches the parsed resolution (1080p, 2160p, ...).
	SpecResolution SpecificationKind = "resolution"
	// SpecSizeRange matches the release size against [MinSize, MaxSize] in bytes.
	SpecSizeRange SpecificationKind = "sizeRange"
	// SpecGroupPattern matches a regular expression against the release group.
	SpecGroupPattern SpecificationKind = "groupPattern"
)

// Specification is a single condition inside a custom format. All
// specifications of a format must match (negations included) for the format
// to apply.
type Specification struct {
	Kind   SpecificationKind `json:"kind"`
	Value  string            `json:"value,omitempty"`
	Negate bool              `json:"negate,omitempty"`
	// MinSize and MaxSize bound SpecSizeRange in bytes. Zero MaxSize means
	// unbounded above.
	MinSize int64 `json:"minSize,omitempty"`
	MaxSize int64 `json:"maxSize,omitempty"`
}

// Validate checks the specification for a known kind and a usable value.
// Pattern kinds must compile.
func (sp *Specification) Validate() error {
	switch sp.Kind {
	case SpecTitlePattern, SpecGroupPattern:
		if strings.TrimSpace(sp.Value) == "" {
			return fmt.Errorf("%s specification requires a pattern", sp.Kind)
		}
		if _, err := regexp.Compile("(?i)" + sp.Value); err != nil {
			return fmt.Errorf("%s specification pattern: %w", sp.Kind, err)
		}
	case SpecSource, SpecResolution:
		if strings.TrimSpace(sp.Value) == "" {
			return fmt.Errorf("%s specification requires a value", sp.Kind)
		}
	case SpecSizeRange:
		if sp.MinSize < 0 || sp.MaxSize < 0 {
			return errors.New("sizeRange specification requires non-negative bounds")
		}
		if sp.MaxSize > 0 && sp.MinSize > sp.MaxSize {
			return errors.New("sizeRange specification has min above max")
		}
	default:
		return fmt.Errorf("unknown specification kind %q", sp.Kind)
	}
	return nil
}

// CustomFormat is a named set of specifications. A release matches the format
// only when every specification matches.
type CustomFormat struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Specifications []Specification `json:"specifications"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Validate returns a non-nil error if the format is missing required data or
// contains an invalid specification.
func (f *CustomFormat) Validate() error {
	if f == nil {
		return errors.New("custom format is nil")
	}
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("custom format name is required")
	}
	if len(f.Specifications) == 0 {
		return errors.New("custom format must have at least one specification")
	}
	for i := range f.Specifications {
		if err := f.Specifications[i].Validate(); err != nil {
			return fmt.Errorf("specification %d: %w", i, err)
		}
	}
	return nil
}

// CustomFormatStore handles persistence for custom formats.
type CustomFormatStore struct {
	db dbinterface.Querier
}

// NewCustomFormatStore returns a new CustomFormatStore backed by db.
func NewCustomFormatStore(db dbinterface.Querier) *CustomFormatStore {
	return &CustomFormatStore{db: db}
}

// List returns all custom formats ordered by name.
func (s *CustomFormatStore) List(ctx context.Context) ([]*CustomFormat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, specifications, created_at, updated_at
		FROM custom_formats
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var formats []*CustomFormat
	for rows.Next() {
		var f CustomFormat
		var specsJSON string
		if err := rows.Scan(&f.ID, &f.Name, &specsJSON, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(specsJSON), &f.Specifications); err != nil {
			return nil, fmt.Errorf("custom format %d: unmarshal specifications: %w", f.ID, err)
		}
		formats = append(formats, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return formats, nil
}

// Get returns the custom format with the given id, or ErrCustomFormatNotFound.
func (s *CustomFormatStore) Get(ctx context.Context, id int) (*CustomFormat, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, specifications, created_at, updated_at
		FROM custom_formats
		WHERE id = ?
	`, id)

	var f CustomFormat
	var specsJSON string
	if err := row.Scan(&f.ID, &f.Name, &specsJSON, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomFormatNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(specsJSON), &f.Specifications); err != nil {
		return nil, fmt.Errorf("custom format %d: unmarshal specifications: %w", f.ID, err)
	}
	return &f, nil
}

// Create inserts a new custom format and returns it with the generated ID.
func (s *CustomFormatStore) Create(ctx context.Context, f *CustomFormat) (*CustomFormat, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	specsJSON, err := json.Marshal(f.Specifications)
	if err != nil {
		return nil, fmt.Errorf("marshal specifications: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_formats (name, specifications)
		VALUES (?, ?)
	`, strings.TrimSpace(f.Name), string(specsJSON))
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update replaces the mutable fields of an existing custom format.
func (s *CustomFormatStore) Update(ctx context.Context, f *CustomFormat) (*CustomFormat, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	specsJSON, err := json.Marshal(f.Specifications)
	if err != nil {
		return nil, fmt.Errorf("marshal specifications: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE custom_formats
		SET name = ?, specifications = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(f.Name), string(specsJSON), f.ID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, f.ID)
}

// Delete removes the custom format with the given id.
func (s *CustomFormatStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_formats WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCustomFormatNotFound
	}
	return nil
}
