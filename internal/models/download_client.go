// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/sportarr/internal/dbinterface"
)

var ErrDownloadClientNotFound = errors.New("download client not found")

// ClientKind is the closed set of supported download client types. An unknown
// kind fails validation instead of being carried as an opaque string.
type ClientKind string

const (
	ClientQBittorrent ClientKind = "qbittorrent"
)

// Valid reports whether the kind is supported.
func (k ClientKind) Valid() bool {
	switch k {
	case ClientQBittorrent:
		return true
	}
	return false
}

// DownloadClient is a configured download client endpoint.
type DownloadClient struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Kind     ClientKind `json:"kind"`
	Host     string     `json:"host"`
	Port     int        `json:"port"`
	Username string     `json:"username,omitempty"`
	Password string     `json:"-"`
	// Category is applied to every grab sent to this client.
	Category  string    `json:"category"`
	UseTLS    bool      `json:"useTls"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns a non-nil error if the client is missing required data.
func (c *DownloadClient) Validate() error {
	if c == nil {
		return errors.New("download client is nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("download client name is required")
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown download client kind %q", c.Kind)
	}
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("download client host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("download client port %d out of range", c.Port)
	}
	return nil
}

// URL returns the base URL of the client.
func (c *DownloadClient) URL() string {
	scheme := "http"
	if c.UseTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// DownloadClientStore handles persistence for download clients.
type DownloadClientStore struct {
	db dbinterface.Querier
}

// NewDownloadClientStore returns a new DownloadClientStore backed by db.
func NewDownloadClientStore(db dbinterface.Querier) *DownloadClientStore {
	return &DownloadClientStore{db: db}
}

const downloadClientColumns = `id, name, kind, host, port, username, password, category, use_tls, enabled, created_at, updated_at`

func scanDownloadClient(row interface{ Scan(...any) error }) (*DownloadClient, error) {
	var c DownloadClient
	if err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.Host, &c.Port, &c.Username, &c.Password, &c.Category, &c.UseTLS, &c.Enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the download client with the given id, or ErrDownloadClientNotFound.
func (s *DownloadClientStore) Get(ctx context.Context, id int) (*DownloadClient, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+downloadClientColumns+`
		FROM download_clients
		WHERE id = ?
	`, id)

	c, err := scanDownloadClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDownloadClientNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns all download clients ordered by name.
func (s *DownloadClientStore) List(ctx context.Context) ([]*DownloadClient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+downloadClientColumns+`
		FROM download_clients
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDownloadClients(rows)
}

// ListEnabled returns all enabled download clients.
func (s *DownloadClientStore) ListEnabled(ctx context.Context) ([]*DownloadClient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+downloadClientColumns+`
		FROM download_clients
		WHERE enabled = 1
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDownloadClients(rows)
}

func collectDownloadClients(rows *sql.Rows) ([]*DownloadClient, error) {
	var clients []*DownloadClient
	for rows.Next() {
		c, err := scanDownloadClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

// Create inserts a new download client and returns it with the generated ID.
func (s *DownloadClientStore) Create(ctx context.Context, c *DownloadClient) (*DownloadClient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO download_clients (name, kind, host, port, username, password, category, use_tls, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(c.Name), c.Kind, strings.TrimSpace(c.Host), c.Port, c.Username, c.Password, c.Category, c.UseTLS, c.Enabled)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update replaces the mutable fields of an existing download client.
func (s *DownloadClientStore) Update(ctx context.Context, c *DownloadClient) (*DownloadClient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE download_clients
		SET name = ?, kind = ?, host = ?, port = ?, username = ?, password = ?, category = ?, use_tls = ?, enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(c.Name), c.Kind, strings.TrimSpace(c.Host), c.Port, c.Username, c.Password, c.Category, c.UseTLS, c.Enabled, c.ID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, c.ID)
}

// Delete removes the download client with the given id.
func (s *DownloadClientStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM download_clients WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDownloadClientNotFound
	}
	return nil
}
