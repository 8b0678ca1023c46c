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

	"github.com/autobrr/sportarr/internal/crypto"
	"github.com/autobrr/sportarr/internal/dbinterface"
)

var ErrIndexerNotFound = errors.New("indexer not found")

// IndexerProtocol is the delivery protocol an indexer serves.
type IndexerProtocol string

const (
	ProtocolTorrent IndexerProtocol = "torrent"
	ProtocolUsenet  IndexerProtocol = "usenet"
)

// Indexer is a Torznab API indexer (Jackett, Prowlarr, etc.). API keys are
// stored encrypted and never serialized.
type Indexer struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	BaseURL         string          `json:"baseUrl"`
	APIKeyEncrypted string          `json:"-"`
	Protocol        IndexerProtocol `json:"protocol"`
	// Categories lists Torznab category IDs requested from this indexer.
	Categories []int `json:"categories"`
	Priority   int   `json:"priority"`
	// RetentionDays bounds how old a release this indexer can serve.
	// Zero means unbounded.
	RetentionDays  int       `json:"retentionDays"`
	Enabled        bool      `json:"enabled"`
	TimeoutSeconds int       `json:"timeoutSeconds"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Timeout returns the per-request timeout for this indexer.
func (i *Indexer) Timeout() time.Duration {
	if i.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(i.TimeoutSeconds) * time.Second
}

// IndexerStore manages indexers. API keys are sealed with AES-GCM using the
// key derived from the session secret.
type IndexerStore struct {
	db        dbinterface.Querier
	encryptor *crypto.AESEncryptor
}

// NewIndexerStore creates a new IndexerStore.
func NewIndexerStore(db dbinterface.Querier, encryptionKey []byte) (*IndexerStore, error) {
	encryptor, err := crypto.NewAESEncryptor(encryptionKey)
	if err != nil {
		return nil, err
	}

	return &IndexerStore{
		db:        db,
		encryptor: encryptor,
	}, nil
}

const indexerColumns = `id, name, base_url, api_key_encrypted, protocol, categories, priority, retention_days, enabled, timeout_seconds, created_at, updated_at`

func scanIndexer(row interface{ Scan(...any) error }) (*Indexer, error) {
	var i Indexer
	var categoriesJSON string

	if err := row.Scan(&i.ID, &i.Name, &i.BaseURL, &i.APIKeyEncrypted, &i.Protocol, &categoriesJSON, &i.Priority, &i.RetentionDays, &i.Enabled, &i.TimeoutSeconds, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(categoriesJSON), &i.Categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	if i.Categories == nil {
		i.Categories = []int{}
	}
	return &i, nil
}

// Create creates a new indexer with an encrypted API key.
func (s *IndexerStore) Create(ctx context.Context, i *Indexer, apiKey string) (*Indexer, error) {
	if strings.TrimSpace(i.Name) == "" {
		return nil, errors.New("name cannot be empty")
	}
	if strings.TrimSpace(i.BaseURL) == "" {
		return nil, errors.New("base URL cannot be empty")
	}
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}

	encryptedAPIKey, err := s.encryptor.Encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt API key: %w", err)
	}

	if i.Protocol == "" {
		i.Protocol = ProtocolTorrent
	}
	if i.TimeoutSeconds <= 0 {
		i.TimeoutSeconds = 60
	}

	categoriesJSON, err := json.Marshal(i.Categories)
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO indexers (name, base_url, api_key_encrypted, protocol, categories, priority, retention_days, enabled, timeout_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(i.Name), strings.TrimSpace(i.BaseURL), encryptedAPIKey, i.Protocol, string(categoriesJSON), i.Priority, i.RetentionDays, i.Enabled, i.TimeoutSeconds)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("indexer %q already exists", i.Name)
		}
		return nil, fmt.Errorf("failed to create indexer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Get retrieves an indexer by ID, or ErrIndexerNotFound.
func (s *IndexerStore) Get(ctx context.Context, id int) (*Indexer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+indexerColumns+`
		FROM indexers
		WHERE id = ?
	`, id)

	i, err := scanIndexer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIndexerNotFound
		}
		return nil, fmt.Errorf("failed to get indexer: %w", err)
	}
	return i, nil
}

// List retrieves all indexers, ordered by priority (descending) and name.
func (s *IndexerStore) List(ctx context.Context) ([]*Indexer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+indexerColumns+`
		FROM indexers
		ORDER BY priority DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexers: %w", err)
	}
	defer rows.Close()

	return collectIndexers(rows)
}

// ListEnabled retrieves all enabled indexers, ordered by priority.
func (s *IndexerStore) ListEnabled(ctx context.Context) ([]*Indexer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+indexerColumns+`
		FROM indexers
		WHERE enabled = 1
		ORDER BY priority DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled indexers: %w", err)
	}
	defer rows.Close()

	return collectIndexers(rows)
}

func collectIndexers(rows *sql.Rows) ([]*Indexer, error) {
	var indexers []*Indexer
	for rows.Next() {
		i, err := scanIndexer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indexer: %w", err)
		}
		indexers = append(indexers, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indexers: %w", err)
	}
	return indexers, nil
}

// Update updates an indexer. An empty apiKey keeps the stored key.
func (s *IndexerStore) Update(ctx context.Context, i *Indexer, apiKey string) (*Indexer, error) {
	existing, err := s.Get(ctx, i.ID)
	if err != nil {
		return nil, err
	}

	encryptedAPIKey := existing.APIKeyEncrypted
	if apiKey != "" {
		encryptedAPIKey, err = s.encryptor.Encrypt(apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt API key: %w", err)
		}
	}

	categoriesJSON, err := json.Marshal(i.Categories)
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE indexers
		SET name = ?, base_url = ?, api_key_encrypted = ?, protocol = ?, categories = ?, priority = ?, retention_days = ?, enabled = ?, timeout_seconds = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(i.Name), strings.TrimSpace(i.BaseURL), encryptedAPIKey, i.Protocol, string(categoriesJSON), i.Priority, i.RetentionDays, i.Enabled, i.TimeoutSeconds, i.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update indexer: %w", err)
	}

	return s.Get(ctx, i.ID)
}

// Delete deletes an indexer.
func (s *IndexerStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM indexers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete indexer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrIndexerNotFound
	}
	return nil
}

// GetDecryptedAPIKey returns the decrypted API key for an indexer.
func (s *IndexerStore) GetDecryptedAPIKey(indexer *Indexer) (string, error) {
	return s.encryptor.Decrypt(indexer.APIKeyEncrypted)
}
