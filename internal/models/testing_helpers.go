// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/autobrr/sportarr/internal/database"
	"github.com/autobrr/sportarr/internal/dbinterface"
	"github.com/autobrr/sportarr/internal/testdb"
)

// newTestDB returns a migrated database for store tests.
func newTestDB(t *testing.T) dbinterface.Querier {
	t.Helper()

	dbPath := testdb.PathFromTemplate(t, "models", "sportarr.db")
	db, err := database.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// createTestEvent inserts a minimal event and returns it.
func createTestEvent(t *testing.T, db dbinterface.Querier, title string, sport SportCategory) *Event {
	t.Helper()

	airDate := time.Now().Add(-24 * time.Hour)
	event, err := NewEventStore(db).Create(context.Background(), &Event{
		Title:     title,
		Sport:     sport,
		AirDate:   &airDate,
		Monitored: true,
	})
	require.NoError(t, err)
	return event
}
