// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocklistByInfoHash(t *testing.T) {
	db := newTestDB(t)
	store := NewBlocklistStore(db)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, &BlocklistEntry{
		InfoHash: "ABCDEF0123456789ABCDEF0123456789ABCDEF01",
		Reason:   "failed download",
	}))

	// Hash matching is case-insensitive.
	blocked, err := store.IsBlocked(ctx, "abcdef0123456789abcdef0123456789abcdef01", "", "")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = store.IsBlocked(ctx, "0000000000000000000000000000000000000000", "", "")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestBlocklistByTitleIndexer(t *testing.T) {
	db := newTestDB(t)
	store := NewBlocklistStore(db)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, &BlocklistEntry{
		ReleaseTitle: "UFC.300.Main.Card.1080p.WEB.h264-GRP",
		Indexer:      "nzbindexer",
		Reason:       "password protected",
	}))

	blocked, err := store.IsBlocked(ctx, "", "UFC.300.Main.Card.1080p.WEB.h264-GRP", "nzbindexer")
	require.NoError(t, err)
	assert.True(t, blocked)

	// Same title from a different indexer is allowed.
	blocked, err = store.IsBlocked(ctx, "", "UFC.300.Main.Card.1080p.WEB.h264-GRP", "otherindexer")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestBlocklistEntryValidate(t *testing.T) {
	t.Parallel()

	assert.Error(t, (&BlocklistEntry{}).Validate())
	assert.NoError(t, (&BlocklistEntry{InfoHash: "abc"}).Validate())
	assert.NoError(t, (&BlocklistEntry{ReleaseTitle: "X", Indexer: "y"}).Validate())
}
