// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSportCategorySegmented(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sport SportCategory
		want  bool
	}{
		{SportMMA, true},
		{SportBoxing, true},
		{SportKickboxing, true},
		{SportWrestling, true},
		{SportFootball, false},
		{SportSoccer, false},
		{SportMotorsport, false},
		{SportOther, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sport.Segmented(), "sport: %s", tt.sport)
	}
}

func TestEventWantsSegment(t *testing.T) {
	t.Parallel()

	e := &Event{Title: "UFC 300", Sport: SportMMA, MonitoredSegments: []string{"Prelims", "Main Card"}}

	assert.True(t, e.WantsSegment("Main Card"))
	assert.True(t, e.WantsSegment("prelims"), "segment match is case-insensitive")
	assert.False(t, e.WantsSegment("Early Prelims"))
	assert.True(t, e.WantsSegment(""), "whole broadcast is always wanted")

	all := &Event{Title: "UFC 301", Sport: SportMMA}
	assert.True(t, all.WantsSegment("Post Show"), "empty monitored list wants everything")
}

func TestEventStoreCRUD(t *testing.T) {
	db := newTestDB(t)
	store := NewEventStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, &Event{
		Title:             "UFC 300 Pereira vs Hill",
		League:            "UFC",
		Sport:             SportMMA,
		Monitored:         true,
		MonitoredSegments: []string{"Prelims", "Main Card"},
	})
	require.NoError(t, err)
	assert.Greater(t, created.ID, 0)
	assert.Equal(t, []string{"Prelims", "Main Card"}, created.MonitoredSegments)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, SportMMA, got.Sport)

	got.Monitored = false
	got.MonitoredSegments = []string{"Main Card"}
	updated, err := store.Update(ctx, got)
	require.NoError(t, err)
	assert.False(t, updated.Monitored)
	assert.Equal(t, []string{"Main Card"}, updated.MonitoredSegments)

	monitored, err := store.ListMonitored(ctx)
	require.NoError(t, err)
	for _, e := range monitored {
		assert.NotEqual(t, created.ID, e.ID)
	}

	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrEventNotFound)
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	assert.Error(t, (&Event{Sport: SportMMA}).Validate())
	assert.Error(t, (&Event{Title: "UFC 300"}).Validate())
	assert.NoError(t, (&Event{Title: "UFC 300", Sport: SportMMA}).Validate())
}
