// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeouts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdaptiveSearchTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		indexerCount int
		want         time.Duration
	}{
		{"zero indexers", 0, DefaultSearchTimeout},
		{"one indexer", 1, DefaultSearchTimeout},
		{"two indexers", 2, DefaultSearchTimeout + PerIndexerSearchTimeout},
		{"five indexers", 5, DefaultSearchTimeout + 4*PerIndexerSearchTimeout},
		{"capped at max", 100, MaxSearchTimeout},
		{"negative count", -5, DefaultSearchTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AdaptiveSearchTimeout(tt.indexerCount))
		})
	}
}

func TestAdaptiveSearchTimeoutMonotonic(t *testing.T) {
	t.Parallel()

	prev := time.Duration(0)
	for i := 0; i <= 50; i++ {
		got := AdaptiveSearchTimeout(i)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, MaxSearchTimeout)
		prev = got
	}
}

func TestWithSearchTimeout(t *testing.T) {
	t.Parallel()

	t.Run("applies timeout when no deadline", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := WithSearchTimeout(context.Background(), 5*time.Second)
		defer cancel()

		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, 100*time.Millisecond)
	})

	t.Run("preserves existing deadline", func(t *testing.T) {
		t.Parallel()

		want := time.Now().Add(10 * time.Second)
		parent, parentCancel := context.WithDeadline(context.Background(), want)
		defer parentCancel()

		ctx, cancel := WithSearchTimeout(parent, 5*time.Second)

		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.Equal(t, want, deadline)

		// cancel is a noop here; the parent deadline stays in charge.
		cancel()
		assert.NoError(t, ctx.Err())
	})

	t.Run("nil context uses background", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := WithSearchTimeout(nil, 5*time.Second)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.True(t, ok)
	})

	t.Run("non-positive timeout uses default", func(t *testing.T) {
		t.Parallel()

		for _, d := range []time.Duration{0, -5 * time.Second} {
			ctx, cancel := WithSearchTimeout(context.Background(), d)

			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(DefaultSearchTimeout), deadline, 100*time.Millisecond)
			cancel()
		}
	})

	t.Run("cancel releases the context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := WithSearchTimeout(context.Background(), 5*time.Second)
		cancel()

		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
