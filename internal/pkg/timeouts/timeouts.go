// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package timeouts centralizes search timeout policy so every caller that
// fans out across indexers bounds the whole operation the same way.
package timeouts

import (
	"context"
	"time"
)

const (
	// DefaultSearchTimeout bounds a search against a single indexer.
	DefaultSearchTimeout = 9 * time.Second

	// MaxSearchTimeout is the ceiling for a search regardless of how many
	// indexers participate.
	MaxSearchTimeout = 45 * time.Second

	// PerIndexerSearchTimeout is the extra time allowed for each indexer
	// beyond the first.
	PerIndexerSearchTimeout = 1 * time.Second
)

// AdaptiveSearchTimeout returns a timeout scaled to the number of indexers
// being queried, capped at MaxSearchTimeout.
func AdaptiveSearchTimeout(indexerCount int) time.Duration {
	if indexerCount <= 1 {
		return DefaultSearchTimeout
	}

	timeout := DefaultSearchTimeout + time.Duration(indexerCount-1)*PerIndexerSearchTimeout
	if timeout > MaxSearchTimeout {
		return MaxSearchTimeout
	}
	return timeout
}

// WithSearchTimeout applies timeout to ctx unless the caller already set a
// deadline, in which case ctx is returned unchanged with a noop cancel.
func WithSearchTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}

	return context.WithTimeout(ctx, timeout)
}
