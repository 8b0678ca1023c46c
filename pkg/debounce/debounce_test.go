// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerRunsOncePerWindow(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(50 * time.Millisecond)

	for range 5 {
		d.Do(func() { calls.Add(1) })
	}

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerLatestFunctionWins(t *testing.T) {
	t.Parallel()

	var got atomic.Int32
	d := New(50 * time.Millisecond)

	d.Do(func() { got.Store(1) })
	d.Do(func() { got.Store(2) })

	require.Eventually(t, func() bool {
		return got.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestDebouncerPending(t *testing.T) {
	t.Parallel()

	d := New(30 * time.Millisecond)
	assert.False(t, d.Pending())

	d.Do(func() {})
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool {
		return !d.Pending()
	}, time.Second, 10*time.Millisecond)
}

func TestDebouncerStopRunsPending(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(time.Hour)

	d.Do(func() { calls.Add(1) })
	d.Stop()

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerSequentialWindows(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := New(20 * time.Millisecond)

	d.Do(func() { calls.Add(1) })
	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	d.Do(func() { calls.Add(1) })
	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)
}
