// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import "sync"

// cascadeKey identifies one in-flight cascading upgrade search. Keying on
// the target resolution as well as the slot prevents a cascade triggered at
// 1080p from being re-triggered at the same tier by a concurrent cycle.
type cascadeKey struct {
	eventID    int
	segment    string
	resolution string
}

// cascadeGuard is the per-engine set of in-flight cascade searches. A
// duplicate acquire is dropped silently; the key is released when the
// cascade task finishes, success or failure.
type cascadeGuard struct {
	mu       sync.Mutex
	inFlight map[cascadeKey]struct{}
}

func newCascadeGuard() *cascadeGuard {
	return &cascadeGuard{inFlight: make(map[cascadeKey]struct{})}
}

func (g *cascadeGuard) tryAcquire(key cascadeKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inFlight[key]; held {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *cascadeGuard) release(key cascadeKey) {
	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()
}

func (g *cascadeGuard) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}
