// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"strings"
	"sync"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
)

// hardCeilingFactor bounds how long an entry may outlive the caller-facing
// TTL before the cache janitor purges it regardless of access pattern.
const hardCeilingFactor = 4

type cachedFeed struct {
	storedAt time.Time
	releases []Release
}

// SearchCache is a short-TTL store of raw per-query release listings shared
// by the sync loop and manual searches. Keys are case-folded and trimmed so
// semantically identical queries land in the same bucket.
type SearchCache struct {
	cache *ttlcache.Cache[string, cachedFeed]

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewSearchCache returns a cache whose janitor purges entries after
// hardCeilingFactor times ttl. Callers pass their own freshness window to
// TryGet, so the janitor only bounds memory.
func NewSearchCache(ttl time.Duration) *SearchCache {
	c := &SearchCache{keys: make(map[string]struct{})}

	opts := ttlcache.Options[string, cachedFeed]{}.
		SetDefaultTTL(hardCeilingFactor * ttl).
		SetDeallocationFunc(func(key string, _ cachedFeed, _ ttlcache.DeallocationReason) {
			c.mu.Lock()
			delete(c.keys, key)
			c.mu.Unlock()
		})
	c.cache = ttlcache.New(opts)
	return c
}

func cacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Store caches the raw release listings behind a set of evaluations. Every
// event-specific field is stripped before caching; only indexer facts are
// retained.
func (c *SearchCache) Store(query string, evals []Evaluation) {
	key := cacheKey(query)
	if key == "" {
		return
	}

	feed := cachedFeed{storedAt: time.Now(), releases: make([]Release, 0, len(evals))}
	for _, eval := range evals {
		feed.releases = append(feed.releases, eval.Release)
	}

	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()

	c.cache.Set(key, feed, ttlcache.DefaultTTL)
}

// TryGet returns cached evaluations no older than maxAge, reset to neutral
// defaults so a hit never carries a decision made for another event. An
// entry past maxAge is deleted and reported as a miss.
func (c *SearchCache) TryGet(query string, maxAge time.Duration) ([]Evaluation, bool) {
	key := cacheKey(query)
	if key == "" {
		return nil, false
	}

	feed, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	if time.Since(feed.storedAt) > maxAge {
		c.cache.Delete(key)
		return nil, false
	}

	evals := make([]Evaluation, 0, len(feed.releases))
	for _, rel := range feed.releases {
		eval := Evaluation{Release: rel}
		eval.resetToNeutral()
		evals = append(evals, eval)
	}
	return evals, true
}

// Invalidate drops the entry for a query.
func (c *SearchCache) Invalidate(query string) {
	key := cacheKey(query)
	if key == "" {
		return
	}
	c.cache.Delete(key)
}

// Clear drops every entry.
func (c *SearchCache) Clear() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.keys))
	for key := range c.keys {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.cache.Delete(key)
	}
}

// Close stops the janitor.
func (c *SearchCache) Close() {
	c.cache.Close()
}
