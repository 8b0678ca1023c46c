// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package releases wraps the rls release name parser with caching and
// normalization helpers for quality comparison.
package releases

import (
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/cespare/xxhash/v2"
	"github.com/moistari/rls"
)

const defaultParseTTL = 30 * time.Minute

// Parser parses release names and caches the results. Parsing the same name
// repeatedly across a sync cycle is common, and rls parsing is not free.
// Entries are keyed by the xxhash of the name so long release titles are
// not retained twice.
type Parser struct {
	cache *ttlcache.Cache[uint64, *rls.Release]
}

// NewParser returns a Parser whose cached entries expire after ttl.
func NewParser(ttl time.Duration) *Parser {
	opts := ttlcache.Options[uint64, *rls.Release]{}.SetDefaultTTL(ttl)
	return &Parser{
		cache: ttlcache.New(opts),
	}
}

// NewDefaultParser returns a Parser with the default cache TTL.
func NewDefaultParser() *Parser {
	return NewParser(defaultParseTTL)
}

// Parse parses a release name. It is nil-safe and always returns a non-nil
// release; an empty name yields an empty release.
func (p *Parser) Parse(name string) *rls.Release {
	name = strings.TrimSpace(name)
	if name == "" {
		return &rls.Release{}
	}

	if p == nil || p.cache == nil {
		r := rls.ParseString(name)
		return &r
	}

	key := xxhash.Sum64String(name)
	if cached, ok := p.cache.Get(key); ok && cached != nil {
		return cached
	}

	r := rls.ParseString(name)
	p.cache.Set(key, &r, ttlcache.DefaultTTL)
	return &r
}

// Clear removes the cached parse for a name. Nil-safe.
func (p *Parser) Clear(name string) {
	if p == nil || p.cache == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.cache.Delete(xxhash.Sum64String(name))
}

// Close releases the cache resources.
func (p *Parser) Close() {
	if p == nil || p.cache == nil {
		return
	}
	p.cache.Close()
}
