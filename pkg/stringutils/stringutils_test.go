// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Intern(""))
	assert.Equal(t, "UFC", Intern("UFC"))

	a := Intern("sportsindexer")
	b := Intern("sportsindexer")
	assert.Equal(t, a, b)
}

func TestInternNormalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"  Main Card  ", "main card"},
		{"PRELIMS", "prelims"},
		{"infohash", "infohash"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InternNormalized(tt.in))
	}
}

func TestNormalizerCachesTransform(t *testing.T) {
	t.Parallel()

	calls := 0
	n := NewNormalizer(time.Minute, func(s string) string {
		calls++
		return s + "!"
	})

	assert.Equal(t, "a!", n.Normalize("a"))
	assert.Equal(t, "a!", n.Normalize("a"))
	assert.Equal(t, 1, calls)

	n.Clear("a")
	assert.Equal(t, "a!", n.Normalize("a"))
	assert.Equal(t, 2, calls)
}

func TestNormalizeUnicode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Amélie", "Amelie"},
		{"Björk", "Bjork"},
		{"Gané", "Gane"},
		{"Sæther", "Saether"},
		{"Þór", "THor"},
		{"plain ascii", "plain ascii"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeUnicode(tt.in))
	}
}
