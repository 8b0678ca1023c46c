// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unicodeNormalizer caches NormalizeUnicode results; release matching hits
// the same competitor and event names over and over within a sync cycle.
var unicodeNormalizer = NewNormalizer(defaultNormalizerTTL, normalizeUnicodeInner)

func normalizeUnicodeInner(s string) string {
	// These are distinct letters in Nordic/Germanic alphabets, not composed
	// characters, so NFKD leaves them alone.
	s = strings.ReplaceAll(s, "æ", "ae")
	s = strings.ReplaceAll(s, "Æ", "AE")
	s = strings.ReplaceAll(s, "œ", "oe")
	s = strings.ReplaceAll(s, "Œ", "OE")
	s = strings.ReplaceAll(s, "ø", "o")
	s = strings.ReplaceAll(s, "Ø", "O")
	s = strings.ReplaceAll(s, "ß", "ss")
	s = strings.ReplaceAll(s, "ð", "d")
	s = strings.ReplaceAll(s, "Ð", "D")
	s = strings.ReplaceAll(s, "þ", "th")
	s = strings.ReplaceAll(s, "Þ", "TH")

	// transform.Chain is not safe for concurrent use, so build it per call.
	// The normalizer cache keeps repeated inputs off this path.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// NormalizeUnicode removes diacritics and decomposes ligatures, with results
// cached per input string.
// Examples:
//   - "Amélie" → "Amelie"
//   - "Björk" → "Bjork"
//   - "æ" → "ae"
func NormalizeUnicode(s string) string {
	return unicodeNormalizer.Normalize(s)
}
