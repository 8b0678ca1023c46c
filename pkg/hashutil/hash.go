// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hashutil canonicalizes torrent info hashes so comparisons and
// blocklist lookups behave the same everywhere.
package hashutil

import "github.com/autobrr/sportarr/pkg/stringutils"

// Normalize canonicalizes a torrent hash by trimming whitespace and
// converting to lowercase. Returns an empty string if the input is blank.
// The returned string is interned, as hashes are frequently compared and
// stored.
func Normalize(hash string) string {
	return stringutils.InternNormalized(hash)
}

// NormalizeAll normalizes a slice of hashes, removing empty entries and
// duplicates. Preserves the order of first occurrence.
func NormalizeAll(hashes []string) []string {
	if len(hashes) == 0 {
		return nil
	}

	result := make([]string, 0, len(hashes))
	seen := make(map[string]struct{}, len(hashes))

	for _, hash := range hashes {
		normalized := Normalize(hash)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	return result
}
