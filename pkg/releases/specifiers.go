// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import "strings"

// sourceAliases maps source spellings to the canonical form the quality
// evaluator scores against. Plain "WEB" stays "WEB" and is treated as
// ambiguous between WEBDL and WEBRIP.
var sourceAliases = map[string]string{
	"WEB-DL":  "WEBDL",
	"WEBDL":   "WEBDL",
	"WEB-RIP": "WEBRIP",
	"WEBRIP":  "WEBRIP",
	"WEB":     "WEB",
	"BLU-RAY": "BLURAY",
	"BDRIP":   "BLURAY",
	"PPV":     "SAT",
}

// NormalizeSource converts a source string to its canonical form. Unknown
// sources are returned uppercased.
func NormalizeSource(source string) string {
	upper := strings.ToUpper(strings.TrimSpace(source))
	if canonical, ok := sourceAliases[upper]; ok {
		return canonical
	}
	return upper
}
