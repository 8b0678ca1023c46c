// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"regexp"
	"strings"

	"github.com/autobrr/sportarr/internal/models"
)

// PartInfo describes the sub-broadcast a release title refers to.
type PartInfo struct {
	Name   string
	Number int
	Suffix string
}

type segmentDef struct {
	name    string
	number  int
	pattern *regexp.Regexp
}

// segmentDefs is ordered most-specific first. "Early Prelims" must be tried
// and fail before "Prelims" so the broader pattern cannot swallow it.
var segmentDefs = []segmentDef{
	{"Early Prelims", 1, regexp.MustCompile(`(?i)\bearly\s+prelims?\b`)},
	{"Prelims", 2, regexp.MustCompile(`(?i)\bprelims?\b`)},
	{"Main Card", 3, regexp.MustCompile(`(?i)\bmain\s+card\b`)},
	{"Post Show", 4, regexp.MustCompile(`(?i)\bpost\s+(?:show|fight\s+show)\b`)},
}

var videoExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".ts": {}, ".wmv": {}, ".m2ts": {}, ".mov": {},
}

var titleSeparators = strings.NewReplacer(".", " ", "_", " ", "-", " ")

// cleanTitle strips a trailing media extension and normalizes separators to
// single spaces so patterns only have to deal with word boundaries.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if idx := strings.LastIndex(title, "."); idx > 0 {
		if _, ok := videoExtensions[strings.ToLower(title[idx:])]; ok {
			title = title[:idx]
		}
	}
	title = titleSeparators.Replace(title)
	return strings.Join(strings.Fields(title), " ")
}

// DetectPart classifies a release title as one segment of a multi-part
// broadcast. Only sports whose broadcasts are split into ordered segments
// participate; for every other sport each broadcast is its own event and
// the answer is always no segment, even when a pattern happens to appear.
func DetectPart(title string, sport models.SportCategory) (PartInfo, bool) {
	if !sport.Segmented() {
		return PartInfo{}, false
	}

	cleaned := cleanTitle(title)
	for _, def := range segmentDefs {
		if match := def.pattern.FindString(cleaned); match != "" {
			return PartInfo{Name: def.name, Number: def.number, Suffix: match}, true
		}
	}
	return PartInfo{}, false
}
