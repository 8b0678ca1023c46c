// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/pkg/releases"
	"github.com/autobrr/sportarr/pkg/stringutils"
)

// matchConfidenceThreshold is the minimum keyword-coverage confidence for a
// release to be attributed to an event.
const matchConfidenceThreshold = 60

var noiseWords = map[string]struct{}{
	"the": {}, "vs": {}, "at": {}, "in": {}, "on": {}, "and": {}, "or": {}, "for": {},
}

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

// MatchResult attributes a release to one monitored event.
type MatchResult struct {
	Event      *models.Event
	Confidence int
}

// Matcher decides whether a raw release plausibly belongs to a monitored
// event. Matching is two-phase: a cheap keyword pre-filter followed by
// structural validation of the surviving candidates.
type Matcher struct {
	parser *releases.Parser
}

func NewMatcher(parser *releases.Parser) *Matcher {
	return &Matcher{parser: parser}
}

// eventKeywords extracts the normalized, noise-free tokens of an event
// display title. Diacritics are stripped first so accented competitor
// names match their ASCII release spellings.
func eventKeywords(title string) []string {
	var keywords []string
	for _, tok := range tokenSplit.Split(strings.ToLower(stringutils.NormalizeUnicode(title)), -1) {
		if tok == "" {
			continue
		}
		if _, noise := noiseWords[tok]; noise {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

func tokenSet(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenSplit.Split(strings.ToLower(stringutils.NormalizeUnicode(title)), -1) {
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// versusSides returns the competitor name on each side of a "vs" title.
func versusSides(title string) (left, right string, ok bool) {
	cleaned := " " + strings.ToLower(stringutils.NormalizeUnicode(cleanTitle(title))) + " "
	idx := strings.Index(cleaned, " vs ")
	if idx < 0 {
		idx = strings.Index(cleaned, " v ")
	}
	if idx < 0 {
		return "", "", false
	}

	leftTokens := strings.Fields(cleaned[:idx])
	rightTokens := strings.Fields(cleaned[idx:])
	// rightTokens[0] is the separator itself.
	if len(leftTokens) == 0 || len(rightTokens) < 2 {
		return "", "", false
	}
	return leftTokens[len(leftTokens)-1], rightTokens[1], true
}

// FindMatch returns the first candidate the release validates against.
// Candidates should be ordered soonest-dated first by the caller so the
// most likely event is tried before the long tail.
func (m *Matcher) FindMatch(rel Release, candidates []*models.Event) (*MatchResult, bool) {
	parsed := m.parser.Parse(rel.Title)
	if !releases.IsVideoContent(parsed) {
		return nil, false
	}

	lowTitle := strings.ToLower(stringutils.NormalizeUnicode(rel.Title))
	relTokens := tokenSet(cleanTitle(rel.Title))

	for _, event := range candidates {
		keywords := eventKeywords(event.Title)
		if len(keywords) == 0 {
			continue
		}

		// Pre-filter: at least one keyword must appear before the more
		// expensive validation runs.
		anyHit := false
		for _, kw := range keywords {
			if strings.Contains(lowTitle, kw) {
				anyHit = true
				break
			}
		}
		if !anyHit {
			continue
		}

		confidence, hardReject := m.validate(parsed.Year, event, keywords, relTokens, cleanTitle(rel.Title))
		if hardReject {
			continue
		}
		if confidence >= matchConfidenceThreshold {
			return &MatchResult{Event: event, Confidence: confidence}, true
		}
	}
	return nil, false
}

// validate scores keyword coverage and flags mismatches severe enough to
// reject regardless of confidence: a wrong year, a missing edition number,
// or a wrong competing side.
func (m *Matcher) validate(releaseYear int, event *models.Event, keywords []string, relTokens map[string]struct{}, cleanedRelease string) (int, bool) {
	if releaseYear != 0 && event.AirDate != nil && releaseYear != event.AirDate.Year() {
		return 0, true
	}

	if left, right, ok := versusSides(event.Title); ok {
		if _, found := relTokens[left]; !found {
			return 0, true
		}
		if _, found := relTokens[right]; !found {
			return 0, true
		}
	}

	matched := 0
	for _, kw := range keywords {
		if _, found := relTokens[kw]; found {
			matched++
			continue
		}
		// An event numbered differently is a different event outright.
		if _, err := strconv.Atoi(kw); err == nil {
			return 0, true
		}
	}

	confidence := matched * 100 / len(keywords)
	if confidence < 100 && fuzzy.MatchNormalizedFold(cleanTitle(event.Title), cleanedRelease) {
		confidence += 10
		if confidence > 100 {
			confidence = 100
		}
	}
	return confidence, false
}
