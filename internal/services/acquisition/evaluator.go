// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/pkg/releases"
)

// Quality weights increase monotonically with resolution and with source
// desirability. Disc and web sources score above broadcast capture.
var resolutionWeights = map[string]int{
	"2160p": 200,
	"1080p": 100,
	"720p":  50,
	"576p":  20,
	"480p":  10,
}

var sourceWeights = map[string]int{
	"BLURAY": 60,
	"WEBDL":  50,
	"WEB":    50,
	"WEBRIP": 40,
	"DVD":    30,
	"HDTV":   20,
	"SAT":    15,
	"CAM":    0,
}

// Evaluator scores a matched release against a quality profile and the
// configured custom formats, and applies the multi-part segment policy.
type Evaluator struct {
	parser *releases.Parser
}

func NewEvaluator(parser *releases.Parser) *Evaluator {
	return &Evaluator{parser: parser}
}

// Evaluate fills in the quality and format scores on eval and accumulates
// rejections. Approved ends up true only when nothing rejected the release.
func (ev *Evaluator) Evaluate(eval *Evaluation, profile *models.QualityProfile, formats []*models.CustomFormat, event *models.Event, multiPartEnabled bool) {
	parsed := ev.parser.Parse(eval.Release.Title)

	resolution := strings.ToLower(parsed.Resolution)
	source := releases.NormalizeSource(parsed.Source)

	eval.Quality = qualityName(resolution, source)
	eval.QualityScore = resolutionWeights[resolution] + sourceWeights[source]

	if profile != nil && !qualityAllowed(profile, resolution, source) {
		eval.Reject(fmt.Sprintf("quality %q not allowed by profile %q", eval.Quality, profile.Name))
	}

	eval.FormatScore = ev.scoreFormats(eval, parsed.Group, resolution, source, profile, formats)
	if profile != nil && profile.MinFormatScore > 0 && eval.FormatScore < profile.MinFormatScore {
		eval.Reject(fmt.Sprintf("custom format score %d below profile minimum %d", eval.FormatScore, profile.MinFormatScore))
	}

	segmented := event.Sport.Segmented() && multiPartEnabled
	switch {
	case segmented && eval.Segment == "":
		eval.SegmentRejection = "full event release while multi-part segments are required"
	case !segmented && eval.Segment != "":
		eval.SegmentRejection = fmt.Sprintf("segment release %q while multi-part segments are disabled", eval.Segment)
	case segmented && !event.WantsSegment(eval.Segment):
		eval.SegmentRejection = fmt.Sprintf("segment %q not monitored", eval.Segment)
	}
	if eval.SegmentRejection != "" {
		eval.Reject(eval.SegmentRejection)
	}
}

func qualityName(resolution, source string) string {
	var parts []string
	if resolution != "" {
		parts = append(parts, resolution)
	}
	if source != "" {
		parts = append(parts, source)
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " ")
}

// qualityAllowed checks the composed quality name against the profile's
// allowed list. A plain "WEB" source is ambiguous between WEB-DL and WEBRip
// and is accepted when either is allowed.
func qualityAllowed(profile *models.QualityProfile, resolution, source string) bool {
	if profile.AllowsQuality(qualityName(resolution, source)) {
		return true
	}
	if source == "WEB" {
		return profile.AllowsQuality(qualityName(resolution, "WEBDL")) ||
			profile.AllowsQuality(qualityName(resolution, "WEBRIP"))
	}
	return false
}

// scoreFormats sums the profile-assigned score of every custom format whose
// specification set matches. A format contributes its score once.
func (ev *Evaluator) scoreFormats(eval *Evaluation, group, resolution, source string, profile *models.QualityProfile, formats []*models.CustomFormat) int {
	if profile == nil || len(profile.FormatScores) == 0 {
		return 0
	}

	total := 0
	for _, format := range formats {
		score, scored := profile.FormatScores[format.ID]
		if !scored || score == 0 {
			continue
		}
		if formatMatches(format, eval.Release, group, resolution, source) {
			total += score
		}
	}
	return total
}

// formatMatches applies AND semantics across a format's specifications,
// honoring per-specification negation. An empty specification set never
// matches.
func formatMatches(format *models.CustomFormat, rel Release, group, resolution, source string) bool {
	if len(format.Specifications) == 0 {
		return false
	}
	for _, spec := range format.Specifications {
		matched := specMatches(&spec, rel, group, resolution, source)
		if spec.Negate {
			matched = !matched
		}
		if !matched {
			return false
		}
	}
	return true
}

func specMatches(spec *models.Specification, rel Release, group, resolution, source string) bool {
	switch spec.Kind {
	case models.SpecTitlePattern:
		return patternMatches(spec.Value, rel.Title)
	case models.SpecSource:
		want := releases.NormalizeSource(spec.Value)
		if source == "WEB" && (want == "WEBDL" || want == "WEBRIP") {
			return true
		}
		return source != "" && source == want
	case models.SpecResolution:
		return resolution != "" && strings.EqualFold(resolution, spec.Value)
	case models.SpecSizeRange:
		if rel.Size < spec.MinSize {
			return false
		}
		return spec.MaxSize == 0 || rel.Size <= spec.MaxSize
	case models.SpecGroupPattern:
		return group != "" && patternMatches(spec.Value, group)
	}
	return false
}

// patternMatches compiles lazily; specifications are validated at load time
// so a compile failure here only means the row predates validation.
func patternMatches(pattern, text string) bool {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
