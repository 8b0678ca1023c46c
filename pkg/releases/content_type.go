// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"strings"

	"github.com/moistari/rls"
)

// IsVideoContent reports whether a parsed release looks like video content.
// Sports feeds are noisy; music, books, games and apps share indexer
// categories often enough that type gating up front avoids wasted matching.
func IsVideoContent(release *rls.Release) bool {
	if release == nil {
		return false
	}

	switch release.Type {
	case rls.Movie, rls.Episode, rls.Series:
		return true
	case rls.Music:
		// Dash-separated folder names (BDMV/STREAM paths) parse as music;
		// resolution or codec hints correct the misclassification.
		return looksLikeVideoRelease(release)
	case rls.Audiobook, rls.Book, rls.Comic, rls.Education, rls.Magazine, rls.Game, rls.App:
		return false
	}

	return looksLikeVideoRelease(release)
}

func looksLikeVideoRelease(release *rls.Release) bool {
	if release.Resolution != "" {
		return true
	}
	if len(release.HDR) > 0 {
		return true
	}
	if hasVideoCodecHints(release.Codec) {
		return true
	}
	if containsVideoTokens(release.Title, videoTitleHints) || containsVideoTokens(release.Group, videoTitleHints) {
		return true
	}
	if release.Source != "" {
		lowerSource := strings.ToLower(release.Source)
		for _, hint := range videoSourceHints {
			if strings.Contains(lowerSource, hint) {
				return true
			}
		}
	}
	return false
}

var videoTitleHints = []string{
	"2160p", "1080p", "720p", "576p", "480p", "4k", "remux", "hdr", "hdr10",
	"dolby vision", "uhd", "bluray", "blu-ray", "bdrip", "bdremux",
	"web-dl", "webdl", "webrip", "hdtv", "ppv", "fight pass", "xvid", "x264", "x265", "hevc",
}

var videoSourceHints = []string{
	"uhd", "hdr", "remux", "stream", "bdmv", "bluray", "blu-ray", "bdrip",
	"bdremux", "webrip", "web-dl", "webdl", "hdtv", "dvdrip", "m2ts", "sat",
}

func hasVideoCodecHints(codecs []string) bool {
	if len(codecs) == 0 {
		return false
	}
	videoCodecHints := []string{"x264", "x265", "h264", "h265", "hevc", "av1", "xvid", "divx"}
	for _, codec := range codecs {
		lowerCodec := strings.ToLower(codec)
		for _, hint := range videoCodecHints {
			if strings.Contains(lowerCodec, hint) {
				return true
			}
		}
	}
	return false
}

func containsVideoTokens(value string, tokens []string) bool {
	if value == "" {
		return false
	}
	lowerValue := strings.ToLower(value)
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if strings.Contains(lowerValue, token) {
			return true
		}
	}
	return false
}
