// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package torznab implements a direct Torznab API client for feed syncs and
// searches against Jackett, Prowlarr, or native Torznab endpoints.
package torznab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/buildinfo"
	"github.com/autobrr/sportarr/pkg/redact"
)

const maxTorrentDownloadBytes int64 = 16 << 20 // safety limit for torrent blobs

// DownloadError represents an HTTP error during torrent download.
// It preserves the status code for rate-limit detection and retry logic.
type DownloadError struct {
	StatusCode int
	URL        string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("torrent download from %s returned status %d", e.URL, e.StatusCode)
}

func (e *DownloadError) Is(target error) bool {
	_, ok := target.(*DownloadError)
	return ok
}

// IsRateLimited returns true if this error indicates rate limiting (HTTP 429).
func (e *DownloadError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Client talks to a single Torznab endpoint.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a Torznab client for one indexer endpoint.
func NewClient(name, baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// SearchParams narrows a Torznab query.
type SearchParams struct {
	// Query is the free-text search term. Empty means an RSS-style fetch of
	// the newest entries.
	Query string
	// Categories limits results to the given Torznab category IDs.
	Categories []int
	// Limit caps the number of returned entries (0 = server default).
	Limit int
}

// Search runs a search (t=search) or feed fetch against the endpoint. Failed
// requests are retried with backoff before the error is surfaced.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Result, error) {
	endpoint, err := c.buildURL(params)
	if err != nil {
		return nil, err
	}

	var results []Result
	err = retry.Do(
		func() error {
			var attemptErr error
			results, attemptErr = c.fetch(ctx, endpoint)
			return attemptErr
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("attempt", n+1).Str("indexer", c.name).Msg("retrying torznab request")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("torznab search on %s: %w", c.name, err)
	}

	return results, nil
}

func (c *Client) buildURL(params SearchParams) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse torznab endpoint: %w", err)
	}

	query := parsed.Query()
	query.Set("t", "search")
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if len(params.Categories) > 0 {
		cats := make([]string, 0, len(params.Categories))
		for _, cat := range params.Categories {
			cats = append(cats, strconv.Itoa(cat))
		}
		query.Set("cat", strings.Join(cats, ","))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build torznab request: %w", err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("torznab request failed: %w", redact.URLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("torznab endpoint returned status %d", resp.StatusCode)
	}

	results, err := parseFeed(resp.Body, c.name)
	if err != nil {
		return nil, fmt.Errorf("parse torznab feed: %w", err)
	}
	return results, nil
}

// Download retrieves the raw torrent bytes for the provided download URL.
func (c *Client) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	if strings.TrimSpace(downloadURL) == "" {
		return nil, fmt.Errorf("download URL is required")
	}

	// Normalise relative URLs
	if !strings.HasPrefix(downloadURL, "http://") && !strings.HasPrefix(downloadURL, "https://") {
		downloadURL = c.baseURL + "/" + strings.TrimLeft(downloadURL, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Accept", "application/x-bittorrent, application/octet-stream")
	req.Header.Set("User-Agent", buildinfo.UserAgent)

	if c.apiKey != "" && !strings.Contains(downloadURL, "apikey=") {
		query := req.URL.Query()
		query.Set("apikey", c.apiKey)
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("torrent download failed: %w", redact.URLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &DownloadError{StatusCode: resp.StatusCode, URL: downloadURL}
	}

	limitedReader := io.LimitReader(resp.Body, maxTorrentDownloadBytes+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("read torrent body: %w", err)
	}
	if int64(len(data)) > maxTorrentDownloadBytes {
		return nil, fmt.Errorf("torrent download exceeded %d bytes limit", maxTorrentDownloadBytes)
	}

	return data, nil
}
