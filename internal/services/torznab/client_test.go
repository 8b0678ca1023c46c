// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torznab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:torznab="http://torznab.com/schemas/2015/feed">
  <channel>
    <title>sports-indexer</title>
    <item>
      <title>UFC.300.Pereira.vs.Hill.1080p.WEB.h264-GRP</title>
      <guid>https://indexer.example/details/1</guid>
      <comments>https://indexer.example/details/1</comments>
      <pubDate>Sat, 13 Apr 2026 04:30:00 +0000</pubDate>
      <size>4294967296</size>
      <category>5060</category>
      <enclosure url="https://indexer.example/dl/1.torrent" length="4294967296" type="application/x-bittorrent" />
      <attr name="seeders" value="120" xmlns="http://torznab.com/schemas/2015/feed" />
      <attr name="peers" value="150" xmlns="http://torznab.com/schemas/2015/feed" />
      <attr name="infohash" value="ABCDEF0123456789ABCDEF0123456789ABCDEF01" xmlns="http://torznab.com/schemas/2015/feed" />
    </item>
    <item>
      <title>UFC.300.Prelims.720p.HDTV.x264-GRP</title>
      <guid>https://indexer.example/details/2</guid>
      <size>invalid</size>
      <enclosure url="https://indexer.example/dl/2.torrent" type="application/x-bittorrent" />
    </item>
  </channel>
</rss>`

func TestClientSearch(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient("sports-indexer", srv.URL, "test-key", 10*time.Second)

	results, err := client.Search(context.Background(), SearchParams{
		Query:      "UFC 300",
		Categories: []int{5060, 5070},
		Limit:      100,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "search", gotQuery["t"][0])
	assert.Equal(t, "test-key", gotQuery["apikey"][0])
	assert.Equal(t, "UFC 300", gotQuery["q"][0])
	assert.Equal(t, "5060,5070", gotQuery["cat"][0])
	assert.Equal(t, "100", gotQuery["limit"][0])

	first := results[0]
	assert.Equal(t, "sports-indexer", first.Indexer)
	assert.Equal(t, "UFC.300.Pereira.vs.Hill.1080p.WEB.h264-GRP", first.Title)
	assert.Equal(t, "https://indexer.example/dl/1.torrent", first.Link)
	assert.Equal(t, int64(4294967296), first.Size)
	assert.Equal(t, 120, first.Seeders)
	assert.Equal(t, 150, first.Peers)
	assert.Equal(t, "abcdef0123456789abcdef0123456789abcdef01", first.InfoHash)
	assert.Equal(t, "5060", first.Category)
	assert.Equal(t, 2026, first.PublishDate.Year())

	// Unparseable size falls back to zero.
	assert.Zero(t, results[1].Size)
}

func TestClientSearchRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient("flaky", srv.URL, "", 10*time.Second)

	results, err := client.Search(context.Background(), SearchParams{Query: "UFC"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 3, calls)
}

func TestClientDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "limited") {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("d8:announce0:e"))
	}))
	defer srv.Close()

	client := NewClient("indexer", srv.URL, "key", 10*time.Second)

	data, err := client.Download(context.Background(), srv.URL+"/dl/1.torrent")
	require.NoError(t, err)
	assert.Equal(t, []byte("d8:announce0:e"), data)

	_, err = client.Download(context.Background(), srv.URL+"/limited.torrent")
	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.True(t, dlErr.IsRateLimited())

	_, err = client.Download(context.Background(), "   ")
	assert.Error(t, err)
}
