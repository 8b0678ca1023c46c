// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torznab

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/autobrr/sportarr/pkg/hashutil"
	"github.com/autobrr/sportarr/pkg/stringutils"
)

// rss mirrors the Torznab feed envelope.
type rss struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title     string   `xml:"title"`
	GUID      string   `xml:"guid"`
	Comments  string   `xml:"comments"`
	PubDate   string   `xml:"pubDate"`
	Size      string   `xml:"size"`
	Category  []string `xml:"category"`
	Enclosure struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
	Attrs []torznabAttr `xml:"attr"`
}

type torznabAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Result is a single feed entry in simplified form.
type Result struct {
	Indexer     string
	Title       string
	Link        string
	Details     string
	GUID        string
	InfoHash    string
	PublishDate time.Time
	Category    string
	Size        int64
	Seeders     int
	Peers       int
	// Attributes stores every Torznab attribute with lowercase keys.
	Attributes map[string]string
}

// parseFeed decodes a Torznab RSS document into Results.
func parseFeed(r io.Reader, indexerName string) ([]Result, error) {
	var doc rss
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		// Indexer names and categories repeat across every feed entry,
		// so intern them.
		result := Result{
			Indexer: stringutils.Intern(indexerName),
			Title:   item.Title,
			Link:    item.Enclosure.URL,
			Details: item.Comments,
			GUID:    item.GUID,
		}
		if result.Indexer == "" {
			result.Indexer = stringutils.Intern(doc.Channel.Title)
		}

		if size, err := strconv.ParseInt(strings.TrimSpace(item.Size), 10, 64); err == nil {
			result.Size = size
		}

		if item.PubDate != "" {
			if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
				result.PublishDate = t
			} else if t, err := time.Parse(time.RFC1123, item.PubDate); err == nil {
				result.PublishDate = t
			}
		}

		if len(item.Category) > 0 {
			result.Category = stringutils.Intern(item.Category[0])
		}

		attrMap := make(map[string]string, len(item.Attrs))
		for _, attr := range item.Attrs {
			name := stringutils.InternNormalized(attr.Name)
			if name == "" {
				continue
			}
			attrMap[name] = attr.Value
			switch name {
			case "seeders":
				if v, err := strconv.Atoi(attr.Value); err == nil {
					result.Seeders = v
				}
			case "peers":
				if v, err := strconv.Atoi(attr.Value); err == nil {
					result.Peers = v
				}
			case "infohash":
				result.InfoHash = hashutil.Normalize(attr.Value)
			}
		}
		result.Attributes = attrMap

		results = append(results, result)
	}

	return results, nil
}
