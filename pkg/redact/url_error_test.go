// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package redact

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantContain []string
		wantAbsent  []string
	}{
		{
			name: "torznab apikey",
			err: &url.Error{
				Op:  "Get",
				URL: "http://indexer.example.com/api?apikey=SECRET123&t=search&q=ufc+319",
				Err: errors.New("connection refused"),
			},
			wantContain: []string{"apikey=REDACTED", "connection refused"},
			wantAbsent:  []string{"SECRET123"},
		},
		{
			name: "multiple sensitive params",
			err: &url.Error{
				Op:  "Get",
				URL: "http://x.com?apikey=KEY1&passkey=KEY2&token=KEY3",
				Err: errors.New("timeout"),
			},
			wantContain: []string{"apikey=REDACTED", "passkey=REDACTED", "token=REDACTED"},
			wantAbsent:  []string{"KEY1", "KEY2", "KEY3"},
		},
		{
			name: "api_key and password variants",
			err: &url.Error{
				Op:  "Post",
				URL: "http://tracker.example.com?api_key=SECRETKEY&password=MYPASS",
				Err: errors.New("denied"),
			},
			wantContain: []string{"api_key=REDACTED", "password=REDACTED"},
			wantAbsent:  []string{"SECRETKEY", "MYPASS"},
		},
		{
			name:        "non-url error passes through",
			err:         errors.New("simple error"),
			wantContain: []string{"simple error"},
		},
		{
			name:        "wrapped url error",
			err:         fmt.Errorf("search failed: %w", &url.Error{Op: "Get", URL: "http://x.com?apikey=SECRET", Err: errors.New("fail")}),
			wantContain: []string{"apikey=REDACTED"},
			wantAbsent:  []string{"SECRET123", "apikey=SECRET"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := URLError(tt.err).Error()
			for _, want := range tt.wantContain {
				assert.Contains(t, got, want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, got, absent)
			}
		})
	}
}

func TestURLErrorNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, URLError(nil))
}

func TestURLErrorPreservesType(t *testing.T) {
	t.Parallel()

	original := &url.Error{
		Op:  "Get",
		URL: "http://x.com?apikey=SECRET",
		Err: errors.New("connection refused"),
	}

	var urlErr *url.Error
	require.ErrorAs(t, URLError(original), &urlErr)
	assert.Equal(t, "Get", urlErr.Op)
	assert.NotContains(t, urlErr.URL, "SECRET")
}
