// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact scrubs credentials out of errors before they reach logs.
package redact

import (
	"errors"
	"net/url"
)

var sensitiveParams = []string{
	"apikey",
	"api_key",
	"passkey",
	"password",
	"token",
	"secret",
}

// URLError returns err with any sensitive query parameters in an embedded
// url.Error replaced by REDACTED. The url.Error type is preserved so
// errors.As keeps working; non-url errors pass through unchanged.
func URLError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErr.Op,
		URL: redactURL(urlErr.URL),
		Err: urlErr.Err,
	}
}

func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := u.Query()
	changed := false
	for _, param := range sensitiveParams {
		if query.Has(param) {
			query.Set(param, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = query.Encode()
	return u.String()
}
