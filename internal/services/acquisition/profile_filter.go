// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package acquisition

import (
	"fmt"
	"strings"

	"github.com/autobrr/sportarr/internal/models"
)

// ApplyReleaseProfiles runs the required/ignored keyword rules and the
// preferred-term scoring of every applicable release profile against eval.
// A rejection here is absolute; the preferred score only shifts ranking.
func ApplyReleaseProfiles(eval *Evaluation, profiles []*models.ReleaseProfile) {
	lowTitle := strings.ToLower(eval.Release.Title)

	for _, profile := range profiles {
		if !profile.Enabled || !profile.AppliesTo(eval.Release.IndexerID) {
			continue
		}

		rejected := false
		for _, required := range profile.Required {
			if !strings.Contains(lowTitle, strings.ToLower(required)) {
				eval.Reject(fmt.Sprintf("missing required keyword %q", required))
				rejected = true
			}
		}
		for _, ignored := range profile.Ignored {
			if strings.Contains(lowTitle, strings.ToLower(ignored)) {
				eval.Reject(fmt.Sprintf("contains ignored keyword %q", ignored))
				rejected = true
			}
		}
		if rejected {
			continue
		}

		for term, score := range profile.Preferred {
			if strings.Contains(lowTitle, strings.ToLower(term)) {
				eval.PreferredScore += score
			}
		}
	}
}
