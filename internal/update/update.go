// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package update checks GitHub releases for a newer torview version.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
)

const (
	latestReleaseURL = "https://api.github.com/repos/torview/torview/releases/latest"

	// CheckTimeout bounds the whole release lookup.
	CheckTimeout = 10 * time.Second
)

type release struct {
	TagName string `json:"tag_name"`
}

// Check fetches the latest release tag and compares it against the running
// version. Development builds ("dev" or otherwise unparseable) never report
// a newer release.
func Check(ctx context.Context, current string) (latest string, newer bool, err error) {
	currentVersion, err := semver.NewVersion(current)
	if err != nil {
		log.Debug().Str("version", current).Msg("Skipping update check for non-release build")
		return "", false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestReleaseURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("unexpected status %d from release lookup", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", false, fmt.Errorf("failed to decode release response: %w", err)
	}

	latestVersion, err := semver.NewVersion(rel.TagName)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse release tag %q: %w", rel.TagName, err)
	}

	return rel.TagName, latestVersion.GreaterThan(currentVersion), nil
}

// IsNewer reports whether candidate is a strictly newer release than current.
func IsNewer(current, candidate string) (bool, error) {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("failed to parse current version %q: %w", current, err)
	}
	cand, err := semver.NewVersion(candidate)
	if err != nil {
		return false, fmt.Errorf("failed to parse candidate version %q: %w", candidate, err)
	}
	return cand.GreaterThan(cur), nil
}
