// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package transmission

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"
)

const allTorrentsKey = "all_torrents"

// TorrentStats are the aggregate numbers shown above the list.
type TorrentStats struct {
	Total              int   `json:"total"`
	Downloading        int   `json:"downloading"`
	Seeding            int   `json:"seeding"`
	Stopped            int   `json:"stopped"`
	Error              int   `json:"error"`
	Verifying          int   `json:"verifying"`
	TotalDownloadSpeed int64 `json:"totalDownloadSpeed"`
	TotalUploadSpeed   int64 `json:"totalUploadSpeed"`
}

// SyncManager owns the cached torrent collection. All list derivations
// (filtering, search, counts) run against the same cached snapshot so the
// sidebar and the table can never disagree.
type SyncManager struct {
	client *Client
	cache  *ristretto.Cache
}

// NewSyncManager creates a sync manager with its own cache.
func NewSyncManager(client *Client) (*SyncManager, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 28, // 256MB
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &SyncManager{client: client, cache: cache}, nil
}

// Close releases the cache.
func (sm *SyncManager) Close() {
	sm.cache.Close()
}

// GetTorrents returns the full torrent collection, served from cache when
// fresh. The cache TTL scales with the daemon's response time: a slow
// daemon is polled less often.
func (sm *SyncManager) GetTorrents(ctx context.Context) ([]Torrent, error) {
	if cached, found := sm.cache.Get(allTorrentsKey); found {
		if torrents, ok := cached.([]Torrent); ok {
			log.Trace().Int("torrents", len(torrents)).Msg("Torrent cache hit")
			return torrents, nil
		}
	}

	startTime := time.Now()
	torrents, err := sm.client.FetchTorrents(ctx)
	if err != nil {
		return nil, err
	}
	responseTime := time.Since(startTime)

	var cacheTTL time.Duration
	switch {
	case responseTime > 5*time.Second:
		cacheTTL = 60 * time.Second
	case responseTime > 2*time.Second:
		cacheTTL = 30 * time.Second
	case responseTime > 1*time.Second:
		cacheTTL = 15 * time.Second
	case responseTime > 500*time.Millisecond:
		cacheTTL = 5 * time.Second
	default:
		cacheTTL = 2 * time.Second
	}
	sm.cache.SetWithTTL(allTorrentsKey, torrents, 1, cacheTTL)

	log.Debug().
		Int("torrents", len(torrents)).
		Dur("responseTime", responseTime).
		Dur("cacheTTL", cacheTTL).
		Msg("Fetched torrents from transmission")

	return torrents, nil
}

// InvalidateCache drops the cached collection so the next read refetches.
func (sm *SyncManager) InvalidateCache() {
	sm.cache.Del(allTorrentsKey)
}

// BulkAction performs an action on the given torrents and patches the cached
// snapshot optimistically so the UI reflects the change before the next
// fetch.
func (sm *SyncManager) BulkAction(ctx context.Context, ids []int64, action string) error {
	var err error
	switch action {
	case "start":
		err = sm.client.StartTorrents(ctx, ids)
	case "stop":
		err = sm.client.StopTorrents(ctx, ids)
	case "verify":
		err = sm.client.VerifyTorrents(ctx, ids)
	case "remove":
		err = sm.client.RemoveTorrents(ctx, ids, false)
	case "removeWithData":
		err = sm.client.RemoveTorrents(ctx, ids, true)
		action = "remove"
	default:
		return fmt.Errorf("unknown bulk action: %s", action)
	}
	if err != nil {
		return err
	}

	sm.applyOptimisticUpdate(ids, action)
	return nil
}

// applyOptimisticUpdate rewrites the cached torrents to match the expected
// outcome of an action. A short TTL keeps the guess from outliving the next
// real fetch by much.
func (sm *SyncManager) applyOptimisticUpdate(ids []int64, action string) {
	cached, found := sm.cache.Get(allTorrentsKey)
	if !found {
		return
	}
	torrents, ok := cached.([]Torrent)
	if !ok {
		return
	}

	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	updated := make([]Torrent, 0, len(torrents))
	for _, t := range torrents {
		if !idSet[t.ID] {
			updated = append(updated, t)
			continue
		}
		switch action {
		case "start":
			if t.LeftUntilDone() > 0 {
				t.Status = StatusDownloading
			} else {
				t.Status = StatusSeeding
			}
		case "stop":
			t.Status = StatusStopped
			t.RateDownload = 0
			t.RateUpload = 0
		case "verify":
			t.Status = StatusVerifying
			t.RateDownload = 0
			t.RateUpload = 0
		case "remove":
			continue
		}
		updated = append(updated, t)
	}

	sm.cache.SetWithTTL(allTorrentsKey, updated, 1, 5*time.Second)
	log.Debug().Int("count", len(ids)).Str("action", action).Msg("Applied optimistic cache update")
}

// CalculateStats aggregates list-level statistics.
func (sm *SyncManager) CalculateStats(torrents []Torrent) *TorrentStats {
	stats := &TorrentStats{Total: len(torrents)}
	for _, t := range torrents {
		stats.TotalDownloadSpeed += t.RateDownload
		stats.TotalUploadSpeed += t.RateUpload

		switch t.Status {
		case StatusDownloading, StatusQueuedToDownload:
			stats.Downloading++
		case StatusSeeding, StatusQueuedToSeed:
			stats.Seeding++
		case StatusStopped:
			stats.Stopped++
		case StatusVerifying, StatusQueuedToVerify:
			stats.Verifying++
		}
		if t.Error != 0 || t.ErrorString != "" {
			stats.Error++
		}
	}
	return stats
}

// SessionSpeeds returns daemon-wide transfer rates, cached briefly.
func (sm *SyncManager) SessionSpeeds(ctx context.Context) (int64, int64, error) {
	type speeds struct{ down, up int64 }

	if cached, found := sm.cache.Get("session_speeds"); found {
		if s, ok := cached.(speeds); ok {
			return s.down, s.up, nil
		}
	}

	down, up, err := sm.client.SessionSpeeds(ctx)
	if err != nil {
		return 0, 0, err
	}
	sm.cache.SetWithTTL("session_speeds", speeds{down, up}, 1, 2*time.Second)
	return down, up, nil
}

// normalizeForSearch replaces the separators common in torrent names with
// spaces so "The.Name.2024" matches "the name".
func normalizeForSearch(text string) string {
	replacers := []string{".", "_", "-", "[", "]", "(", ")", "{", "}"}
	normalized := strings.ToLower(text)
	for _, r := range replacers {
		normalized = strings.ReplaceAll(normalized, r, " ")
	}
	return strings.Join(strings.Fields(normalized), " ")
}

// Search filters torrents by a query, ranked: exact substring first, then
// separator-normalized, then all-words, then fuzzy name matches. A query
// containing glob metacharacters switches to glob matching instead.
func (sm *SyncManager) Search(torrents []Torrent, search string) []Torrent {
	if search == "" {
		return torrents
	}

	if strings.ContainsAny(search, "*?[") {
		return sm.searchGlob(torrents, search)
	}

	type match struct {
		torrent Torrent
		score   int
	}

	var matches []match
	searchLower := strings.ToLower(search)
	searchNormalized := normalizeForSearch(search)
	searchWords := strings.Fields(searchNormalized)

	for _, t := range torrents {
		nameLower := strings.ToLower(t.Name)
		labelsLower := strings.ToLower(strings.Join(t.Labels, " "))

		if strings.Contains(nameLower, searchLower) || strings.Contains(labelsLower, searchLower) {
			matches = append(matches, match{t, 0})
			continue
		}

		nameNormalized := normalizeForSearch(t.Name)
		if strings.Contains(nameNormalized, searchNormalized) {
			matches = append(matches, match{t, 1})
			continue
		}

		if len(searchWords) > 1 {
			haystack := nameNormalized + " " + labelsLower
			allFound := true
			for _, word := range searchWords {
				if !strings.Contains(haystack, word) {
					allFound = false
					break
				}
			}
			if allFound {
				matches = append(matches, match{t, 2})
				continue
			}
		}

		if fuzzy.MatchNormalizedFold(searchNormalized, nameNormalized) {
			score := fuzzy.RankMatchNormalizedFold(searchNormalized, nameNormalized)
			if score < 10 {
				matches = append(matches, match{t, 3 + score})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})

	filtered := make([]Torrent, len(matches))
	for i, m := range matches {
		filtered[i] = m.torrent
	}

	log.Debug().
		Str("search", search).
		Int("total", len(torrents)).
		Int("matched", len(filtered)).
		Msg("Search completed")

	return filtered
}

// searchGlob matches torrent names and labels against a glob pattern.
func (sm *SyncManager) searchGlob(torrents []Torrent, pattern string) []Torrent {
	patternLower := strings.ToLower(pattern)

	var filtered []Torrent
	for _, t := range torrents {
		matched, err := filepath.Match(patternLower, strings.ToLower(t.Name))
		if err != nil {
			log.Debug().Str("pattern", pattern).Err(err).Msg("Invalid glob pattern")
			return nil
		}
		if matched {
			filtered = append(filtered, t)
			continue
		}
		for _, label := range t.Labels {
			if matched, _ := filepath.Match(patternLower, strings.ToLower(label)); matched {
				filtered = append(filtered, t)
				break
			}
		}
	}
	return filtered
}

// SortTorrents sorts in place by the given field and order.
func (sm *SyncManager) SortTorrents(torrents []Torrent, sortField, order string) {
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	sort.SliceStable(torrents, func(i, j int) bool {
		var less bool
		switch sortField {
		case "name":
			less = strings.ToLower(torrents[i].Name) < strings.ToLower(torrents[j].Name)
		case "size":
			less = torrents[i].TotalSize < torrents[j].TotalSize
		case "progress":
			less = progress(torrents[i]) < progress(torrents[j])
		case "dlspeed":
			less = torrents[i].RateDownload < torrents[j].RateDownload
		case "upspeed":
			less = torrents[i].RateUpload < torrents[j].RateUpload
		case "eta":
			less = torrents[i].ETA < torrents[j].ETA
		case "ratio":
			less = torrents[i].UploadRatio < torrents[j].UploadRatio
		case "status":
			less = torrents[i].Status < torrents[j].Status
		default:
			less = torrents[i].AddedOn < torrents[j].AddedOn
		}
		if order == "desc" {
			return !less
		}
		return less
	})
}

func progress(t Torrent) float64 {
	if t.SizeWhenDone == 0 {
		return 0
	}
	return float64(t.HaveValid) / float64(t.SizeWhenDone)
}
