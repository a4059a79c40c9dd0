// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package transmission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyncManager(t *testing.T) *SyncManager {
	t.Helper()
	sm, err := NewSyncManager(nil)
	require.NoError(t, err)
	t.Cleanup(sm.Close)
	return sm
}

func TestNormalizeForSearch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The.Movie.2024.1080p", "the movie 2024 1080p"},
		{"Some_Name-Here", "some name here"},
		{"[Group] Title (2024)", "group title 2024"},
		{"already normal", "already normal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeForSearch(tt.input), "input %q", tt.input)
	}
}

func TestSearch(t *testing.T) {
	sm := newTestSyncManager(t)

	torrents := []Torrent{
		{Name: "The.Movie.2024.1080p.BluRay"},
		{Name: "Another Show S01E01"},
		{Name: "linux-distro-24.04.iso", Labels: []string{"software"}},
	}

	t.Run("empty search returns all", func(t *testing.T) {
		assert.Len(t, sm.Search(torrents, ""), 3)
	})

	t.Run("exact substring", func(t *testing.T) {
		result := sm.Search(torrents, "Another")
		require.Len(t, result, 1)
		assert.Equal(t, "Another Show S01E01", result[0].Name)
	})

	t.Run("normalized separators", func(t *testing.T) {
		result := sm.Search(torrents, "the movie 2024")
		require.Len(t, result, 1)
		assert.Equal(t, "The.Movie.2024.1080p.BluRay", result[0].Name)
	})

	t.Run("label match", func(t *testing.T) {
		result := sm.Search(torrents, "software")
		require.Len(t, result, 1)
		assert.Equal(t, "linux-distro-24.04.iso", result[0].Name)
	})

	t.Run("glob pattern", func(t *testing.T) {
		result := sm.Search(torrents, "*.iso")
		require.Len(t, result, 1)
		assert.Equal(t, "linux-distro-24.04.iso", result[0].Name)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, sm.Search(torrents, "zzzzzz"))
	})
}

func TestSortTorrents(t *testing.T) {
	sm := newTestSyncManager(t)

	torrents := []Torrent{
		{Name: "beta", TotalSize: 300, AddedOn: 2},
		{Name: "Alpha", TotalSize: 100, AddedOn: 3},
		{Name: "gamma", TotalSize: 200, AddedOn: 1},
	}

	sm.SortTorrents(torrents, "name", "asc")
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, []string{torrents[0].Name, torrents[1].Name, torrents[2].Name})

	sm.SortTorrents(torrents, "size", "desc")
	assert.Equal(t, int64(300), torrents[0].TotalSize)
	assert.Equal(t, int64(100), torrents[2].TotalSize)

	// Unknown field falls back to added date, default order is descending.
	sm.SortTorrents(torrents, "bogus", "")
	assert.Equal(t, int64(3), torrents[0].AddedOn)
}

func TestCalculateStats(t *testing.T) {
	sm := newTestSyncManager(t)

	torrents := []Torrent{
		{Status: StatusDownloading, RateDownload: 1000},
		{Status: StatusSeeding, RateUpload: 500},
		{Status: StatusStopped},
		{Status: StatusVerifying},
		{Status: StatusSeeding, ErrorString: "tracker error", RateUpload: 100},
	}

	stats := sm.CalculateStats(torrents)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Downloading)
	assert.Equal(t, 2, stats.Seeding)
	assert.Equal(t, 1, stats.Stopped)
	assert.Equal(t, 1, stats.Verifying)
	assert.Equal(t, 1, stats.Error)
	assert.Equal(t, int64(1000), stats.TotalDownloadSpeed)
	assert.Equal(t, int64(600), stats.TotalUploadSpeed)
}

func TestBulkActionUnknownAction(t *testing.T) {
	sm := newTestSyncManager(t)

	err := sm.BulkAction(t.Context(), []int64{1}, "explode")
	assert.Error(t, err)
}

func TestLeftUntilDone(t *testing.T) {
	assert.Equal(t, int64(50), Torrent{SizeWhenDone: 100, HaveValid: 50}.LeftUntilDone())
	assert.Equal(t, int64(0), Torrent{SizeWhenDone: 100, HaveValid: 100}.LeftUntilDone())
	// Clamped when the daemon over-reports valid data.
	assert.Equal(t, int64(0), Torrent{SizeWhenDone: 100, HaveValid: 120}.LeftUntilDone())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "stopped", StatusStopped.String())
	assert.Equal(t, "downloading", StatusDownloading.String())
	assert.Equal(t, "seeding", StatusSeeding.String())
	assert.Equal(t, "unknown", Status(99).String())
}

func TestTrackerHost(t *testing.T) {
	tests := []struct {
		announce string
		expected string
	}{
		{"http://tracker.example.org:6969/announce", "tracker.example.org"},
		{"udp://open.tracker.net:1337", "open.tracker.net"},
		{"", ""},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, trackerHost(tt.announce), "announce %q", tt.announce)
	}
}
