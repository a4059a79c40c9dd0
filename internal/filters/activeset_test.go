// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torview/torview/internal/transmission"
)

func TestDefaultActiveSetMatchesEverything(t *testing.T) {
	s := DefaultActiveSet()

	require.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("status-all"))
	assert.True(t, s.Match(transmission.Torrent{Status: transmission.StatusStopped}))
	assert.True(t, s.Match(transmission.Torrent{Status: transmission.StatusDownloading, Error: 1}))
}

func TestActiveSetSetYieldsSingleton(t *testing.T) {
	s := DefaultActiveSet()
	s = s.Toggle(Filter{Kind: KindLabel, Value: "movies"})
	s = s.Toggle(Filter{Kind: KindTracker, Value: "tracker.example.org"})
	require.Equal(t, 3, s.Len())

	s = s.Set(Filter{Kind: KindStatus, Value: StatusDownloading})

	require.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("status-downloading"))
	assert.False(t, s.Contains("label-movies"))
}

func TestActiveSetToggleRoundTrip(t *testing.T) {
	before := DefaultActiveSet()
	f := Filter{Kind: KindLabel, Value: "movies"}

	once := before.Toggle(f)
	assert.True(t, once.Contains(f.ID()))
	assert.Equal(t, before.Len()+1, once.Len())

	twice := once.Toggle(f)
	assert.False(t, twice.Contains(f.ID()))
	assert.Equal(t, before.Filters(), twice.Filters())
}

func TestActiveSetToggleKeepsIDsUnique(t *testing.T) {
	s := ActiveSet{}
	f := Filter{Kind: KindDir, Value: "/data/"}

	s = s.Toggle(f)
	s = s.Toggle(f)
	s = s.Toggle(f)

	require.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("dir-/data/"))
}

func TestActiveSetValueSemantics(t *testing.T) {
	base := DefaultActiveSet()
	_ = base.Toggle(Filter{Kind: KindLabel, Value: "movies"})
	_ = base.Set(Filter{Kind: KindStatus, Value: StatusError})

	// The receiver is unchanged by either operation.
	require.Equal(t, 1, base.Len())
	assert.True(t, base.Contains("status-all"))
}

func TestCombinedPredicateIsConjunction(t *testing.T) {
	s := ActiveSet{}
	s = s.Toggle(Filter{Kind: KindLabel, Value: "movies"})
	s = s.Toggle(Filter{Kind: KindTracker, Value: "trackerA"})

	both := transmission.Torrent{Labels: []string{"movies"}, Tracker: "trackerA"}
	labelOnly := transmission.Torrent{Labels: []string{"movies"}, Tracker: "trackerB"}
	trackerOnly := transmission.Torrent{Labels: []string{"tv"}, Tracker: "trackerA"}

	assert.True(t, s.Match(both))
	assert.False(t, s.Match(labelOnly))
	assert.False(t, s.Match(trackerOnly))
}

func TestEmptyActiveSetMatchesEverything(t *testing.T) {
	s := ActiveSet{}

	assert.True(t, s.Match(transmission.Torrent{}))
	assert.True(t, s.Match(transmission.Torrent{Status: transmission.StatusSeeding}))
}

func TestActiveSetApply(t *testing.T) {
	torrents := []transmission.Torrent{
		{Name: "a", Labels: []string{"movies"}, Tracker: "trackerA"},
		{Name: "b", Labels: []string{"movies"}},
		{Name: "c", Tracker: "trackerA"},
	}

	s := ActiveSet{}
	s = s.Toggle(Filter{Kind: KindLabel, Value: "movies"})
	s = s.Toggle(Filter{Kind: KindTracker, Value: "trackerA"})

	filtered := s.Apply(torrents)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].Name)
}
