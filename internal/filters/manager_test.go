// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torview/torview/internal/transmission"
)

type fakeStateStore struct {
	dirs     []string
	sections SectionSettings
	failAdd  bool
}

func (s *fakeStateStore) ListExpandedDirs() ([]string, error) {
	return s.dirs, nil
}

func (s *fakeStateStore) AddExpandedDir(path string) error {
	if s.failAdd {
		return errors.New("disk full")
	}
	s.dirs = append(s.dirs, path)
	return nil
}

func (s *fakeStateStore) RemoveExpandedDir(path string) error {
	out := s.dirs[:0]
	for _, p := range s.dirs {
		if p != path {
			out = append(out, p)
		}
	}
	s.dirs = out
	return nil
}

func (s *fakeStateStore) GetSectionSettings() (SectionSettings, error) {
	return s.sections, nil
}

func (s *fakeStateStore) SaveSectionSettings(settings SectionSettings) error {
	s.sections = settings
	return nil
}

func TestManagerLoadsPersistedState(t *testing.T) {
	store := &fakeStateStore{
		dirs: []string{"/data/", "/data/films/"},
		sections: SectionSettings{
			SectionStatus: {Visible: true, Order: 0},
		},
	}

	m, err := NewManager(store)
	require.NoError(t, err)

	assert.Equal(t, ExpandedPaths{"/data/", "/data/films/"}, m.Expanded())
	assert.Equal(t, store.sections, m.Sections())
	assert.True(t, m.ActiveSet().Contains("status-all"))
}

func TestManagerApplyVerbs(t *testing.T) {
	m, err := NewManager(nil)
	require.NoError(t, err)

	movies := Filter{Kind: KindLabel, Value: "movies"}

	require.NoError(t, m.Apply(Update{Verb: VerbSet, Filter: movies}))
	assert.Equal(t, 1, m.ActiveSet().Len())
	assert.True(t, m.ActiveSet().Contains("label-movies"))

	tracker := Filter{Kind: KindTracker, Value: "trackerA"}
	require.NoError(t, m.Apply(Update{Verb: VerbToggle, Filter: tracker}))
	assert.Equal(t, 2, m.ActiveSet().Len())

	require.NoError(t, m.Apply(Update{Verb: VerbToggle, Filter: tracker}))
	assert.Equal(t, 1, m.ActiveSet().Len())

	err = m.Apply(Update{Verb: "replace", Filter: movies})
	assert.Error(t, err)
}

func TestManagerExpansionPersists(t *testing.T) {
	store := &fakeStateStore{}
	m, err := NewManager(store)
	require.NoError(t, err)

	require.NoError(t, m.UpdateExpansion(ExpansionUpdate{Verb: VerbAdd, Path: "/data/"}))
	assert.Equal(t, []string{"/data/"}, store.dirs)
	assert.Equal(t, ExpandedPaths{"/data/"}, m.Expanded())

	require.NoError(t, m.UpdateExpansion(ExpansionUpdate{Verb: VerbRemove, Path: "/data/"}))
	assert.Empty(t, store.dirs)
	assert.Empty(t, m.Expanded())

	assert.Error(t, m.UpdateExpansion(ExpansionUpdate{Verb: "expand", Path: "/data/"}))
}

func TestManagerExpansionKeepsStateOnStoreFailure(t *testing.T) {
	store := &fakeStateStore{failAdd: true}
	m, err := NewManager(store)
	require.NoError(t, err)

	err = m.UpdateExpansion(ExpansionUpdate{Verb: VerbAdd, Path: "/data/"})
	require.Error(t, err)
	assert.Empty(t, m.Expanded())
}

func TestSetSectionsResetsActiveFilters(t *testing.T) {
	store := &fakeStateStore{}
	m, err := NewManager(store)
	require.NoError(t, err)

	require.NoError(t, m.Apply(Update{Verb: VerbSet, Filter: Filter{Kind: KindLabel, Value: "movies"}}))
	require.True(t, m.ActiveSet().Contains("label-movies"))

	settings := SectionSettings{
		SectionStatus: {Visible: true, Order: 0},
		SectionLabels: {Visible: false, Order: 1},
	}
	require.NoError(t, m.SetSections(settings))

	assert.Equal(t, settings, m.Sections())
	assert.False(t, m.ActiveSet().Contains("label-movies"))
	assert.True(t, m.ActiveSet().Contains("status-all"))
	assert.Equal(t, settings, store.sections)
}

func TestManagerSidebarUsesCurrentState(t *testing.T) {
	m, err := NewManager(nil)
	require.NoError(t, err)

	torrents := []transmission.Torrent{
		{Status: transmission.StatusDownloading, DownloadDir: "/data/films"},
		{Status: transmission.StatusSeeding, DownloadDir: "/data/music"},
	}

	require.NoError(t, m.UpdateExpansion(ExpansionUpdate{Verb: VerbAdd, Path: "/data/"}))
	groups := m.Sidebar(torrents)

	dirs := sidebarGroup(t, groups, SectionDirectories)
	require.Len(t, dirs.Entries, 3)
	assert.True(t, dirs.Entries[0].Expanded)
}
