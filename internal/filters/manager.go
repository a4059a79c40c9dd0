// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filters

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/torview/torview/internal/transmission"
)

// Update verbs accepted by the manager's entry points.
const (
	VerbSet    = "set"
	VerbToggle = "toggle"
	VerbAdd    = "add"
	VerbRemove = "remove"
)

// Update mutates the active filter selection.
type Update struct {
	Verb   string `json:"verb"`
	Filter Filter `json:"filter"`
}

// ExpansionUpdate mutates the expanded-directories list.
type ExpansionUpdate struct {
	Verb string `json:"verb"`
	Path string `json:"path"`
}

// StateStore persists the state that must survive restarts: the expanded
// directory paths and the section settings. The active selection is
// deliberately not persisted; each session starts at the default.
type StateStore interface {
	ListExpandedDirs() ([]string, error)
	AddExpandedDir(path string) error
	RemoveExpandedDir(path string) error
	GetSectionSettings() (SectionSettings, error)
	SaveSectionSettings(settings SectionSettings) error
}

// Manager guards the mutable sidebar state. The underlying values
// (ActiveSet, ExpandedPaths) are immutable snapshots, so readers never see a
// partially applied update; the mutex only orders the swaps.
type Manager struct {
	mu       sync.RWMutex
	active   ActiveSet
	expanded ExpandedPaths
	sections SectionSettings
	store    StateStore
}

// NewManager loads the persisted expansion and section state and starts with
// the default all-pass selection.
func NewManager(store StateStore) (*Manager, error) {
	m := &Manager{
		active:   DefaultActiveSet(),
		sections: DefaultSectionSettings(),
		store:    store,
	}
	if store == nil {
		return m, nil
	}

	dirs, err := store.ListExpandedDirs()
	if err != nil {
		return nil, fmt.Errorf("failed to load expanded directories: %w", err)
	}
	m.expanded = dirs

	sections, err := store.GetSectionSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load section settings: %w", err)
	}
	if sections != nil {
		m.sections = sections
	}
	return m, nil
}

// Apply mutates the active selection with set or toggle semantics.
func (m *Manager) Apply(u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch u.Verb {
	case VerbSet:
		m.active = m.active.Set(u.Filter)
	case VerbToggle:
		m.active = m.active.Toggle(u.Filter)
	default:
		return fmt.Errorf("unknown filter verb: %s", u.Verb)
	}

	log.Debug().
		Str("verb", u.Verb).
		Str("filterID", u.Filter.ID()).
		Int("activeCount", m.active.Len()).
		Msg("Active filter set updated")
	return nil
}

// UpdateExpansion adds or removes an expanded directory path and persists
// the change. The in-memory snapshot is only swapped after the store accepts
// the update, so a failed write leaves the previous state visible.
func (m *Manager) UpdateExpansion(u ExpansionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch u.Verb {
	case VerbAdd:
		if m.store != nil {
			if err := m.store.AddExpandedDir(u.Path); err != nil {
				return fmt.Errorf("failed to persist expanded directory: %w", err)
			}
		}
		m.expanded = m.expanded.Add(u.Path)
	case VerbRemove:
		if m.store != nil {
			if err := m.store.RemoveExpandedDir(u.Path); err != nil {
				return fmt.Errorf("failed to persist collapsed directory: %w", err)
			}
		}
		m.expanded = m.expanded.Remove(u.Path)
	default:
		return fmt.Errorf("unknown expansion verb: %s", u.Verb)
	}

	log.Debug().
		Str("verb", u.Verb).
		Str("path", u.Path).
		Int("expandedCount", len(m.expanded)).
		Msg("Directory expansion state updated")
	return nil
}

// SetSections replaces the section visibility settings. Changing which
// groups are visible invalidates the current selection, so the active set
// resets to the default.
func (m *Manager) SetSections(settings SectionSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		if err := m.store.SaveSectionSettings(settings); err != nil {
			return fmt.Errorf("failed to persist section settings: %w", err)
		}
	}
	m.sections = settings
	m.active = DefaultActiveSet()

	log.Debug().Msg("Section settings updated, active filters reset")
	return nil
}

// ActiveSet returns the current selection snapshot.
func (m *Manager) ActiveSet() ActiveSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Expanded returns the current expanded-paths snapshot.
func (m *Manager) Expanded() ExpandedPaths {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expanded
}

// Sections returns the current section settings.
func (m *Manager) Sections() SectionSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sections
}

// Sidebar derives the rendered groups from a torrent collection snapshot
// and the manager's current state.
func (m *Manager) Sidebar(torrents []transmission.Torrent) []Group {
	m.mu.RLock()
	active, expanded, sections := m.active, m.expanded, m.sections
	m.mu.RUnlock()
	return BuildSidebar(torrents, expanded, sections, active)
}
