// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filters

import "github.com/torview/torview/internal/transmission"

// ActiveSet is the ordered collection of currently applied filters, unique
// by ID. It has value semantics: Set and Toggle return the updated set and
// leave the receiver untouched, so snapshots handed to a render pass can
// never observe a half-applied update.
type ActiveSet struct {
	filters []Filter
}

// DefaultActiveSet returns the initial selection: the all-pass status filter.
func DefaultActiveSet() ActiveSet {
	return ActiveSet{filters: []Filter{{Kind: KindStatus, Value: StatusAll}}}
}

// Set replaces the whole selection with the single supplied filter. This is
// the plain-click behavior.
func (s ActiveSet) Set(f Filter) ActiveSet {
	return ActiveSet{filters: []Filter{f}}
}

// Toggle removes the filter if one with the same ID is already selected,
// otherwise appends it. This is the modifier-click multi-select behavior;
// applying Toggle twice with the same filter is a no-op overall.
func (s ActiveSet) Toggle(f Filter) ActiveSet {
	out := make([]Filter, 0, len(s.filters)+1)
	found := false
	for _, existing := range s.filters {
		if existing.ID() == f.ID() {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, f)
	}
	return ActiveSet{filters: out}
}

// Contains reports whether a filter with the given ID is selected.
func (s ActiveSet) Contains(id string) bool {
	for _, f := range s.filters {
		if f.ID() == id {
			return true
		}
	}
	return false
}

// Filters returns the selection in order.
func (s ActiveSet) Filters() []Filter {
	out := make([]Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

// Len returns the number of selected filters.
func (s ActiveSet) Len() int {
	return len(s.filters)
}

// Match is the combined predicate: a torrent must satisfy every selected
// filter. An empty selection matches everything, which is also what the
// default all-pass selection yields.
func (s ActiveSet) Match(t transmission.Torrent) bool {
	for _, f := range s.filters {
		if !f.Match(t) {
			return false
		}
	}
	return true
}

// Apply returns the torrents satisfying the combined predicate.
func (s ActiveSet) Apply(torrents []transmission.Torrent) []transmission.Torrent {
	filtered := make([]transmission.Torrent, 0, len(torrents))
	for _, t := range torrents {
		if s.Match(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
