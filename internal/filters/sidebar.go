// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package filters

import (
	"sort"

	"github.com/torview/torview/internal/transmission"
)

// Section identifies a sidebar filter group.
type Section string

const (
	SectionStatus      Section = "status"
	SectionDirectories Section = "directories"
	SectionLabels      Section = "labels"
	SectionTrackers    Section = "trackers"
)

var sectionTitles = map[Section]string{
	SectionStatus:      "Status",
	SectionDirectories: "Directories",
	SectionLabels:      "Labels",
	SectionTrackers:    "Trackers",
}

// SectionSetting controls visibility and relative position of one group.
type SectionSetting struct {
	Visible bool `json:"visible"`
	Order   int  `json:"order"`
}

// SectionSettings maps each group to its setting. The settings are owned by
// the UI configuration; the engine only reacts to them.
type SectionSettings map[Section]SectionSetting

// DefaultSectionSettings shows all groups in the standard order.
func DefaultSectionSettings() SectionSettings {
	return SectionSettings{
		SectionStatus:      {Visible: true, Order: 0},
		SectionDirectories: {Visible: true, Order: 1},
		SectionLabels:      {Visible: true, Order: 2},
		SectionTrackers:    {Visible: true, Order: 3},
	}
}

// visibleInOrder returns the visible sections sorted by their order index.
func (s SectionSettings) visibleInOrder() []Section {
	var out []Section
	for section, setting := range s {
		if setting.Visible {
			out = append(out, section)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := s[out[i]], s[out[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return out[i] < out[j]
	})
	return out
}

// Entry is one selectable row in a sidebar group.
type Entry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Filter     Filter `json:"filter"`
	Count      int    `json:"count"`
	Active     bool   `json:"active"`
	Level      int    `json:"level,omitempty"`
	Expandable bool   `json:"expandable,omitempty"`
	Expanded   bool   `json:"expanded,omitempty"`
}

// Group is one rendered sidebar section.
type Group struct {
	Section Section `json:"section"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// StatusCounts counts, for every fixed status filter, how many torrents in
// the collection satisfy it. The counts are computed independently against
// the unfiltered collection; a torrent may be counted under several statuses
// at once.
func StatusCounts(torrents []transmission.Torrent) map[string]int {
	counts := make(map[string]int, len(statusFilters))
	for _, sf := range statusFilters {
		for _, t := range torrents {
			if matchStatus(t, sf.Value) {
				counts[sf.Value]++
			}
		}
	}
	return counts
}

// labelCounts returns the distinct labels in lexicographic order, the count
// per label, and the count of torrents carrying no labels at all.
func labelCounts(torrents []transmission.Torrent) ([]string, map[string]int, int) {
	counts := make(map[string]int)
	noLabels := 0
	for _, t := range torrents {
		if len(t.Labels) == 0 {
			noLabels++
			continue
		}
		for _, label := range t.Labels {
			counts[label]++
		}
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, counts, noLabels
}

// trackerCounts returns the distinct cached tracker values in lexicographic
// order and the count per tracker.
func trackerCounts(torrents []transmission.Torrent) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, t := range torrents {
		if t.Tracker == "" {
			continue
		}
		counts[t.Tracker]++
	}
	trackers := make([]string, 0, len(counts))
	for tracker := range counts {
		trackers = append(trackers, tracker)
	}
	sort.Strings(trackers)
	return trackers, counts
}

// BuildSidebar derives the rendered filter groups from the full torrent
// collection. All counts are over the unfiltered collection; the active set
// only marks which entries are selected.
func BuildSidebar(torrents []transmission.Torrent, expanded ExpandedPaths, sections SectionSettings, active ActiveSet) []Group {
	groups := make([]Group, 0, len(sections))
	for _, section := range sections.visibleInOrder() {
		group := Group{Section: section, Title: sectionTitles[section]}
		switch section {
		case SectionStatus:
			group.Entries = statusEntries(torrents, active)
		case SectionDirectories:
			group.Entries = directoryEntries(torrents, expanded, active)
		case SectionLabels:
			group.Entries = labelEntries(torrents, active)
		case SectionTrackers:
			group.Entries = trackerEntries(torrents, active)
		}
		groups = append(groups, group)
	}
	return groups
}

func statusEntries(torrents []transmission.Torrent, active ActiveSet) []Entry {
	counts := StatusCounts(torrents)
	entries := make([]Entry, 0, len(statusFilters))
	for _, sf := range statusFilters {
		f := Filter{Kind: KindStatus, Value: sf.Value}
		entries = append(entries, Entry{
			ID:     f.ID(),
			Name:   sf.Name,
			Filter: f,
			Count:  counts[sf.Value],
			Active: active.Contains(f.ID()),
		})
	}
	return entries
}

func directoryEntries(torrents []transmission.Torrent, expanded ExpandedPaths, active ActiveSet) []Entry {
	paths := make([]string, 0, len(torrents))
	for _, t := range torrents {
		paths = append(paths, t.DownloadDir)
	}
	tree := BuildTree(paths, expanded.Set())

	var entries []Entry
	for _, node := range Flatten(tree) {
		f := Filter{Kind: KindDir, Value: node.Path}
		entries = append(entries, Entry{
			ID:         f.ID(),
			Name:       node.Name,
			Filter:     f,
			Count:      node.Count,
			Active:     active.Contains(f.ID()),
			Level:      node.Level,
			Expandable: node.HasChildren(),
			Expanded:   node.Expanded,
		})
	}
	return entries
}

func labelEntries(torrents []transmission.Torrent, active ActiveSet) []Entry {
	labels, counts, noLabels := labelCounts(torrents)

	none := Filter{Kind: KindLabel, Value: NoLabel}
	entries := []Entry{{
		ID:     none.ID(),
		Name:   "No labels",
		Filter: none,
		Count:  noLabels,
		Active: active.Contains(none.ID()),
	}}
	for _, label := range labels {
		f := Filter{Kind: KindLabel, Value: label}
		entries = append(entries, Entry{
			ID:     f.ID(),
			Name:   label,
			Filter: f,
			Count:  counts[label],
			Active: active.Contains(f.ID()),
		})
	}
	return entries
}

func trackerEntries(torrents []transmission.Torrent, active ActiveSet) []Entry {
	trackers, counts := trackerCounts(torrents)
	entries := make([]Entry, 0, len(trackers))
	for _, tracker := range trackers {
		f := Filter{Kind: KindTracker, Value: tracker}
		entries = append(entries, Entry{
			ID:     f.ID(),
			Name:   tracker,
			Filter: f,
			Count:  counts[tracker],
			Active: active.Contains(f.ID()),
		})
	}
	return entries
}
