// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package filters implements the sidebar filter engine: the catalog of
// status/label/tracker/directory predicates, the active filter selection,
// the download-directory tree, and the per-filter aggregate counts.
package filters

import (
	"slices"
	"strings"

	"github.com/torview/torview/internal/transmission"
)

// Kind discriminates the filter families. A Filter carries its kind and the
// discriminant value instead of a closure so two filters produced on
// different render passes still compare equal by ID.
type Kind string

const (
	KindStatus  Kind = "status"
	KindLabel   Kind = "label"
	KindTracker Kind = "tracker"
	KindDir     Kind = "dir"
)

// Filter is a single selectable predicate over a torrent.
type Filter struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// ID returns the stable identity of the filter. Identity is by ID, not by
// predicate: a rebuilt directory filter for the same path is the same filter.
func (f Filter) ID() string {
	return string(f.Kind) + "-" + f.Value
}

// Status filter values, in sidebar display order.
const (
	StatusAll         = "all"
	StatusDownloading = "downloading"
	StatusCompleted   = "completed"
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusStopped     = "stopped"
	StatusError       = "error"
	StatusWaiting     = "waiting"
	StatusMagnetizing = "magnetizing"
)

// statusFilter pairs a status filter value with its display name.
type statusFilter struct {
	Value string
	Name  string
}

var statusFilters = []statusFilter{
	{StatusAll, "All Torrents"},
	{StatusDownloading, "Downloading"},
	{StatusCompleted, "Completed"},
	{StatusActive, "Active"},
	{StatusInactive, "Inactive"},
	{StatusStopped, "Stopped"},
	{StatusError, "Error"},
	{StatusWaiting, "Waiting"},
	{StatusMagnetizing, "Magnetizing"},
}

// NoLabel is the discriminant for the synthetic "No labels" filter. Label
// values never collide with it because a label is a non-empty string.
const NoLabel = ""

// Match reports whether the torrent satisfies the filter. Unknown kinds and
// unknown status values match nothing.
func (f Filter) Match(t transmission.Torrent) bool {
	switch f.Kind {
	case KindStatus:
		return matchStatus(t, f.Value)
	case KindLabel:
		if f.Value == NoLabel {
			return len(t.Labels) == 0
		}
		return slices.Contains(t.Labels, f.Value)
	case KindTracker:
		return t.Tracker == f.Value
	case KindDir:
		return matchDir(t.DownloadDir, f.Value)
	default:
		return false
	}
}

// matchStatus evaluates the fixed status predicates. The categories are not
// mutually exclusive: a magnetizing torrent is also downloading, and a
// torrent can be both completed and active.
func matchStatus(t transmission.Torrent, value string) bool {
	switch value {
	case StatusAll:
		return true
	case StatusDownloading:
		return t.Status == transmission.StatusDownloading
	case StatusCompleted:
		return t.Status == transmission.StatusSeeding ||
			(t.SizeWhenDone > 0 && t.LeftUntilDone() == 0)
	case StatusActive:
		return t.RateDownload > 0 || t.RateUpload > 0
	case StatusInactive:
		// A stopped torrent with zero rates is intentionally not "inactive":
		// the filter targets torrents that should be transferring but are not.
		return t.RateDownload == 0 && t.RateUpload == 0 &&
			t.Status != transmission.StatusStopped
	case StatusStopped:
		return t.Status == transmission.StatusStopped
	case StatusError:
		return t.Error != 0 || t.ErrorString != ""
	case StatusWaiting:
		return t.Status == transmission.StatusVerifying ||
			t.Status == transmission.StatusQueuedToVerify ||
			t.Status == transmission.StatusQueuedToDownload
	case StatusMagnetizing:
		// Magnet links have no metadata yet, so no pieces are known.
		return t.Status == transmission.StatusDownloading && t.PieceCount == 0
	default:
		return false
	}
}

// matchDir reports whether the torrent's download directory is the given
// tree node path or a descendant of it. Node paths are trailing-slash
// normalized, so normalizing the torrent's directory the same way reduces
// the check to a prefix match: "/films/hd/" has prefix "/films/" while
// "/filmsarchive/" does not.
func matchDir(downloadDir, nodePath string) bool {
	return strings.HasPrefix(NormalizeDirPath(downloadDir), nodePath)
}

// NormalizeDirPath brings a download directory into the canonical node-path
// form: leading slash, single separators, trailing slash. Malformed input
// (empty, relative, doubled slashes) degrades to the root rather than
// failing.
func NormalizeDirPath(dir string) string {
	var b strings.Builder
	b.WriteByte('/')
	for _, segment := range strings.Split(dir, "/") {
		if segment == "" {
			continue
		}
		b.WriteString(segment)
		b.WriteByte('/')
	}
	return b.String()
}
