// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/torview/torview/internal/filters"
)

// FilterStateStore persists the sidebar state that must survive restarts:
// the expanded directory paths and the filter-section settings.
type FilterStateStore struct {
	db *sql.DB
}

func NewFilterStateStore(db *sql.DB) *FilterStateStore {
	return &FilterStateStore{db: db}
}

// ListExpandedDirs returns the expanded paths in the order they were
// expanded.
func (s *FilterStateStore) ListExpandedDirs() ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM expanded_dirs ORDER BY created_at, path")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list expanded directories")
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, errors.Wrap(err, "failed to scan expanded directory")
		}
		paths = append(paths, path)
	}
	return paths, errors.Wrap(rows.Err(), "failed to iterate expanded directories")
}

func (s *FilterStateStore) AddExpandedDir(path string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO expanded_dirs (path) VALUES (?)", path)
	return errors.Wrap(err, "failed to add expanded directory")
}

func (s *FilterStateStore) RemoveExpandedDir(path string) error {
	_, err := s.db.Exec("DELETE FROM expanded_dirs WHERE path = ?", path)
	return errors.Wrap(err, "failed to remove expanded directory")
}

// GetSectionSettings returns the persisted section settings, or nil when
// nothing has been saved yet so the caller falls back to defaults.
func (s *FilterStateStore) GetSectionSettings() (filters.SectionSettings, error) {
	rows, err := s.db.Query("SELECT name, visible, display_order FROM filter_sections")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load section settings")
	}
	defer rows.Close()

	var settings filters.SectionSettings
	for rows.Next() {
		var (
			name    string
			visible bool
			order   int
		)
		if err := rows.Scan(&name, &visible, &order); err != nil {
			return nil, errors.Wrap(err, "failed to scan section setting")
		}
		if settings == nil {
			settings = make(filters.SectionSettings)
		}
		settings[filters.Section(name)] = filters.SectionSetting{Visible: visible, Order: order}
	}
	return settings, errors.Wrap(rows.Err(), "failed to iterate section settings")
}

// SaveSectionSettings replaces the stored section settings atomically.
func (s *FilterStateStore) SaveSectionSettings(settings filters.SectionSettings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM filter_sections"); err != nil {
		return errors.Wrap(err, "failed to clear section settings")
	}
	for section, setting := range settings {
		if _, err := tx.Exec(
			"INSERT INTO filter_sections (name, visible, display_order) VALUES (?, ?, ?)",
			string(section), setting.Visible, setting.Order,
		); err != nil {
			return errors.Wrap(err, "failed to save section setting")
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit section settings")
}
