// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/torview/torview/internal/filters"
	"github.com/torview/torview/internal/transmission"
)

type SidebarHandler struct {
	syncManager   *transmission.SyncManager
	filterManager *filters.Manager
}

func NewSidebarHandler(syncManager *transmission.SyncManager, filterManager *filters.Manager) *SidebarHandler {
	return &SidebarHandler{
		syncManager:   syncManager,
		filterManager: filterManager,
	}
}

// SidebarResponse carries the rendered groups plus the active selection so
// the frontend can highlight without re-deriving it.
type SidebarResponse struct {
	Groups        []filters.Group  `json:"groups"`
	ActiveFilters []filters.Filter `json:"activeFilters"`
}

// GetSidebar returns the filter groups with counts over the full collection
func (h *SidebarHandler) GetSidebar(w http.ResponseWriter, r *http.Request) {
	torrents, err := h.syncManager.GetTorrents(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get torrents for sidebar")
		RespondError(w, http.StatusInternalServerError, "Failed to build sidebar")
		return
	}

	RespondJSON(w, http.StatusOK, SidebarResponse{
		Groups:        h.filterManager.Sidebar(torrents),
		ActiveFilters: h.filterManager.ActiveSet().Filters(),
	})
}

// UpdateFilters mutates the active selection with set or toggle semantics
func (h *SidebarHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req filters.Update
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// An empty value is only meaningful for the no-label filter.
	if req.Filter.Kind == "" || (req.Filter.Value == "" && req.Filter.Kind != filters.KindLabel) {
		RespondError(w, http.StatusBadRequest, "Filter kind and value are required")
		return
	}

	if err := h.filterManager.Apply(req); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"activeFilters": h.filterManager.ActiveSet().Filters(),
	})
}

// UpdateDirectories expands or collapses a directory tree node
func (h *SidebarHandler) UpdateDirectories(w http.ResponseWriter, r *http.Request) {
	var req filters.ExpansionUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Path == "" {
		RespondError(w, http.StatusBadRequest, "Directory path is required")
		return
	}

	req.Path = filters.NormalizeDirPath(req.Path)

	if err := h.filterManager.UpdateExpansion(req); err != nil {
		log.Error().Err(err).Str("path", req.Path).Msg("Failed to update directory expansion")
		RespondError(w, http.StatusInternalServerError, "Failed to update directory expansion")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"expanded": h.filterManager.Expanded(),
	})
}

// GetSections returns the section visibility settings
func (h *SidebarHandler) GetSections(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.filterManager.Sections())
}

// UpdateSections replaces the section settings. The active selection resets
// to the default because hidden groups cannot keep filters selected.
func (h *SidebarHandler) UpdateSections(w http.ResponseWriter, r *http.Request) {
	var settings filters.SectionSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(settings) == 0 {
		RespondError(w, http.StatusBadRequest, "Section settings are required")
		return
	}

	if err := h.filterManager.SetSections(settings); err != nil {
		log.Error().Err(err).Msg("Failed to save section settings")
		RespondError(w, http.StatusInternalServerError, "Failed to save section settings")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"sections":      h.filterManager.Sections(),
		"activeFilters": h.filterManager.ActiveSet().Filters(),
	})
}
