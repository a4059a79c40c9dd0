// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/torview/torview/internal/filters"
	"github.com/torview/torview/internal/transmission"
)

type TorrentsHandler struct {
	syncManager   *transmission.SyncManager
	filterManager *filters.Manager
}

func NewTorrentsHandler(syncManager *transmission.SyncManager, filterManager *filters.Manager) *TorrentsHandler {
	return &TorrentsHandler{
		syncManager:   syncManager,
		filterManager: filterManager,
	}
}

// TorrentResponse is the paginated list payload.
type TorrentResponse struct {
	Torrents []transmission.Torrent     `json:"torrents"`
	Total    int                        `json:"total"`
	Stats    *transmission.TorrentStats `json:"stats"`
}

// ListTorrents returns the torrent list with the active filters, search,
// sorting and pagination applied. Stats are computed over the unfiltered
// collection.
func (h *TorrentsHandler) ListTorrents(w http.ResponseWriter, r *http.Request) {
	limit := 500
	page := 0
	sort := "addedOn"
	order := "desc"
	search := ""

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 2000 {
			limit = parsed
		}
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed >= 0 {
			page = parsed
		}
	}
	if s := r.URL.Query().Get("sort"); s != "" {
		sort = s
	}
	if o := r.URL.Query().Get("order"); o != "" {
		order = o
	}
	if q := r.URL.Query().Get("search"); q != "" {
		search = q
	}

	log.Debug().
		Str("sort", sort).
		Str("order", order).
		Int("page", page).
		Int("limit", limit).
		Str("search", search).
		Msg("Torrent list request parameters")

	all, err := h.syncManager.GetTorrents(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get torrents")
		RespondError(w, http.StatusInternalServerError, "Failed to get torrents")
		return
	}

	filtered := h.filterManager.ActiveSet().Apply(all)
	filtered = h.syncManager.Search(filtered, search)
	h.syncManager.SortTorrents(filtered, sort, order)

	total := len(filtered)
	start := page * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	RespondJSON(w, http.StatusOK, TorrentResponse{
		Torrents: filtered[start:end],
		Total:    total,
		Stats:    h.syncManager.CalculateStats(all),
	})
}

// BulkActionRequest represents a bulk action request
type BulkActionRequest struct {
	IDs         []int64 `json:"ids"`
	Action      string  `json:"action"`
	DeleteFiles bool    `json:"deleteFiles,omitempty"` // For remove action
}

// BulkAction performs an operation on the selected torrents
func (h *TorrentsHandler) BulkAction(w http.ResponseWriter, r *http.Request) {
	var req BulkActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.IDs) == 0 {
		RespondError(w, http.StatusBadRequest, "No torrents selected")
		return
	}

	validActions := []string{"start", "stop", "verify", "remove"}
	if !slices.Contains(validActions, req.Action) {
		RespondError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	action := req.Action
	if action == "remove" && req.DeleteFiles {
		action = "removeWithData"
	}

	if err := h.syncManager.BulkAction(r.Context(), req.IDs, action); err != nil {
		log.Error().Err(err).Str("action", req.Action).Msg("Failed to perform bulk action")
		RespondError(w, http.StatusInternalServerError, "Failed to perform bulk action")
		return
	}

	log.Debug().Str("action", req.Action).Int("count", len(req.IDs)).Msg("Bulk action completed")

	RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Bulk action completed successfully",
	})
}
