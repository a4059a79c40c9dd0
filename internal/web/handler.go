// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package web

import (
	"embed"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

//go:embed dist/*
var embedFS embed.FS

// Handler serves the embedded frontend build.
type Handler struct {
	fs      fs.FS
	baseURL string
	version string
}

func NewHandler(version, baseURL string) (*Handler, error) {
	distFS, err := fs.Sub(embedFS, "dist")
	if err != nil {
		log.Warn().Msg("Frontend dist directory not found, web UI will not be available")
		return &Handler{baseURL: baseURL, version: version}, nil
	}

	return &Handler{
		fs:      distFS,
		baseURL: baseURL,
		version: version,
	}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	if h.fs == nil {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Frontend not built. Run 'make frontend' to build the web UI.", http.StatusNotFound)
		})
		return
	}

	r.Get("/assets/*", h.serveAssets)
	r.Get("/favicon.ico", h.serveAssets)

	// SPA catch-all
	r.Get("/*", h.serveIndex)
}

func (h *Handler) serveAssets(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if h.baseURL != "" && h.baseURL != "/" {
		path = strings.TrimPrefix(path, strings.Trim(h.baseURL, "/")+"/")
	}

	file, err := h.fs.Open(path)
	if err != nil {
		log.Debug().Str("path", path).Err(err).Msg("Asset not found")
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if contentType := mime.TypeByExtension(filepath.Ext(path)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	// Hashed build assets never change, cache them hard
	if strings.Contains(path, "-") && strings.HasPrefix(path, "assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}

	http.ServeContent(w, r, path, stat.ModTime(), file.(io.ReadSeeker))
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	file, err := h.fs.Open("index.html")
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	baseURL := h.baseURL
	if baseURL == "" {
		baseURL = "/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	// Inject the base URL so the frontend works behind a reverse proxy
	// subfolder without a rebuild.
	scriptTag := `<script>window.__TORVIEW_BASE_URL__="` + baseURL + `";</script>`
	page := strings.Replace(string(content), "</head>", scriptTag+"</head>", 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}
