// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/torview/torview/internal/api/handlers"
	apimiddleware "github.com/torview/torview/internal/api/middleware"
	"github.com/torview/torview/internal/auth"
	"github.com/torview/torview/internal/config"
	"github.com/torview/torview/internal/filters"
	"github.com/torview/torview/internal/metrics"
	"github.com/torview/torview/internal/transmission"
	"github.com/torview/torview/internal/web"
	"github.com/torview/torview/internal/web/swagger"
)

// Dependencies holds everything the router needs
type Dependencies struct {
	Config         *config.AppConfig
	DB             *sql.DB
	AuthService    *auth.Service
	SyncManager    *transmission.SyncManager
	FilterManager  *filters.Manager
	MetricsManager *metrics.Manager
	WebHandler     *web.Handler
}

// NewRouter creates and configures the application router
func NewRouter(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))
	r.Use(apimiddleware.HTTPLogger)

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	torrentsHandler := handlers.NewTorrentsHandler(deps.SyncManager, deps.FilterManager)
	sidebarHandler := handlers.NewSidebarHandler(deps.SyncManager, deps.FilterManager)

	r.Route("/api", func(r chi.Router) {
		r.Use(apimiddleware.RequireSetup(deps.AuthService))

		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/setup", authHandler.Setup)
			r.Post("/login", authHandler.Login)
			r.Get("/check-setup", authHandler.CheckSetupRequired)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.IsAuthenticated(deps.AuthService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.GetCurrentUser)
			r.Put("/auth/change-password", authHandler.ChangePassword)

			r.Route("/torrents", func(r chi.Router) {
				r.Get("/", torrentsHandler.ListTorrents)
				r.Post("/bulk-action", torrentsHandler.BulkAction)
			})

			r.Get("/sidebar", sidebarHandler.GetSidebar)
			r.Post("/filters", sidebarHandler.UpdateFilters)
			r.Post("/directories", sidebarHandler.UpdateDirectories)
			r.Route("/sections", func(r chi.Router) {
				r.Get("/", sidebarHandler.GetSections)
				r.Put("/", sidebarHandler.UpdateSections)
			})
		})
	})

	if deps.MetricsManager != nil {
		metricsHandler := handlers.NewMetricsHandler(deps.MetricsManager)
		r.Get("/metrics", metricsHandler.ServeMetrics)
	}

	// API documentation
	if swaggerHandler, err := swagger.NewHandler(deps.Config.Config.BaseURL); err == nil && swaggerHandler != nil {
		swaggerHandler.RegisterRoutes(r)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Web UI (embedded frontend)
	if deps.WebHandler != nil {
		deps.WebHandler.RegisterRoutes(r)
	}

	return r
}
