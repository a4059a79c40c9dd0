// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/torview/torview/internal/api"
	"github.com/torview/torview/internal/auth"
	"github.com/torview/torview/internal/config"
	"github.com/torview/torview/internal/database"
	"github.com/torview/torview/internal/filters"
	"github.com/torview/torview/internal/metrics"
	"github.com/torview/torview/internal/models"
	"github.com/torview/torview/internal/transmission"
	"github.com/torview/torview/internal/web"
)

type Application struct {
	version   string
	configDir string
	dataDir   string
	logPath   string
}

func NewApplication(version, configDir, dataDir, logPath string) *Application {
	return &Application{
		version:   version,
		configDir: configDir,
		dataDir:   dataDir,
		logPath:   logPath,
	}
}

func (app *Application) runServer() {
	log.Info().Str("version", app.version).Msg("Starting torview")

	cfg, err := config.New(app.configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	// CLI flags win over the config file
	if app.dataDir != "" {
		cfg.Config.DataDir = app.dataDir
	}
	if app.logPath != "" {
		cfg.Config.LogPath = app.logPath
	}

	cfg.ApplyLogConfig()

	db, err := database.New(cfg.DatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	userStore := models.NewUserStore(db.Conn())
	filterStateStore := models.NewFilterStateStore(db.Conn())

	authService := auth.NewService(userStore, cfg.Config.SessionSecret)

	client, err := transmission.NewClient(cfg.Config.Transmission.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize transmission client")
	}

	// A dead daemon should not keep the UI from starting; requests will
	// surface the error until it comes back.
	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := client.CheckConnection(connCtx); err != nil {
		log.Warn().Err(err).Str("endpoint", cfg.Config.Transmission.Endpoint).Msg("Transmission daemon unreachable at startup")
	} else {
		log.Info().Str("host", client.Host()).Msg("Connected to transmission daemon")
	}
	connCancel()

	syncManager, err := transmission.NewSyncManager(client)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize sync manager")
	}
	defer syncManager.Close()

	filterManager, err := filters.NewManager(filterStateStore)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize filter manager")
	}

	metricsManager := metrics.NewManager(syncManager)

	webHandler, err := web.NewHandler(app.version, cfg.Config.BaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize web handler")
	}

	deps := &api.Dependencies{
		Config:         cfg,
		DB:             db.Conn(),
		AuthService:    authService,
		SyncManager:    syncManager,
		FilterManager:  filterManager,
		MetricsManager: metricsManager,
		WebHandler:     webHandler,
	}

	router := api.NewRouter(deps)

	// If a baseURL is configured, mount the whole app under that path
	var handler http.Handler
	if cfg.Config.BaseURL != "" && cfg.Config.BaseURL != "/" {
		parentRouter := chi.NewRouter()
		mountPath := strings.TrimSuffix(cfg.Config.BaseURL, "/")
		parentRouter.Mount(mountPath, router)
		parentRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, cfg.Config.BaseURL, http.StatusMovedPermanently)
		})
		handler = parentRouter
	} else {
		handler = router
	}

	readTimeout := time.Duration(cfg.Config.HTTPTimeouts.ReadTimeout) * time.Second
	writeTimeout := time.Duration(cfg.Config.HTTPTimeouts.WriteTimeout) * time.Second
	idleTimeout := time.Duration(cfg.Config.HTTPTimeouts.IdleTimeout) * time.Second
	if readTimeout == 0 {
		readTimeout = 60 * time.Second
	}
	if writeTimeout == 0 {
		writeTimeout = 120 * time.Second
	}
	if idleTimeout == 0 {
		idleTimeout = 180 * time.Second
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Config.Host, cfg.Config.Port),
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		log.Info().
			Str("address", srv.Addr).
			Dur("readTimeout", readTimeout).
			Dur("writeTimeout", writeTimeout).
			Dur("idleTimeout", idleTimeout).
			Msg("Starting HTTP server")
		if cfg.Config.BaseURL != "" {
			log.Info().Str("baseURL", cfg.Config.BaseURL).Msg("Serving under base URL")
		}

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
