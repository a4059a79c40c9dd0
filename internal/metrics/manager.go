// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/torview/torview/internal/transmission"
)

type Manager struct {
	registry         *prometheus.Registry
	torrentCollector *TorrentCollector
}

func NewManager(syncManager *transmission.SyncManager) *Manager {
	registry := prometheus.NewRegistry()

	torrentCollector := NewTorrentCollector(syncManager)
	registry.MustRegister(torrentCollector)

	log.Info().Msg("Metrics manager initialized with torrent collector")

	return &Manager{
		registry:         registry,
		torrentCollector: torrentCollector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
