// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/torview/torview/internal/filters"
	"github.com/torview/torview/internal/transmission"
)

// TorrentCollector exposes per-status torrent counts and daemon transfer
// rates. The counts reuse the sidebar's status predicates so the exported
// numbers always match what the UI shows.
type TorrentCollector struct {
	syncManager *transmission.SyncManager

	statusCountDesc   *prometheus.Desc
	downloadSpeedDesc *prometheus.Desc
	uploadSpeedDesc   *prometheus.Desc
	scrapeErrorsDesc  *prometheus.Desc
}

func NewTorrentCollector(syncManager *transmission.SyncManager) *TorrentCollector {
	return &TorrentCollector{
		syncManager: syncManager,

		statusCountDesc: prometheus.NewDesc(
			"torview_torrents_by_status",
			"Number of torrents matching each status filter",
			[]string{"status"},
			nil,
		),
		downloadSpeedDesc: prometheus.NewDesc(
			"torview_download_speed_bytes_per_second",
			"Current daemon-wide download speed in bytes per second",
			nil,
			nil,
		),
		uploadSpeedDesc: prometheus.NewDesc(
			"torview_upload_speed_bytes_per_second",
			"Current daemon-wide upload speed in bytes per second",
			nil,
			nil,
		),
		scrapeErrorsDesc: prometheus.NewDesc(
			"torview_scrape_errors_total",
			"Total number of scrape errors by type",
			[]string{"type"},
			nil,
		),
	}
}

func (c *TorrentCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.statusCountDesc
	ch <- c.downloadSpeedDesc
	ch <- c.uploadSpeedDesc
	ch <- c.scrapeErrorsDesc
}

func (c *TorrentCollector) reportError(ch chan<- prometheus.Metric, errorType string) {
	ch <- prometheus.MustNewConstMetric(
		c.scrapeErrorsDesc,
		prometheus.CounterValue,
		1,
		errorType,
	)
}

func (c *TorrentCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if c.syncManager == nil {
		log.Debug().Msg("SyncManager is nil, skipping metrics collection")
		return
	}

	torrents, err := c.syncManager.GetTorrents(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get torrents for metrics")
		c.reportError(ch, "torrents")
		return
	}

	for status, count := range filters.StatusCounts(torrents) {
		ch <- prometheus.MustNewConstMetric(
			c.statusCountDesc,
			prometheus.GaugeValue,
			float64(count),
			status,
		)
	}

	down, up, err := c.syncManager.SessionSpeeds(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get session speeds for metrics")
		c.reportError(ch, "session_speeds")
		return
	}

	ch <- prometheus.MustNewConstMetric(c.downloadSpeedDesc, prometheus.GaugeValue, float64(down))
	ch <- prometheus.MustNewConstMetric(c.uploadSpeedDesc, prometheus.GaugeValue, float64(up))
}
