// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline, storage layer, API, and WebSocket transport. Metrics are exposed
// at /metrics in Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion pipeline metrics
	PhotosProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_photos_processed_total",
			Help: "Total number of photos created or updated during ingestion",
		},
	)

	PhotosSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_photos_skipped_total",
			Help: "Total number of photos skipped because a record already existed",
		},
	)

	PhotosFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_photos_failed_total",
			Help: "Total number of photos that failed to persist",
		},
	)

	BatchesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_batches_started_total",
			Help: "Total number of ingestion batches started",
		},
	)

	BatchesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_batches_completed_total",
			Help: "Total number of ingestion batches that reached completed",
		},
	)

	BatchesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_batches_failed_total",
			Help: "Total number of ingestion batches that reached error",
		},
	)

	ContainersScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_containers_scanned_total",
			Help: "Total number of ZIP containers opened for extraction",
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_duration_seconds",
			Help:    "Duration of ingestion batches in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSSubscribersEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_subscribers_evicted_total",
			Help: "Total number of subscribers evicted for full buffers",
		},
	)
)

// RecordDBQuery records duration and error state for one database query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
