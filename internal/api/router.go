// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lensatlas/lensatlas/internal/config"
	"github.com/lensatlas/lensatlas/internal/metrics"
)

// Router assembles the HTTP routing tree.
type Router struct {
	handler *Handler
	ws      http.Handler
	cfg     *config.ServerConfig
}

// NewRouter builds the router. ws serves the WebSocket progress feed and may
// be nil in tests that don't exercise it.
func NewRouter(handler *Handler, ws http.Handler, cfg *config.ServerConfig) *Router {
	return &Router{handler: handler, ws: ws, cfg: cfg}
}

// Setup wires middleware and routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
		r.Use(prometheusMetrics)

		r.Post("/start", router.handler.IngestStart)
		r.Get("/status", router.handler.IngestStatus)
		r.Get("/config", router.handler.IngestConfigGet)
		r.Put("/config", router.handler.IngestConfigPut)
		r.Delete("/config", router.handler.IngestConfigDelete)
	})

	if router.ws != nil {
		r.Handle("/api/v1/ws/ingest/progress", router.ws)
	}

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// prometheusMetrics records request counts and latency per route pattern.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
