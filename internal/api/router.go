// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mdcscry/thread/internal/middleware"
)

// NewRouter builds the ops router:
//
//	GET /livez    process liveness
//	GET /healthz  component health, 503 when degraded
//	GET /metrics  Prometheus exposition
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/livez", h.Live)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
