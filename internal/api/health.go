// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/mdcscry/thread/internal/eventprocessor"
	"github.com/mdcscry/thread/internal/logging"
	"github.com/mdcscry/thread/internal/metrics"
)

// CheckTimeout bounds a single component check.
const CheckTimeout = 2 * time.Second

// CheckFunc adapts a plain error-returning probe, such as a database ping,
// to eventprocessor.HealthCheckable.
type CheckFunc struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthCheck runs the probe.
func (c CheckFunc) HealthCheck(ctx context.Context) eventprocessor.ComponentHealth {
	health := eventprocessor.ComponentHealth{
		Name:      c.Name,
		LastCheck: time.Now(),
	}
	if err := c.Probe(ctx); err != nil {
		health.Error = err.Error()
		return health
	}
	health.Healthy = true
	return health
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status     string                           `json:"status"`
	Uptime     float64                          `json:"uptime_seconds"`
	Components []eventprocessor.ComponentHealth `json:"components"`
	Timestamp  time.Time                        `json:"timestamp"`
}

// Handler serves the ops endpoints.
type Handler struct {
	startTime time.Time

	mu     sync.RWMutex
	checks []eventprocessor.HealthCheckable
}

// NewHandler creates a handler reporting on checks.
func NewHandler(checks ...eventprocessor.HealthCheckable) *Handler {
	return &Handler{
		startTime: time.Now(),
		checks:    checks,
	}
}

// Register adds a component to the health report.
func (h *Handler) Register(check eventprocessor.HealthCheckable) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check)
}

// Live reports that the process is up. It never touches dependencies.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Health runs every registered check concurrently and answers 503 when any
// component is unhealthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make([]eventprocessor.HealthCheckable, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), CheckTimeout)
	defer cancel()

	results := make([]eventprocessor.ComponentHealth, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check.HealthCheck(ctx)
			return nil
		})
	}
	_ = g.Wait()
	metrics.SetUptime(h.startTime)

	resp := HealthResponse{
		Status:     "healthy",
		Uptime:     time.Since(h.startTime).Seconds(),
		Components: results,
		Timestamp:  time.Now().UTC(),
	}
	status := http.StatusOK
	for _, c := range results {
		if !c.Healthy {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			logging.Ctx(r.Context()).Warn().
				Str("component", c.Name).
				Str("error", c.Error).
				Msg("Health check failed")
		}
	}

	respondJSON(w, status, &resp)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
