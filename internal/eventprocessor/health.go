// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"time"
)

// ComponentHealth is one entry in the ops /health report. The feedback
// consumer, router and stream report through it, and so do plain probes
// like the DuckDB ping.
type ComponentHealth struct {
	Name      string                 `json:"name"`
	Healthy   bool                   `json:"healthy"`
	Message   string                 `json:"message,omitempty"`
	Error     string                 `json:"error,omitempty"`
	LastCheck time.Time              `json:"last_check"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthCheckable reports the state of a component on demand.
type HealthCheckable interface {
	HealthCheck(ctx context.Context) ComponentHealth
}

// unhealthy builds a failed report for name at now.
func unhealthy(name string, err error) ComponentHealth {
	return ComponentHealth{
		Name:      name,
		Error:     err.Error(),
		LastCheck: time.Now(),
	}
}
