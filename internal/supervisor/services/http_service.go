// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mdcscry/thread/internal/logging"
)

const (
	opsServiceName         = "ops-http-server"
	defaultShutdownTimeout = 10 * time.Second
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService keeps the ops listener (/healthz, /metrics) running
// under the supervisor and drains it when the tree stops.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps server. A non-positive timeout means 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. A listener that fails, for example on a
// busy port, returns its error so the ops layer restarts it.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	stopped := make(chan error, 1)
	go func() { stopped <- h.server.ListenAndServe() }()

	select {
	case err := <-stopped:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ops listener: %w", err)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("ops listener shutdown: %w", err)
	}
	<-stopped
	logging.Debug().Str("service", opsServiceName).Msg("Ops listener drained")
	return ctx.Err()
}

func (h *HTTPServerService) String() string { return opsServiceName }
