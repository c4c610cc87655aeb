// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mdcscry/thread/internal/metrics"
)

func newInstrumentedRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/models/{userID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/plain", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func TestPrometheusMetrics_PassesThroughStatus(t *testing.T) {
	router := newInstrumentedRouter()

	tests := []struct {
		path string
		want int
	}{
		{"/models/u1", http.StatusNoContent},
		{"/boom", http.StatusInternalServerError},
		{"/plain", http.StatusOK},
		{"/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	router := newInstrumentedRouter()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/models/alice", nil))
	before := testutil.CollectAndCount(metrics.OpsRequestDuration)

	for _, id := range []string{"bob", "carol", "dave"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/models/"+id, nil))
	}

	if after := testutil.CollectAndCount(metrics.OpsRequestDuration); after != before {
		t.Errorf("series grew from %d to %d; path parameters leaked into labels", before, after)
	}
}

func TestPrometheusMetrics_InFlightReturnsToBaseline(t *testing.T) {
	router := newInstrumentedRouter()
	before := testutil.ToFloat64(metrics.OpsRequestsInFlight)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))

	if got := testutil.ToFloat64(metrics.OpsRequestsInFlight); got != before {
		t.Errorf("in-flight = %v after request, want %v", got, before)
	}
}

func TestRoutePattern_NoRouteContext(t *testing.T) {
	if got := routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != unmatchedRoute {
		t.Errorf("routePattern() = %q, want %q", got, unmatchedRoute)
	}
}
