// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package middleware provides HTTP middleware for the ops listener.

Key Components:

  - RequestID: X-Request-ID propagation wired into the logging context
  - PrometheusMetrics: per-route latency, status and in-flight instrumentation

Middleware Stack:

Both are chi-style func(http.Handler) http.Handler and are mounted on the
ops router ahead of chi's RealIP and Recoverer:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

PrometheusMetrics labels requests by route pattern ("/healthz"), never by raw
path; requests that match no route are labeled "unmatched".
*/
package middleware
