// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package api serves Thread's operational HTTP endpoints with chi.

The engine has no public HTTP surface; this listener exists for probes
and scraping:

	GET /livez    always 200 while the process runs
	GET /healthz  aggregated component health (database, model store,
	              feedback consumer, weather breaker); 503 when degraded
	GET /metrics  Prometheus metrics from internal/metrics

Components implement eventprocessor.HealthCheckable. Plain probes such as
a database ping are adapted with CheckFunc:

	h := api.NewHandler(
	    api.CheckFunc{Name: "duckdb", Probe: db.Ping},
	    consumer,
	)
	srv := &http.Server{Addr: ":9464", Handler: api.NewRouter(h)}

Every request carries X-Request-ID, which is also placed in the logging
context so logging.Ctx(ctx) includes it.
*/
package api
