// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package config loads Thread configuration with koanf.

# Configuration Sources

Sources are layered, later ones winning:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: $CONFIG_PATH, ./thread.yaml, /etc/thread/config.yaml
  - Mapped environment variables

Unmapped environment variables are ignored.

# Sections

  - logging: zerolog level and format (LOG_LEVEL, LOG_FORMAT)
  - database: DuckDB file and tuning (DUCKDB_PATH, DUCKDB_MAX_MEMORY)
  - models: Badger model store and in-memory cache (MODELS_DIR, MODEL_CACHE_SIZE)
  - recommend: generation, training and retrain loop (RETRAIN_INTERVAL)
  - packing: trip optimizer restarts and budgets (PACKING_RESTARTS)
  - nats: feedback consumer (NATS_ENABLED, NATS_URL, NATS_TOPIC)
  - weather: weather client (WEATHER_ENABLED, WEATHER_URL)
  - server: ops listener for /metrics and /healthz (OPS_ADDR)

# Example

	database:
	  path: /var/lib/thread/thread.duckdb
	recommend:
	  retrain_interval: 2h
	nats:
	  enabled: true
	  url: nats://nats:4222
*/
package config
