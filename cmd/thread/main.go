// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package main is the entry point for the Thread recommendation daemon.
//
// The daemon owns the long-running parts of the engine: the periodic
// retrain loop, the NATS feedback consumer, and the ops HTTP endpoint.
// Outfit generation and trip packing are library calls on recommend.Engine.
//
// # Startup Order
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Logging: zerolog configured from LOG_LEVEL, LOG_FORMAT, LOG_CALLER
//  3. DuckDB: wardrobe items, outfits, feedback, preference state
//  4. Badger: versioned per-user preference networks
//  5. Engine: scorers, generator, packing optimizer
//  6. Weather (optional): cached, rate limited, circuit broken HTTP client
//  7. Supervisor tree: retrain, feedback consumer, ops HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops every
// service, then the model store and database are closed.
//
// # Example Usage
//
//	export DUCKDB_PATH=/data/thread.duckdb
//	export MODELS_DIR=/data/models
//	export NATS_ENABLED=true
//	export NATS_URL=nats://nats:4222
//	export OPS_ADDR=:9464
//	./thread
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdcscry/thread/internal/api"
	"github.com/mdcscry/thread/internal/config"
	"github.com/mdcscry/thread/internal/database"
	"github.com/mdcscry/thread/internal/eventprocessor"
	"github.com/mdcscry/thread/internal/logging"
	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/recommend"
	"github.com/mdcscry/thread/internal/recommend/storage"
	"github.com/mdcscry/thread/internal/supervisor"
	"github.com/mdcscry/thread/internal/supervisor/services"
	"github.com/mdcscry/thread/internal/weather"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Thread exited with error")
	}
	logging.Info().Msg("Thread stopped gracefully")
}

//nolint:gocyclo // sequential setup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	metrics.SetAppInfo(version)
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("models_dir", cfg.Models.Dir).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("weather_enabled", cfg.Weather.Enabled).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logDatabaseState(db)

	store, err := storage.Open(buildStorageConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing model store")
		}
	}()

	engine, err := recommend.NewEngine(buildEngineConfig(cfg), db, store, logging.WithComponent("engine"))
	if err != nil {
		return err
	}

	health := api.NewHandler(api.CheckFunc{Name: "duckdb", Probe: db.Ping})

	if cfg.Weather.Enabled {
		client, err := weather.NewClient(buildWeatherConfig(cfg))
		if err != nil {
			return err
		}
		engine.SetWeatherProvider(client)
		health.Register(api.CheckFunc{Name: "weather", Probe: client.Check})
		logging.Info().Str("base_url", cfg.Weather.BaseURL).Msg("Weather provider enabled")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	if retrainEnabled(cfg) {
		tree.AddTrainingService(services.NewRetrainService(engine, buildRetrainConfig(cfg), logging.WithComponent("retrain")))
		logging.Info().
			Dur("interval", cfg.Recommend.RetrainInterval).
			Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
			Msg("Retrain service added to supervisor tree")
	}

	if cfg.NATS.Enabled {
		consumer, err := eventprocessor.NewFeedbackConsumer(buildEventConfig(cfg), engine, nil)
		if err != nil {
			return err
		}
		tree.AddMessagingService(services.NewFeedbackConsumerService(consumer, cfg.Server.ShutdownTimeout))
		health.Register(consumer)
		logging.Info().Str("topic", cfg.NATS.Topic).Msg("Feedback consumer added to supervisor tree")
	}

	if cfg.Server.Addr != "" {
		server := newOpsServer(cfg, api.NewRouter(health))
		tree.AddOpsService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("Ops HTTP server added to supervisor tree")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if ctx.Err() == nil {
		return errors.New("supervisor tree stopped without a shutdown signal")
	}
	return nil
}

// logDatabaseState reports the schema version and table sizes at startup.
func logDatabaseState(db *database.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := logging.Info().Str("path", db.GetDatabasePath())
	if version, err := db.GetCurrentSchemaVersion(ctx); err == nil {
		event = event.Int("schema_version", version)
	}
	if counts, err := db.GetRecordCounts(ctx); err == nil {
		event = event.
			Int64("items", counts.Items).
			Int64("outfits", counts.Outfits).
			Int64("feedback_events", counts.FeedbackEvents).
			Int64("training_sessions", counts.TrainingSessions)
	}
	event.Msg("Database initialized")
}
