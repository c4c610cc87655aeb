// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package logging provides zerolog-based structured logging for Thread.
//
// A single global logger is configured once at startup from the LOG_LEVEL,
// LOG_FORMAT and LOG_CALLER settings. Production runs use JSON output;
// console output is available for local development.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("user_id", userID).Int("outfits", n).Msg("Outfits generated")
//	logging.Error().Err(err).Msg("Retrain pass failed")
//
// # Context-Aware Logging
//
// Request, correlation and user ids travel on the context and are attached
// by Ctx:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	ctx = logging.ContextWithUserID(ctx, userID)
//	logging.Ctx(ctx).Info().Msg("Feedback recorded")
//
// The ops router sets a request id on every HTTP request. The feedback
// handler uses the event id as the correlation id of each message.
//
// # Component Loggers
//
// Long-lived components receive a zerolog.Logger derived from the global one:
//
//	engine, err := recommend.NewEngine(cfg, repo, store, logging.WithComponent("engine"))
//
// # slog Bridge
//
// suture (through sutureslog) and watermill log through log/slog.
// NewSlogLogger returns an slog.Logger that writes through the global zerolog
// logger so every line shares one format:
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
//	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())
//
// # Thread Safety
//
// The global logger is guarded by a RWMutex. Init may be called again to
// reconfigure it; loggers handed out earlier keep their old configuration.
package logging
