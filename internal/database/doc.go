// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package database provides the DuckDB-backed wardrobe store for Thread.
//
// # Overview
//
// DB implements recommend.Repository: items, generated outfits, feedback
// events and the training audit log all live in a single DuckDB file.
//
// # Architecture
//
//   - database.go: Lifecycle (open, initialize, checkpoint, close)
//   - database_schema.go: Table and index creation
//   - database_connection.go: Pool configuration and conflict retries
//   - database_utils.go: Context timeouts, checkpoints and record counts
//   - migrations.go: Versioned, append-only schema migrations
//   - crud_items.go: Item upsert, eligibility filtering and patches
//   - crud_outfits.go: Outfit persistence and wear marking
//   - crud_feedback.go: Atomic feedback writes, log and untrained-event scans
//   - crud_training.go: Training session audit log
//
// # Concurrency
//
// DuckDB uses optimistic concurrency control. ApplyFeedback writes the
// worn flag, item patches and events of one action in a single transaction,
// serialized per user with a mutex; conflicts retry the whole transaction
// with exponential backoff.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine, err := recommend.NewEngine(recCfg, db, modelStore, logger)
//
// # Testing
//
// Tests use ":memory:" databases. A package-level semaphore keeps only one
// DuckDB instance active at a time.
package database
