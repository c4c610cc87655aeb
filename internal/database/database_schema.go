// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
database_schema.go - Database Schema Management

Tables:
  - items: Wardrobe items with their EMA preference state and wear history
  - outfits: Generated outfits stored as item id references
  - feedback_events: Append-only labeled feedback, one row per item
  - training_sessions: Append-only audit log of network training runs

List-valued and nested columns (item colors, outfit item ids, request
context) are stored as JSON text so the schema does not depend on the
json extension being installed.

Index Strategy:
Indexes are created for:
  - Per-user lookups on every table
  - The retrain loop scan over untrained feedback
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT,
			category TEXT NOT NULL,
			subcategory TEXT,
			primary_color TEXT,
			secondary_color TEXT,
			colors TEXT,
			pattern TEXT,
			material TEXT,
			formality INTEGER NOT NULL DEFAULT 0,
			temp_min_f DOUBLE,
			temp_max_f DOUBLE,
			weight_class TEXT,
			ema_score DOUBLE,
			ema_count INTEGER NOT NULL DEFAULT 0,
			loved BOOLEAN NOT NULL DEFAULT false,
			in_laundry BOOLEAN NOT NULL DEFAULT false,
			in_storage BOOLEAN NOT NULL DEFAULT false,
			reviewed BOOLEAN NOT NULL DEFAULT false,
			archived BOOLEAN NOT NULL DEFAULT false,
			wear_count INTEGER NOT NULL DEFAULT 0,
			last_worn_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS outfits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			item_ids TEXT NOT NULL,
			occasion TEXT,
			context TEXT,
			score DOUBLE NOT NULL DEFAULT 0,
			worn BOOLEAN NOT NULL DEFAULT false,
			worn_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS feedback_events (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			outfit_id TEXT,
			signal TEXT NOT NULL,
			value DOUBLE,
			context TEXT,
			trained BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS training_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			sample_count INTEGER NOT NULL,
			validation_loss DOUBLE NOT NULL,
			validation_mae DOUBLE NOT NULL,
			param_count INTEGER NOT NULL,
			epochs INTEGER NOT NULL,
			model_path TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates performance indexes
func (db *DB) createIndexes() error {
	// Tests that need indexes call CreateIndexes explicitly
	if db.cfg != nil && db.cfg.SkipIndexes {
		return nil
	}

	return db.doCreateIndexes()
}

// CreateIndexes creates all database indexes.
func (db *DB) CreateIndexes() error {
	return db.doCreateIndexes()
}

// doCreateIndexes is the internal implementation that creates all indexes.
func (db *DB) doCreateIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

// getIndexQueries returns the index creation SQL statements
func (db *DB) getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_user_category ON items(user_id, category)`,
		`CREATE INDEX IF NOT EXISTS idx_outfits_user ON outfits(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback_events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_user_trained ON feedback_events(user_id, trained)`,
		`CREATE INDEX IF NOT EXISTS idx_training_user ON training_sessions(user_id, created_at)`,
	}
}
