// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package database

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/mdcscry/thread/internal/logging"
)

func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// withConflictRetry runs fn and reruns it with exponential backoff while it
// fails with a DuckDB transaction conflict. The per-user lock prevents most
// conflicts; the remainder come from the retrain loop marking feedback
// rows trained while new feedback for the same user lands.
func (db *DB) withConflictRetry(ctx context.Context, op string, fn func() error) error {
	delay := db.conflictDelay
	err := fn()
	for attempt := 1; attempt <= db.maxConflictRetries && isTransactionConflict(err); attempt++ {
		logging.Debug().Str("operation", op).Int("attempt", attempt).Dur("delay", delay).Msg("DuckDB transaction conflict, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		err = fn()
	}
	if isTransactionConflict(err) {
		return fmt.Errorf("%s: still conflicting after %d retries: %w", op, db.maxConflictRetries, err)
	}
	return err
}

var (
	conflictMarkers = []string{
		"Transaction conflict",
		"Conflict on update",
		"cannot update a table that has been altered",
	}
	uniqueMarkers = []string{
		"unique constraint",
		"duplicate key",
		"primary key constraint",
	}
)

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// isTransactionConflict matches DuckDB's optimistic concurrency aborts.
func isTransactionConflict(err error) bool {
	return err != nil && containsAny(err.Error(), conflictMarkers)
}

// isUniqueConstraintError matches primary key and unique violations.
func isUniqueConstraintError(err error) bool {
	return err != nil && containsAny(strings.ToLower(err.Error()), uniqueMarkers)
}

// closeWithLog closes c and logs a failure instead of returning it.
func closeWithLog(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("type", what).Msg("Close failed")
	}
}

// closeQuietly is for error paths where a close failure adds nothing.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// rollbackQuietly is deferred after BeginTx; after Commit it is a no-op.
func rollbackQuietly(tx interface{ Rollback() error }) {
	if tx != nil {
		_ = tx.Rollback()
	}
}
