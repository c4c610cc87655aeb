// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend"
)

const feedbackColumns = `id, user_id, item_id, outfit_id, signal, value, context, trained, created_at`

// ApplyFeedback writes a feedback action in one transaction: the worn flag,
// the item patches, then the events. Any failure leaves the database as it
// was, so a redelivered event is applied at most once. Events without an id
// get one.
func (db *DB) ApplyFeedback(ctx context.Context, w *recommend.FeedbackWrite) (err error) {
	if w == nil || (len(w.Patches) == 0 && len(w.Events) == 0 && w.WornOutfitID == "") {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("apply", "feedback_events", time.Since(start), err) }()

	unlock := db.lockUser(w.UserID)
	defer unlock()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	for i := range w.Events {
		e := &w.Events[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
	}

	return db.withConflictRetry(ctx, "apply feedback", func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer rollbackQuietly(tx)

		if w.WornOutfitID != "" {
			if err := markOutfitWornTx(ctx, tx, w.UserID, w.WornOutfitID, w.WornAt); err != nil {
				return err
			}
		}
		if err := patchItemsTx(ctx, tx, w.UserID, w.Patches, now); err != nil {
			return err
		}
		if err := insertFeedbackTx(ctx, tx, w.Events); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit feedback: %w", err)
		}
		return nil
	})
}

func insertFeedbackTx(ctx context.Context, tx *sql.Tx, events []models.FeedbackEvent) error {
	query := `INSERT INTO feedback_events (` + feedbackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range events {
		e := &events[i]
		c, err := encodeJSONColumn(e.Context)
		if err != nil {
			return fmt.Errorf("failed to encode context for event %s: %w", e.ID, err)
		}
		_, err = tx.ExecContext(ctx, query,
			e.ID, e.UserID, e.ItemID, e.OutfitID, string(e.Signal), nullable(e.Value), c, e.Trained, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert feedback event %s: %w", e.ID, err)
		}
	}
	return nil
}

// ListFeedback returns a user's feedback events in creation order,
// optionally only the ones not yet consumed by training.
func (db *DB) ListFeedback(ctx context.Context, userID string, untrainedOnly bool) (events []models.FeedbackEvent, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "feedback_events", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + feedbackColumns + ` FROM feedback_events WHERE user_id = ?`
	if untrainedOnly {
		query += ` AND NOT trained`
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer closeWithLog(rows, "feedback rows")

	events = make([]models.FeedbackEvent, 0)
	for rows.Next() {
		e, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}
	return events, nil
}

// MarkFeedbackTrained flags events as consumed by a training run.
func (db *DB) MarkFeedbackTrained(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update", "feedback_events", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	const batchSize = 500
	for lo := 0; lo < len(ids); lo += batchSize {
		hi := min(lo+batchSize, len(ids))
		batch := ids[lo:hi]
		query := `UPDATE feedback_events SET trained = true WHERE id IN (` + placeholders(len(batch)) + `)`

		err := db.withConflictRetry(ctx, "mark feedback trained", func() error {
			_, err := db.conn.ExecContext(ctx, query, stringArgs(batch)...)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to mark feedback trained: %w", err)
		}
	}
	return nil
}

// ListUsersWithUntrainedFeedback returns users holding at least minEvents
// untrained feedback events, ordered by user id.
func (db *DB) ListUsersWithUntrainedFeedback(ctx context.Context, minEvents int) (users []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "feedback_events", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if minEvents < 1 {
		minEvents = 1
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id FROM feedback_events
		WHERE NOT trained
		GROUP BY user_id
		HAVING COUNT(*) >= ?
		ORDER BY user_id`, minEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with untrained feedback: %w", err)
	}
	defer closeWithLog(rows, "user rows")

	users = make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// scanFeedback reads one row selected with feedbackColumns.
func scanFeedback(row rowScanner) (*models.FeedbackEvent, error) {
	var (
		e                 models.FeedbackEvent
		signal            string
		outfitID, ctxJSON sql.NullString
		value             sql.NullFloat64
	)

	if err := row.Scan(&e.ID, &e.UserID, &e.ItemID, &outfitID, &signal, &value, &ctxJSON, &e.Trained, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.Signal = models.SignalType(signal)
	e.OutfitID = outfitID.String
	if value.Valid {
		e.Value = models.Float64(value.Float64)
	}
	if ctxJSON.Valid && ctxJSON.String != "" {
		var c models.Context
		if err := json.Unmarshal([]byte(ctxJSON.String), &c); err != nil {
			return nil, fmt.Errorf("failed to decode context for event %s: %w", e.ID, err)
		}
		e.Context = &c
	}

	return &e, nil
}
