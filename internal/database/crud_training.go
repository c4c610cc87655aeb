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

	"github.com/google/uuid"

	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/models"
)

// AppendTrainingSession records one training run in the audit log.
func (db *DB) AppendTrainingSession(ctx context.Context, s *models.TrainingSession) (err error) {
	if s == nil {
		return fmt.Errorf("training session is nil")
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "training_sessions", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO training_sessions (
		id, user_id, sample_count, validation_loss, validation_mae, param_count, epochs, model_path, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.SampleCount, s.ValidationLoss, s.ValidationMAE, s.ParamCount, s.Epochs, s.ModelPath, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert training session: %w", err)
	}
	return nil
}

// ListTrainingSessions returns a user's training runs, newest first.
func (db *DB) ListTrainingSessions(ctx context.Context, userID string) (sessions []models.TrainingSession, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "training_sessions", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT
		id, user_id, sample_count, validation_loss, validation_mae, param_count, epochs, model_path, created_at
	FROM training_sessions WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list training sessions: %w", err)
	}
	defer closeWithLog(rows, "training session rows")

	sessions = make([]models.TrainingSession, 0)
	for rows.Next() {
		var (
			s    models.TrainingSession
			path sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.SampleCount, &s.ValidationLoss, &s.ValidationMAE,
			&s.ParamCount, &s.Epochs, &path, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan training session: %w", err)
		}
		s.ModelPath = path.String
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training sessions: %w", err)
	}
	return sessions, nil
}
