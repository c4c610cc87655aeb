// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend"
)

const outfitColumns = `id, user_id, item_ids, occasion, context, score, worn, worn_at, created_at`

// SaveOutfits persists generated outfits as item references.
func (db *DB) SaveOutfits(ctx context.Context, outfits []models.OutfitRecord) (err error) {
	if len(outfits) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "outfits", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	query := `INSERT INTO outfits (` + outfitColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i := range outfits {
		o := &outfits[i]
		itemIDs, err := json.Marshal(o.ItemIDs)
		if err != nil {
			return fmt.Errorf("failed to encode item ids for outfit %s: %w", o.ID, err)
		}
		c, err := encodeJSONColumn(o.Context)
		if err != nil {
			return fmt.Errorf("failed to encode context for outfit %s: %w", o.ID, err)
		}

		var wornAt any
		if o.Worn && !o.WornAt.IsZero() {
			wornAt = o.WornAt
		}

		_, err = tx.ExecContext(ctx, query,
			o.ID, o.UserID, string(itemIDs), o.Occasion, c, o.Score, o.Worn, wornAt, o.CreatedAt)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("outfit %s already exists: %w", o.ID, err)
			}
			return fmt.Errorf("failed to insert outfit %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outfits: %w", err)
	}
	return nil
}

// GetOutfit returns one outfit; recommend.ErrOutfitNotFound when it does
// not belong to the user.
func (db *DB) GetOutfit(ctx context.Context, userID, outfitID string) (o models.OutfitRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "outfits", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+outfitColumns+` FROM outfits WHERE user_id = ? AND id = ?`, userID, outfitID)
	found, err := scanOutfit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OutfitRecord{}, fmt.Errorf("%w: %s", recommend.ErrOutfitNotFound, outfitID)
	}
	if err != nil {
		return models.OutfitRecord{}, fmt.Errorf("failed to get outfit: %w", err)
	}
	return *found, nil
}

// ListOutfits returns a user's most recent outfits, newest first.
func (db *DB) ListOutfits(ctx context.Context, userID string, limit int) (outfits []models.OutfitRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "outfits", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+outfitColumns+` FROM outfits WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	defer closeWithLog(rows, "outfit rows")

	outfits = make([]models.OutfitRecord, 0)
	for rows.Next() {
		o, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		outfits = append(outfits, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfits: %w", err)
	}
	return outfits, nil
}

// markOutfitWornTx flags an outfit as worn inside tx.
func markOutfitWornTx(ctx context.Context, tx *sql.Tx, userID, outfitID string, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE outfits SET worn = true, worn_at = ? WHERE user_id = ? AND id = ?`,
		at.UTC(), userID, outfitID)
	if err != nil {
		return fmt.Errorf("failed to mark outfit worn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", recommend.ErrOutfitNotFound, outfitID)
	}
	return nil
}

// scanOutfit reads one row selected with outfitColumns.
func scanOutfit(row rowScanner) (*models.OutfitRecord, error) {
	var (
		o                 models.OutfitRecord
		itemIDs           string
		occasion, ctxJSON sql.NullString
		wornAt            sql.NullTime
	)

	if err := row.Scan(&o.ID, &o.UserID, &itemIDs, &occasion, &ctxJSON, &o.Score, &o.Worn, &wornAt, &o.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(itemIDs), &o.ItemIDs); err != nil {
		return nil, fmt.Errorf("failed to decode item ids for outfit %s: %w", o.ID, err)
	}
	o.Occasion = occasion.String
	if ctxJSON.Valid && ctxJSON.String != "" {
		var c models.Context
		if err := json.Unmarshal([]byte(ctxJSON.String), &c); err != nil {
			return nil, fmt.Errorf("failed to decode context for outfit %s: %w", o.ID, err)
		}
		o.Context = &c
	}
	if wornAt.Valid {
		o.WornAt = wornAt.Time
	}

	return &o, nil
}
