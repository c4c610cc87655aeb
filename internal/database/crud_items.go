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
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend"
)

const itemColumns = `id, user_id, name, category, subcategory, primary_color, secondary_color,
	colors, pattern, material, formality, temp_min_f, temp_max_f, weight_class,
	ema_score, ema_count, loved, in_laundry, in_storage, reviewed, archived,
	wear_count, last_worn_at, created_at, updated_at`

var _ recommend.Repository = (*DB)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// UpsertItems inserts or replaces wardrobe items. Ingestion owns item
// creation; the engine only patches preference and wear fields.
func (db *DB) UpsertItems(ctx context.Context, items []models.Item) (err error) {
	if len(items) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "items", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	query := `INSERT OR REPLACE INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	for i := range items {
		item := &items[i]
		if item.ID == "" || item.UserID == "" {
			return fmt.Errorf("item %d: id and user_id are required", i)
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if item.UpdatedAt.IsZero() {
			item.UpdatedAt = item.CreatedAt
		}

		colors, err := encodeJSONColumn(item.Colors)
		if err != nil {
			return fmt.Errorf("failed to encode colors for item %s: %w", item.ID, err)
		}

		_, err = tx.ExecContext(ctx, query,
			item.ID, item.UserID, item.Name, string(item.Category), item.Subcategory,
			item.PrimaryColor, item.SecondaryColor, colors, item.Pattern, item.Material,
			item.Formality, nullable(item.TempMinF), nullable(item.TempMaxF), item.WeightClass,
			nullable(item.EMAScore), item.EMACount, item.Loved, item.InLaundry, item.InStorage,
			item.Reviewed, item.Archived, item.WearCount, nullable(item.LastWornAt),
			item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}
	return nil
}

// ListEligibleItems returns the user's items that pass the filter, ordered by id.
func (db *DB) ListEligibleItems(ctx context.Context, userID string, f models.ItemFilter) (items []models.Item, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "items", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query, args := buildItemFilterQuery(userID, &f)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer closeWithLog(rows, "item rows")

	items = make([]models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// buildItemFilterQuery translates an ItemFilter into a WHERE clause. It
// mirrors models.ItemFilter.Matches.
func buildItemFilterQuery(userID string, f *models.ItemFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + itemColumns + ` FROM items WHERE user_id = ? AND NOT archived`)
	args := []any{userID}

	if !f.IncludeUnavailable {
		b.WriteString(` AND NOT in_laundry AND NOT in_storage`)
	}

	if f.TemperatureF != nil {
		b.WriteString(` AND (temp_min_f IS NULL OR temp_min_f <= ?) AND (temp_max_f IS NULL OR temp_max_f >= ?)`)
		args = append(args, *f.TemperatureF, *f.TemperatureF)
	}

	if f.FormalityTarget > 0 {
		window := f.FormalityWindow
		if window <= 0 {
			window = models.DefaultFormalityWindow
		}
		b.WriteString(` AND (formality = 0 OR abs(formality - ?) <= ?)`)
		args = append(args, f.FormalityTarget, window)
	}

	if len(f.Categories) > 0 {
		b.WriteString(` AND category IN (` + placeholders(len(f.Categories)) + `)`)
		for _, c := range f.Categories {
			args = append(args, string(c))
		}
	}

	b.WriteString(` ORDER BY id`)
	return b.String(), args
}

// GetItem returns one item; recommend.ErrItemNotFound when it does not
// belong to the user.
func (db *DB) GetItem(ctx context.Context, userID, itemID string) (item models.Item, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "items", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE user_id = ? AND id = ?`, userID, itemID)
	found, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, fmt.Errorf("%w: %s", recommend.ErrItemNotFound, itemID)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to get item: %w", err)
	}
	return *found, nil
}

// GetItems batch-fetches items by id. Missing ids are absent from the map.
func (db *DB) GetItems(ctx context.Context, userID string, ids []string) (items map[string]models.Item, err error) {
	items = make(map[string]models.Item, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "items", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := append([]any{userID}, stringArgs(ids)...)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer closeWithLog(rows, "item rows")

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items[item.ID] = *item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// patchItemsTx applies per-item patches inside tx. A missing item returns
// recommend.ErrItemNotFound.
func patchItemsTx(ctx context.Context, tx *sql.Tx, userID string, patches map[string]models.ItemPatch, now time.Time) error {
	query := `UPDATE items SET
		ema_score = COALESCE(CAST(? AS DOUBLE), ema_score),
		ema_count = COALESCE(CAST(? AS INTEGER), ema_count),
		wear_count = COALESCE(CAST(? AS INTEGER), wear_count),
		last_worn_at = COALESCE(CAST(? AS TIMESTAMP), last_worn_at),
		loved = COALESCE(CAST(? AS BOOLEAN), loved),
		updated_at = ?
	WHERE user_id = ? AND id = ?`

	for itemID, p := range patches {
		res, err := tx.ExecContext(ctx, query,
			nullable(p.EMAScore), nullable(p.EMACount), nullable(p.WearCount),
			nullable(p.LastWornAt), nullable(p.Loved), now, userID, itemID)
		if err != nil {
			return fmt.Errorf("failed to update item %s: %w", itemID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update item %s: %w", itemID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", recommend.ErrItemNotFound, itemID)
		}
	}
	return nil
}

// scanItem reads one row selected with itemColumns.
func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item                           models.Item
		category                       string
		name, subcategory              sql.NullString
		primary, secondary, colors     sql.NullString
		pattern, material, weightClass sql.NullString
		tempMin, tempMax, ema          sql.NullFloat64
		lastWorn                       sql.NullTime
	)

	err := row.Scan(
		&item.ID, &item.UserID, &name, &category, &subcategory, &primary, &secondary,
		&colors, &pattern, &material, &item.Formality, &tempMin, &tempMax, &weightClass,
		&ema, &item.EMACount, &item.Loved, &item.InLaundry, &item.InStorage, &item.Reviewed, &item.Archived,
		&item.WearCount, &lastWorn, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Category = models.Category(category)
	item.Name = name.String
	item.Subcategory = subcategory.String
	item.PrimaryColor = primary.String
	item.SecondaryColor = secondary.String
	item.Pattern = pattern.String
	item.Material = material.String
	item.WeightClass = weightClass.String

	if colors.Valid && colors.String != "" {
		if err := json.Unmarshal([]byte(colors.String), &item.Colors); err != nil {
			return nil, fmt.Errorf("failed to decode colors for item %s: %w", item.ID, err)
		}
	}
	if tempMin.Valid {
		item.TempMinF = models.Float64(tempMin.Float64)
	}
	if tempMax.Valid {
		item.TempMaxF = models.Float64(tempMax.Float64)
	}
	if ema.Valid {
		item.EMAScore = models.Float64(ema.Float64)
	}
	if lastWorn.Valid {
		t := lastWorn.Time
		item.LastWornAt = &t
	}

	return &item, nil
}

// encodeJSONColumn marshals v for a JSON text column. Nil slices and
// pointers are stored as NULL.
func encodeJSONColumn(v any) (any, error) {
	switch t := v.(type) {
	case []string:
		if t == nil {
			return nil, nil
		}
	case *models.Context:
		if t == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
