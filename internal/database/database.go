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
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mdcscry/thread/internal/config"
	"github.com/mdcscry/thread/internal/logging"
)

const (
	memoryPath       = ":memory:"
	defaultMaxMemory = "1GB"
)

// DB is the DuckDB-backed wardrobe repository used by the engine.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// userLocks holds one *sync.Mutex per user. DuckDB aborts one of two
	// transactions that update the same row, so EMA updates for a user
	// run one at a time.
	userLocks sync.Map

	maxConflictRetries int
	conflictDelay      time.Duration
}

// New opens the database at cfg.Path, creating its directory, and brings
// the schema up to date.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if err := ensureDir(cfg.Path); err != nil {
		return nil, err
	}

	conn, err := sql.Open("duckdb", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", cfg.Path, err)
	}

	db := &DB{
		conn:               conn,
		cfg:                cfg,
		maxConflictRetries: 3,
		conflictDelay:      50 * time.Millisecond,
	}
	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return db, nil
}

// dsn encodes DuckDB settings as query parameters. Extension autoloading is
// off so startup never waits on the network.
func dsn(cfg *config.DatabaseConfig) string {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = defaultMaxMemory
	}

	q := url.Values{}
	q.Set("access_mode", "read_write")
	q.Set("threads", strconv.Itoa(threads))
	q.Set("max_memory", maxMemory)
	q.Set("preserve_insertion_order", strconv.FormatBool(cfg.PreserveInsertionOrder))
	q.Set("autoinstall_known_extensions", "false")
	q.Set("autoload_known_extensions", "false")
	return cfg.Path + "?" + q.Encode()
}

func ensureDir(path string) error {
	if path == memoryPath {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}

// initialize creates tables, applies pending migrations, builds indexes
// and checkpoints so a crash right after startup replays no schema work.
func (db *DB) initialize() error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"create tables", db.createTables},
		{"migrate", db.runVersionedMigrations},
		{"create indexes", db.createIndexes},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	ctx, cancel := schemaContext()
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Schema checkpoint failed")
	}
	return nil
}

// Close checkpoints the WAL into the database file and closes it.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Str("path", db.cfg.Path).Msg("Checkpoint before close failed")
	}
	return db.conn.Close()
}

// Ping reports whether DuckDB answers. The ops health check calls it.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return errors.New("database is not open")
	}
	return db.conn.PingContext(ctx)
}

// lockUser takes the write lock for userID and returns its release.
func (db *DB) lockUser(userID string) (unlock func()) {
	v, _ := db.userLocks.LoadOrStore(userID, new(sync.Mutex))
	mu := v.(*sync.Mutex) //nolint:forcetypeassert // only *sync.Mutex is stored
	mu.Lock()
	return mu.Unlock
}
