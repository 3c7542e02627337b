// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/logging"
)

// DB wraps the attendance store connection pool.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	dialect dialect

	// newID generates primary keys for inserted records.
	newID func() string
	// now stamps updated_at.
	now func() time.Time
}

// New opens the store described by cfg and creates the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open(d.driverName, d.dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		dialect: d,
		newID:   uuid.NewString,
		now:     time.Now,
	}

	db.configureConnectionPool()

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("driver", d.name).
		Str("path", cfg.Path).
		Msg("Attendance store ready")

	return db, nil
}

// configureConnectionPool applies pool limits. An in-memory SQLite database
// exists per connection, so it is pinned to a single one.
func (db *DB) configureConnectionPool() {
	maxOpen := db.cfg.MaxOpenConns
	maxIdle := db.cfg.MaxIdleConns
	if db.dialect.name == "sqlite" {
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		db.conn.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.conn.SetMaxIdleConns(maxIdle)
	}
	if db.cfg.ConnMaxIdleTime > 0 && db.cfg.Path != ":memory:" {
		db.conn.SetConnMaxIdleTime(db.cfg.ConnMaxIdleTime)
	}
	if db.cfg.ConnMaxLifetime > 0 {
		db.conn.SetConnMaxLifetime(db.cfg.ConnMaxLifetime)
	}
}

// Driver returns the dialect name ("duckdb" or "sqlite").
func (db *DB) Driver() string {
	return db.dialect.name
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.dialect.name == "duckdb" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		// Flush the WAL so the next start does not replay it.
		if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}
