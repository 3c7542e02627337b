// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package database

import (
	"fmt"
	"runtime"
	"time"

	"github.com/tomtom215/attendsync/internal/config"
)

// sqliteTimeLayout is how timestamps are stored in SQLite TEXT columns.
// DATE() understands it directly.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// dialect isolates the SQL differences between DuckDB and SQLite.
type dialect struct {
	name       string
	driverName string

	// dayMatch compares record_date's calendar day to a YYYY-MM-DD parameter.
	dayMatch string
	// dayExpr selects record_date's calendar day as YYYY-MM-DD text.
	dayExpr string

	createTable string
	createIndex string

	// timeArg converts a timestamp into a driver argument for TIMESTAMP columns.
	timeArg func(time.Time) interface{}

	dsn func(cfg *config.DatabaseConfig) string
}

var duckdbDialect = dialect{
	name:       "duckdb",
	driverName: "duckdb",
	dayMatch:   "CAST(record_date AS DATE) = CAST(? AS DATE)",
	dayExpr:    "CAST(CAST(record_date AS DATE) AS VARCHAR)",
	createTable: `CREATE TABLE IF NOT EXISTS attendance_records (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL CHECK (length(user_id) > 0),
		clock_in VARCHAR NOT NULL,
		clock_out VARCHAR NOT NULL,
		record_date TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	createIndex: `CREATE INDEX IF NOT EXISTS idx_attendance_user_date ON attendance_records(user_id, record_date)`,
	timeArg: func(t time.Time) interface{} {
		return t.UTC()
	},
	dsn: func(cfg *config.DatabaseConfig) string {
		threads := cfg.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		maxMemory := cfg.MaxMemory
		if maxMemory == "" {
			maxMemory = "512MB"
		}
		return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
			cfg.Path, threads, maxMemory)
	},
}

var sqliteDialect = dialect{
	name:       "sqlite",
	driverName: "sqlite",
	dayMatch:   "DATE(record_date) = ?",
	dayExpr:    "DATE(record_date)",
	createTable: `CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL CHECK (length(user_id) > 0),
		clock_in TEXT NOT NULL,
		clock_out TEXT NOT NULL,
		record_date TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	createIndex: `CREATE INDEX IF NOT EXISTS idx_attendance_user_date ON attendance_records(user_id, record_date)`,
	timeArg: func(t time.Time) interface{} {
		return t.UTC().Format(sqliteTimeLayout)
	},
	dsn: func(cfg *config.DatabaseConfig) string {
		if cfg.Path == ":memory:" {
			return cfg.Path
		}
		return cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	},
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "", "duckdb":
		return duckdbDialect, nil
	case "sqlite":
		return sqliteDialect, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
