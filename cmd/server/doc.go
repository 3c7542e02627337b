// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package main is the entry point for the Attendsync server.

Attendsync polls a time-clock terminal for punch events, keeps today's
first and last punch per user in an in-memory cache, reconciles that cache
into a relational store and serves it over HTTP.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("attendsync")
	├── PipelineSupervisor ("pipeline-layer")
	│   ├── attendance-refresh    periodic device fetch into the cache
	│   ├── attendance-reconcile  periodic cache-to-store reconciliation
	│   └── refresh-reconciler    reconciles each refreshed snapshot (optional)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, optional config.yaml, environment)
 2. Logging: zerolog with the configured level and format
 3. Database: DuckDB (default) or SQLite through database/sql
 4. Device source: HTTP gateway client behind a gobreaker circuit breaker
 5. Attendance cache and pipeline manager
 6. Supervisor tree, then the HTTP server inside it

# Configuration

Required:
  - DEVICE_ADDRESS: terminal or gateway host

Common settings:
  - DEVICE_PORT (default 4370)
  - DB_DRIVER: duckdb or sqlite (default duckdb)
  - DB_PATH (default /data/attendsync.duckdb)
  - FETCH_INTERVAL, RECONCILE_INTERVAL (default 1m)
  - CACHE_TTL (default 1h)
  - HTTP_PORT (default 3000)
  - LOG_LEVEL, LOG_FORMAT

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops every
service, the HTTP server drains in-flight requests, and the database is
closed last.

# Example Usage

	export DEVICE_ADDRESS=192.168.68.203
	export DB_DRIVER=sqlite
	export DB_PATH=./attendance.db
	./attendsync
*/
package main
