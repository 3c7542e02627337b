// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

// Package config loads Attendsync configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (config.yaml, /etc/attendsync/config.yaml, or CONFIG_PATH)
//  3. Environment variables (DEVICE_ADDRESS, FETCH_INTERVAL, DB_PATH, ...)
//
// Example config.yaml:
//
//	device:
//	  address: 192.168.68.203
//	  port: 4370
//	sync:
//	  fetch_interval: 1m
//	  reconcile_interval: 1m
//	  timezone: Asia/Jakarta
//	database:
//	  driver: duckdb
//	  path: /data/attendsync.duckdb
//
// The returned Config is immutable after Load and safe for concurrent reads.
package config
