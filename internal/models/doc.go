// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

// Package models defines the data types shared by the device adapter, the
// ingestion pipeline, the store and the HTTP layer.
//
// Lifecycle of the attendance types:
//
//   - PunchEvent: produced by the terminal, lives for one fetch cycle.
//   - AttendanceSummary: derived per user per day, never patched in place.
//   - AttendanceSnapshot: the single cache entry holding today's summaries.
//   - AttendanceRecord: the durable row, one per user per calendar date.
package models
