// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide (it caches struct
// metadata). Besides the built-in tags it registers:
//
//   - clock: a wall-clock string in HH:MM:SS form (e.g. "08:01:00")
//
// Punch events decoded from the device and summaries about to be written to
// the store are both checked with ValidateStruct; API query parameters use
// the built-in datetime tag:
//
//	type recordsQuery struct {
//	    Date string `validate:"omitempty,datetime=2006-01-02"`
//	}
package validation
