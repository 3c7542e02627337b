// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

// Package query provides SQL WHERE clause building for the database package.
//
// Clauses are always parameterized; values never reach the SQL text:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause(dayMatch, "2024-05-10")
//	wb.AddUsers(filter.UserIDs)
//	where, args := wb.BuildWithPrefix()
//	rows, err := db.QueryContext(ctx, "SELECT ... FROM attendance_records "+where, args...)
package query
