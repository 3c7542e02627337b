// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/attendsync/internal/database/query"
	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/metrics"
	"github.com/tomtom215/attendsync/internal/models"
	"github.com/tomtom215/attendsync/internal/validation"
)

const attendanceTable = "attendance_records"

// RecordFilter narrows ListAttendance.
type RecordFilter struct {
	// Date is the calendar day (YYYY-MM-DD). Required.
	Date string
	// UserIDs restricts results to these users when non-empty.
	UserIDs []string
}

// parseDay validates a YYYY-MM-DD string and returns UTC midnight of that day.
func parseDay(day string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalidDate, day, err)
	}
	return t, nil
}

// ReconcileDay writes one day's summaries in a single transaction.
//
// For every summary the record for (user, day) is looked up. An existing
// record gets its clock_out replaced; clock_in is never touched. A missing
// record is inserted with both values. Any failure rolls back the whole
// batch, so the store either reflects every summary or none of them.
func (db *DB) ReconcileDay(ctx context.Context, day string, summaries []models.AttendanceSummary) (result models.ReconcileResult, err error) {
	result.Date = day
	if len(summaries) == 0 {
		return result, ErrNoSummaries
	}

	recordDate, err := parseDay(day)
	if err != nil {
		return result, err
	}
	for i := range summaries {
		if verr := validation.ValidateStruct(&summaries[i]); verr != nil {
			return result, fmt.Errorf("summary %d: %w", i, verr)
		}
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("RECONCILE", attendanceTable, time.Since(start), err)
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Ensure transaction is finalized
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	selectQuery := fmt.Sprintf("SELECT id FROM %s WHERE user_id = ? AND %s LIMIT 1", attendanceTable, db.dialect.dayMatch)
	updateQuery := fmt.Sprintf("UPDATE %s SET clock_out = ?, updated_at = ? WHERE id = ?", attendanceTable)
	insertQuery := fmt.Sprintf("INSERT INTO %s (id, user_id, clock_in, clock_out, record_date, updated_at) VALUES (?, ?, ?, ?, ?, ?)", attendanceTable)

	now := db.dialect.timeArg(db.now())
	dateArg := db.dialect.timeArg(recordDate)

	for _, s := range summaries {
		var id string
		err = tx.QueryRowContext(ctx, selectQuery, s.UserID, day).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err = tx.ExecContext(ctx, insertQuery, db.newID(), s.UserID, s.ClockIn, s.ClockOut, dateArg, now); err != nil {
				return result, fmt.Errorf("failed to insert record for user %s: %w", s.UserID, err)
			}
			result.Inserted++
		case err != nil:
			return result, fmt.Errorf("failed to look up record for user %s: %w", s.UserID, err)
		default:
			if _, err = tx.ExecContext(ctx, updateQuery, s.ClockOut, now, id); err != nil {
				return result, fmt.Errorf("failed to update record %s: %w", id, err)
			}
			result.Updated++
		}
	}

	if err = tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

// ListAttendance returns persisted records for one day, ordered by user.
func (db *DB) ListAttendance(ctx context.Context, filter RecordFilter) (records []models.AttendanceRecord, err error) {
	if _, err = parseDay(filter.Date); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("SELECT", attendanceTable, time.Since(start), err)
	}()

	wb := query.NewWhereBuilder()
	wb.AddClause(db.dialect.dayMatch, filter.Date)
	wb.AddUsers(filter.UserIDs)
	where, args := wb.BuildWithPrefix()

	q := fmt.Sprintf("SELECT id, user_id, clock_in, clock_out, %s FROM %s %s ORDER BY user_id",
		db.dialect.dayExpr, attendanceTable, where)

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer closeWithLog(rows, "rows")

	records = []models.AttendanceRecord{}
	for rows.Next() {
		var r models.AttendanceRecord
		if err = rows.Scan(&r.ID, &r.UserID, &r.ClockIn, &r.ClockOut, &r.RecordDate); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}
