// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package models

import "time"

const (
	// ClockLayout formats clock-in and clock-out values (hour:minute:second).
	ClockLayout = "15:04:05"

	// DateLayout formats calendar dates.
	DateLayout = "2006-01-02"
)

// PunchEvent is a single timestamped reading attributed to one user by the
// terminal. Events carry no identity beyond (UserID, RecordTime) and the
// terminal may report the same event more than once.
type PunchEvent struct {
	UserID     string    `json:"userId" validate:"required"`
	RecordTime time.Time `json:"recordTime" validate:"required"`
}

// AttendanceSummary is the earliest and latest punch of one user on one
// calendar date. A user seen once has ClockIn == ClockOut.
type AttendanceSummary struct {
	UserID   string `json:"userId" validate:"required"`
	ClockIn  string `json:"clockIn" validate:"required,clock"`
	ClockOut string `json:"clockOut" validate:"required,clock"`
}

// AttendanceSnapshot is the cached aggregate for one reference date.
// It is replaced wholesale on every successful refresh.
type AttendanceSnapshot struct {
	Date        string              `json:"date"`
	Summaries   []AttendanceSummary `json:"summaries"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// Clone returns a deep copy so readers never share the backing array with
// the cache.
func (s AttendanceSnapshot) Clone() AttendanceSnapshot {
	out := s
	if s.Summaries != nil {
		out.Summaries = make([]AttendanceSummary, len(s.Summaries))
		copy(out.Summaries, s.Summaries)
	}
	return out
}

// Empty reports whether the snapshot holds no summaries.
func (s AttendanceSnapshot) Empty() bool {
	return len(s.Summaries) == 0
}

// AttendanceRecord is the persisted daily record. At most one exists per
// (UserID, RecordDate); after creation only ClockOut changes.
type AttendanceRecord struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	ClockIn    string `json:"clockIn"`
	ClockOut   string `json:"clockOut"`
	RecordDate string `json:"recordDate"`
}

// ReconcileResult counts what a reconciliation run did to the store.
type ReconcileResult struct {
	Date     string `json:"date"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
}

// Total returns the number of summaries written.
func (r ReconcileResult) Total() int {
	return r.Inserted + r.Updated
}
