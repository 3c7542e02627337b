// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"sort"
	"time"

	"github.com/tomtom215/attendsync/internal/models"
)

type punchRange struct {
	first time.Time
	last  time.Time
}

// Aggregate reduces a batch of punch events to one summary per user for the
// calendar date of reference in loc. Events on other dates are ignored.
// The result is never nil and is sorted by UserID.
//
// The output depends only on the set of (UserID, RecordTime) pairs, so
// duplicated or reordered events produce the same summaries.
func Aggregate(events []models.PunchEvent, reference time.Time, loc *time.Location) []models.AttendanceSummary {
	if loc == nil {
		loc = time.Local
	}
	year, month, day := reference.In(loc).Date()

	ranges := make(map[string]*punchRange)
	for i := range events {
		ev := &events[i]
		if ev.UserID == "" {
			continue
		}
		t := ev.RecordTime.In(loc)
		if y, m, d := t.Date(); y != year || m != month || d != day {
			continue
		}

		r, ok := ranges[ev.UserID]
		if !ok {
			ranges[ev.UserID] = &punchRange{first: t, last: t}
			continue
		}
		if t.Before(r.first) {
			r.first = t
		}
		if t.After(r.last) {
			r.last = t
		}
	}

	summaries := make([]models.AttendanceSummary, 0, len(ranges))
	for userID, r := range ranges {
		summaries = append(summaries, models.AttendanceSummary{
			UserID:   userID,
			ClockIn:  r.first.Format(models.ClockLayout),
			ClockOut: r.last.Format(models.ClockLayout),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UserID < summaries[j].UserID
	})
	return summaries
}

// dayOf formats the calendar date of t in loc.
func dayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(models.DateLayout)
}
