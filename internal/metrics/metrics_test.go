// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDeviceAttempt(t *testing.T) {
	before := testutil.ToFloat64(DeviceFetchAttempts.WithLabelValues("success"))
	eventsBefore := testutil.ToFloat64(DeviceEventsRead)

	RecordDeviceAttempt("success", 4)
	RecordDeviceAttempt("no_data", 0)

	if got := testutil.ToFloat64(DeviceFetchAttempts.WithLabelValues("success")) - before; got != 1 {
		t.Errorf("success attempts delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(DeviceEventsRead) - eventsBefore; got != 4 {
		t.Errorf("events delta = %v, want 4", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("hit")) - hits; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("miss")) - misses; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
}

func TestRecordReconcile(t *testing.T) {
	tests := []struct {
		name       string
		outcome    string
		inserted   int
		updated    int
		wantInsert float64
		wantUpdate float64
	}{
		{"success counts rows", "success", 2, 3, 2, 3},
		{"failure writes nothing", "failure", 5, 5, 0, 0},
		{"skipped writes nothing", "skipped_empty", 1, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := testutil.ToFloat64(ReconcileRuns.WithLabelValues(tt.outcome))
			ins := testutil.ToFloat64(ReconcileRows.WithLabelValues("insert"))
			upd := testutil.ToFloat64(ReconcileRows.WithLabelValues("update"))

			RecordReconcile(tt.outcome, 10*time.Millisecond, tt.inserted, tt.updated)

			if got := testutil.ToFloat64(ReconcileRuns.WithLabelValues(tt.outcome)) - runs; got != 1 {
				t.Errorf("runs delta = %v, want 1", got)
			}
			if got := testutil.ToFloat64(ReconcileRows.WithLabelValues("insert")) - ins; got != tt.wantInsert {
				t.Errorf("insert delta = %v, want %v", got, tt.wantInsert)
			}
			if got := testutil.ToFloat64(ReconcileRows.WithLabelValues("update")) - upd; got != tt.wantUpdate {
				t.Errorf("update delta = %v, want %v", got, tt.wantUpdate)
			}
		})
	}
}

func TestRecordDBQuery_TruncatesErrorLabel(t *testing.T) {
	long := errors.New("this is a very long error message that exceeds fifty characters and should be truncated")
	RecordDBQuery("INSERT", "attendance_records", time.Millisecond, long)

	label := long.Error()[:50]
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "attendance_records", label)); got < 1 {
		t.Errorf("truncated error label not recorded, got %v", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}
