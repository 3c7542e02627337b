// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"context"
	"testing"

	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/database"
	"github.com/tomtom215/attendsync/internal/models"
)

func openPipelineStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

// TestPipeline_RefreshAndReconcileTwice follows one user through a working
// day: the morning refresh creates the record, the evening refresh only
// moves clock-out, and repeating a reconcile changes nothing.
func TestPipeline_RefreshAndReconcileTwice(t *testing.T) {
	t.Parallel()

	day := "2026-03-10"
	source := &fakeSource{steps: []step{
		{events: []models.PunchEvent{punch("1", day, "08:01:00"), punch("1", day, "12:00:00")}},
		{events: []models.PunchEvent{punch("1", day, "08:01:00"), punch("1", day, "12:00:00"), punch("1", day, "17:30:00")}},
	}}
	db := openPipelineStore(t)
	m, _ := newTestManager(t, source, db)
	ctx := context.Background()

	if _, err := m.Refresh(ctx); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	first, err := m.Reconcile(ctx)
	if err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	if first.Inserted != 1 || first.Updated != 0 {
		t.Errorf("first Reconcile() = %+v, want 1 insert", first)
	}

	if _, err := m.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	second, err := m.Reconcile(ctx)
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if second.Inserted != 0 || second.Updated != 1 {
		t.Errorf("second Reconcile() = %+v, want 1 update", second)
	}

	// Unchanged cache: same store state.
	if _, err := m.Reconcile(ctx); err != nil {
		t.Fatalf("repeat Reconcile() error = %v", err)
	}

	records, err := db.ListAttendance(ctx, database.RecordFilter{Date: day})
	if err != nil {
		t.Fatalf("ListAttendance() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v, want exactly one", records)
	}
	if records[0].ClockIn != "08:01:00" || records[0].ClockOut != "17:30:00" {
		t.Errorf("record = %+v, want 08:01:00 to 17:30:00", records[0])
	}
}
