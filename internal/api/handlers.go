// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package api

import (
	"context"
	"time"

	"github.com/tomtom215/attendsync/internal/database"
	"github.com/tomtom215/attendsync/internal/device"
	"github.com/tomtom215/attendsync/internal/models"
	pipeline "github.com/tomtom215/attendsync/internal/sync"
)

// Pipeline is the part of the attendance pipeline the API serves from.
type Pipeline interface {
	TodayAttendance(ctx context.Context) ([]models.AttendanceSummary, error)
	SyncNow(ctx context.Context) (models.ReconcileResult, error)
	Status() pipeline.Status
	Today() string
}

// RecordStore reads persisted attendance.
type RecordStore interface {
	ListAttendance(ctx context.Context, filter database.RecordFilter) ([]models.AttendanceRecord, error)
	Ping(ctx context.Context) error
}

// Handler serves every HTTP endpoint.
type Handler struct {
	pipeline  Pipeline
	store     RecordStore
	device    device.Source
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(p Pipeline, store RecordStore, source device.Source) *Handler {
	return &Handler{
		pipeline:  p,
		store:     store,
		device:    source,
		startTime: time.Now(),
	}
}
