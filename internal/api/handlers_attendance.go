// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package api

import (
	"net/http"

	"github.com/tomtom215/attendsync/internal/database"
	"github.com/tomtom215/attendsync/internal/logging"
	pipeline "github.com/tomtom215/attendsync/internal/sync"
	"github.com/tomtom215/attendsync/internal/validation"
)

// recordsQuery is the validated form of GET /api/v1/attendance/records.
type recordsQuery struct {
	Date    string   `validate:"required,datetime=2006-01-02"`
	UserIDs []string `validate:"max=100,dive,required,max=64"`
}

// TodayAttendance returns today's first and last punch per user.
//
// Response: {"success": true, "data": [{"userId", "clockIn", "clockOut"}]}
// On failure: 500 {"success": false, "message": "Could not retrieve attendance logs"}
func (h *Handler) TodayAttendance(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.pipeline.TodayAttendance(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to serve today's attendance")
		respondFailure(w, http.StatusInternalServerError, msgAttendanceFailed)
		return
	}
	respondSuccess(w, summaries)
}

// SyncAttendance refreshes from the device and reconciles immediately.
// A refresh that finds no punches is still a success with zero counts.
func (h *Handler) SyncAttendance(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.SyncNow(r.Context())
	if err != nil && !pipeline.Skipped(err) {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Manual attendance sync failed")
		respondFailure(w, http.StatusInternalServerError, msgSyncFailed)
		return
	}
	respondSuccess(w, result)
}

// AttendanceRecords lists persisted records for ?date= (default today),
// optionally restricted by one or more ?user= parameters.
func (h *Handler) AttendanceRecords(w http.ResponseWriter, r *http.Request) {
	q := recordsQuery{
		Date:    r.URL.Query().Get("date"),
		UserIDs: r.URL.Query()["user"],
	}
	if q.Date == "" {
		q.Date = h.pipeline.Today()
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondFailure(w, http.StatusBadRequest, verr.Error())
		return
	}

	records, err := h.store.ListAttendance(r.Context(), database.RecordFilter{
		Date:    q.Date,
		UserIDs: q.UserIDs,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("date", q.Date).Msg("Failed to list attendance records")
		respondFailure(w, http.StatusInternalServerError, msgRecordsFailed)
		return
	}
	respondSuccess(w, records)
}
