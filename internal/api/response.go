// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/models"
)

// Client-facing failure messages.
const (
	msgAttendanceFailed = "Could not retrieve attendance logs"
	msgDeviceInfoFailed = "Could not retrieve device info"
	msgUsersFailed      = "Could not retrieve user data"
	msgRecordsFailed    = "Could not retrieve attendance records"
	msgSyncFailed       = "Could not synchronize attendance"
	msgRateLimited      = "Too many requests"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		//nolint:errcheck // HTTP response write errors are not recoverable
		w.Write([]byte(`{"success":false,"message":"internal error"}`))
		return
	}

	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write(data)
}

func respondSuccess(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, models.Success(data))
}

func respondFailure(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.Failure(message))
}
