// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package models

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Success:
//
//	{"success": true, "data": [{"userId": "1", "clockIn": "08:01:00", "clockOut": "17:30:00"}]}
//
// Failure (always paired with a 5xx or 4xx status):
//
//	{"success": false, "message": "Could not retrieve attendance logs"}
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success wraps data in a successful envelope.
func Success(data interface{}) *APIResponse {
	return &APIResponse{Success: true, Data: data}
}

// Failure builds a failed envelope with a client-facing message.
func Failure(message string) *APIResponse {
	return &APIResponse{Success: false, Message: message}
}
