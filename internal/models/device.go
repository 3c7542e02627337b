// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package models

// DeviceInfo is the terminal status reported by the gateway.
type DeviceInfo struct {
	UserCounts   int    `json:"userCounts"`
	LogCounts    int    `json:"logCounts"`
	LogCapacity  int    `json:"logCapacity"`
	SerialNumber string `json:"serialNumber,omitempty"`
	Firmware     string `json:"firmware,omitempty"`
}

// DeviceUser is a user enrolled on the terminal.
type DeviceUser struct {
	UID    int    `json:"uid"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   int    `json:"role"`
	CardNo string `json:"cardno,omitempty"`
}
