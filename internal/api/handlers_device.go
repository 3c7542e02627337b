// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/attendsync/internal/device"
	"github.com/tomtom215/attendsync/internal/logging"
)

// DeviceInfo returns user and log counts reported by the terminal.
func (h *Handler) DeviceInfo(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, h.device, msgDeviceInfoFailed, func(ctx context.Context, s device.Session) (interface{}, error) {
		return s.Info(ctx)
	})
}

// DeviceUsers returns the users enrolled on the terminal.
func (h *Handler) DeviceUsers(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, h.device, msgUsersFailed, func(ctx context.Context, s device.Session) (interface{}, error) {
		return s.Users(ctx)
	})
}

// withSession opens a device session, runs read and always closes the
// session before responding.
func withSession(
	w http.ResponseWriter,
	r *http.Request,
	source device.Source,
	failure string,
	read func(context.Context, device.Session) (interface{}, error),
) {
	ctx := r.Context()
	log := logging.Ctx(ctx)

	session, err := source.Open(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open device session")
		respondFailure(w, http.StatusInternalServerError, failure)
		return
	}

	data, err := read(ctx, session)
	if cerr := session.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("Failed to close device session")
	}
	if err != nil {
		log.Error().Err(err).Msg("Device read failed")
		respondFailure(w, http.StatusInternalServerError, failure)
		return
	}
	respondSuccess(w, data)
}
