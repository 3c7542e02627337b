// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/models"
	pipeline "github.com/tomtom215/attendsync/internal/sync"
)

// readyPingTimeout bounds the store ping in readiness checks.
const readyPingTimeout = 2 * time.Second

// LiveStatus is the liveness payload.
type LiveStatus struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

// ReadyStatus is the readiness payload.
type ReadyStatus struct {
	Status   string          `json:"status"`
	Database string          `json:"database"`
	Pipeline pipeline.Status `json:"pipeline"`
	Uptime   float64         `json:"uptime"`
}

// HealthLive reports that the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, LiveStatus{
		Status: "alive",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the store answers, along with pipeline status.
// Device reachability is not checked.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
	defer cancel()

	status := ReadyStatus{
		Status:   "ready",
		Database: "ok",
		Pipeline: h.pipeline.Status(),
		Uptime:   time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check: database ping failed")
		status.Status = "not_ready"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{Success: code == http.StatusOK, Data: status})
}
