// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/attendsync/internal/middleware"
)

// NewRouter builds the chi router.
//
// Middleware order: request ID (so every later log line carries it),
// real IP, panic recovery, access log, metrics, CORS. Rate limiting is
// applied per route group.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondFailure(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Legacy paths kept for existing dashboards.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit("legacy"))
		r.Get("/attendance-logs", h.TodayAttendance)
		r.Get("/device-info", h.DeviceInfo)
		r.Get("/users", h.DeviceUsers)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Use(mw.RateLimit("attendance"))
			r.Get("/today", h.TodayAttendance)
			r.Get("/records", h.AttendanceRecords)
			r.Post("/sync", h.SyncAttendance)
		})

		r.Route("/device", func(r chi.Router) {
			r.Use(mw.RateLimit("device"))
			r.Get("/info", h.DeviceInfo)
			r.Get("/users", h.DeviceUsers)
		})

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
