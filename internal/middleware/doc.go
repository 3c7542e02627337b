// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: accepts or generates an X-Request-ID and puts it, with a fresh
    correlation ID, into the logging context.
  - AccessLog: one structured log line per request.
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern so path parameters never explode cardinality.

All three are chi-style func(http.Handler) http.Handler.
*/
package middleware
