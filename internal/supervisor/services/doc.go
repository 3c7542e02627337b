// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package services provides suture.Service wrappers for Attendsync components.

Each wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

PeriodicService:
  - Runs a task on a fixed interval, optionally once at start
  - Single-flight: a tick that arrives while the previous run is still
    going is skipped and logged
  - Task errors are logged; the service keeps ticking

TriggeredService:
  - Consumes watermill messages and hands each to a handler
  - Every message is acked, handler errors are logged

HTTPServerService:
  - Wraps *http.Server with graceful shutdown
*/
package services
