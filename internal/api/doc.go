// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package api is the HTTP serving boundary.

Every endpoint answers with the models.APIResponse envelope:

	{"success": true, "data": ...}
	{"success": false, "message": "..."}

Routes:

	GET  /attendance-logs               today's summaries (legacy path)
	GET  /device-info                   device information (legacy path)
	GET  /users                         enrolled users (legacy path)
	GET  /api/v1/attendance/today       today's summaries
	GET  /api/v1/attendance/records     persisted records for ?date= and ?user=
	POST /api/v1/attendance/sync        refresh then reconcile immediately
	GET  /api/v1/device/info            device information
	GET  /api/v1/device/users           enrolled users
	GET  /api/v1/health/live            liveness
	GET  /api/v1/health/ready           readiness (store ping and pipeline status)
	GET  /metrics                       Prometheus exposition

Today's summaries come from the attendance cache. On a miss the handler
runs one synchronous refresh through the pipeline, which owns the cache
write, and answers with whatever that produced ([] when nothing).
*/
package api
