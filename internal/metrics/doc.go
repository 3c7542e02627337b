// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package metrics provides Prometheus metrics for the attendance pipeline.

All collectors are registered with the default registry through promauto and
exposed by the API at /metrics.

Device:
  - device_fetch_attempts_total{result}: individual read attempts
  - device_fetch_cycles_total{outcome}: complete fetch cycles (retries included)
  - device_fetch_duration_seconds: fetch cycle latency
  - device_events_read_total, device_events_skipped_total
  - circuit_breaker_*: breaker state, requests, transitions

Cache:
  - attendance_cache_refreshes_total, attendance_cache_lookups_total{result}
  - attendance_cache_summaries: size of the current snapshot

Reconciliation:
  - reconcile_runs_total{outcome}, reconcile_duration_seconds
  - reconcile_rows_total{op}: rows inserted or updated
  - reconcile_last_success_timestamp

Store and API:
  - db_query_duration_seconds, db_query_errors_total
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

Helpers such as RecordReconcile and RecordFetchCycle keep label values
consistent across callers.
*/
package metrics
