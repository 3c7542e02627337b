// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package sync runs the attendance pipeline: it pulls punch events from the
terminal, reduces them to per-user summaries for today, keeps those summaries
in the attendance cache and folds them into the persistent store.

# Pipeline

	device.Source -> Fetcher -> Aggregate -> cache.AttendanceCache -> Reconcile -> database

Stages:

  - Fetcher: opens a session, reads the full event list and closes the
    session on every path. Missing data is retried a bounded number of
    times with a fixed delay; a malformed payload is reported at once.
  - Aggregate: pure function. Earliest punch is clock-in, latest is
    clock-out, one summary per user seen on the reference date.
  - Manager.Refresh: fetch, aggregate, replace the cache entry. Concurrent
    callers (scheduler and HTTP fallback) share one in-flight refresh.
  - Manager.Reconcile: write the cached summaries for today in one store
    transaction. Overlapping runs are skipped.

# Refresh notifications

When a Notifier is attached, every successful refresh publishes the new
snapshot on TopicRefreshed. The supervisor subscribes and reconciles exactly
that snapshot, so a reconcile never reads a cache entry from an older
refresh than the one that triggered it.

# Failure handling

Nothing in this package is fatal. A failed refresh leaves the previous cache
entry in place, a failed reconcile rolls back and leaves the store as it
was. Both are logged with a correlation ID and counted in metrics; the next
scheduled tick tries again.
*/
package sync
