// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package cache provides thread-safe in-memory caching with TTL support.

Cache is a generic key/value map guarded by a sync.RWMutex. Expiry is lazy:
an entry past its TTL is removed on the next Lookup and counted as a miss.

AttendanceCache sits on top of it and owns a single slot, TodayKey, holding
the latest models.AttendanceSnapshot:

	c := cache.NewAttendanceCache(time.Hour)
	c.Set(snapshot)
	if snap, ok := c.Get(); ok {
	    // snap is a private copy
	}

Nothing is persisted; a restart starts with an empty cache.
*/
package cache
