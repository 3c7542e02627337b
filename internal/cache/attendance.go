// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package cache

import (
	"time"

	"github.com/tomtom215/attendsync/internal/metrics"
	"github.com/tomtom215/attendsync/internal/models"
)

// TodayKey is the single slot holding today's attendance snapshot.
const TodayKey = "attendance:today"

// AttendanceCache holds the most recent attendance snapshot.
//
// Set replaces the snapshot wholesale and Get hands out a copy, so readers
// never observe a half-written entry and cannot mutate the cached one.
type AttendanceCache struct {
	store Cacher
}

// NewAttendanceCache returns a cache whose snapshot expires ttl after Set.
func NewAttendanceCache(ttl time.Duration, opts ...Option) *AttendanceCache {
	return &AttendanceCache{store: New(ttl, opts...)}
}

// Set replaces the cached snapshot.
func (a *AttendanceCache) Set(snap models.AttendanceSnapshot) {
	a.store.Set(TodayKey, snap.Clone())
	metrics.RecordCacheRefresh(len(snap.Summaries))
}

// Get returns a copy of the cached snapshot, or false when absent or expired.
func (a *AttendanceCache) Get() (models.AttendanceSnapshot, bool) {
	entry, ok := a.store.Lookup(TodayKey)
	metrics.RecordCacheLookup(ok)
	if !ok {
		return models.AttendanceSnapshot{}, false
	}
	snap, ok := entry.Data.(models.AttendanceSnapshot)
	if !ok {
		return models.AttendanceSnapshot{}, false
	}
	return snap.Clone(), true
}

// ExpiresAt reports when the current snapshot lapses. It is a read-only
// view: lookups are not counted and a lapsed snapshot is left in place,
// so the reported time may already be in the past.
func (a *AttendanceCache) ExpiresAt() (time.Time, bool) {
	entry, ok := a.store.peek(TodayKey)
	if !ok {
		return time.Time{}, false
	}
	return entry.ExpiresAt, true
}

// Stats returns backend statistics.
func (a *AttendanceCache) Stats() Stats {
	return a.store.GetStats()
}
