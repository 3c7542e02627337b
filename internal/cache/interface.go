// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package cache

// Cacher is the key/value backend behind AttendanceCache. *Cache implements it.
type Cacher interface {
	// Lookup returns the live entry for key, if any.
	Lookup(key string) (Entry, bool)

	// Set stores a value with the default TTL.
	Set(key string, value interface{})

	// GetStats returns cache statistics.
	GetStats() Stats

	// peek reads an entry without touching statistics or expiry.
	peek(key string) (Entry, bool)
}

var _ Cacher = (*Cache)(nil)
