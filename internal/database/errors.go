// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/attendsync/internal/logging"
)

var (
	// ErrNoSummaries is returned when ReconcileDay is called with nothing to write.
	ErrNoSummaries = errors.New("no attendance summaries to reconcile")

	// ErrInvalidDate is returned for a day that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid record date")

	// ErrUnsupportedDriver is returned by New for an unknown driver name.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// closeWithLog closes a resource and logs failures. Use for rows and
// statements where a close error is worth knowing about but not fatal.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource ignoring errors (for cleanup in error paths)
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
