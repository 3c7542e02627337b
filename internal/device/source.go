// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package device

import (
	"context"
	"errors"

	"github.com/tomtom215/attendsync/internal/models"
)

var (
	// ErrSessionOpen is returned when the terminal cannot be reached within the connect timeout.
	ErrSessionOpen = errors.New("device: open session")

	// ErrRead is returned when a request on an open session fails.
	ErrRead = errors.New("device: read")

	// ErrNoData is returned when the terminal answers without an event list.
	ErrNoData = errors.New("device: no attendance data")

	// ErrMalformedPayload is returned when the event list is present but not a list.
	ErrMalformedPayload = errors.New("device: malformed payload")

	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("device: session closed")
)

// Retryable reports whether err is a transient device failure.
func Retryable(err error) bool {
	return errors.Is(err, ErrSessionOpen) || errors.Is(err, ErrRead) || errors.Is(err, ErrNoData)
}

// Batch is the full event list held by the terminal at read time.
type Batch struct {
	Events []models.PunchEvent
	// Skipped counts records dropped because they failed validation.
	Skipped int
}

// Source opens sessions to a terminal.
type Source interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a single connection to the terminal. Close must be called on
// every path once Open succeeded.
type Session interface {
	ReadEvents(ctx context.Context) (*Batch, error)
	Info(ctx context.Context) (*models.DeviceInfo, error)
	Users(ctx context.Context) ([]models.DeviceUser, error)
	Close() error
}
