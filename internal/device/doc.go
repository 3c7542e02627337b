// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package device talks to the biometric time-clock terminal.

The terminal is reached through a small HTTP gateway that fronts its binary
protocol. A Source opens a Session, the session is read once and then closed:

	sess, err := src.Open(ctx)
	if err != nil {
	    return err // ErrSessionOpen
	}
	defer sess.Close()
	batch, err := sess.ReadEvents(ctx)

Errors are classified so callers can decide what to retry:

  - ErrSessionOpen, ErrRead, ErrNoData: transient link problems, worth retrying
  - ErrMalformedPayload: the gateway answered with a payload that is not an
    event list; retrying will not help

CircuitBreakerSource wraps any Source with sony/gobreaker so a dead terminal
is not hammered by every fetch cycle.
*/
package device
