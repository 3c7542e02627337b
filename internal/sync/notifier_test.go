// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package sync

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/models"
)

func TestNotifier_RoundTrip(t *testing.T) {
	t.Parallel()

	n := NewNotifier(watermill.NopLogger{})
	t.Cleanup(func() { _ = n.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := n.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	snap := models.AttendanceSnapshot{
		Date:        "2026-03-10",
		Summaries:   []models.AttendanceSummary{{UserID: "1", ClockIn: "08:00:00", ClockOut: "17:00:00"}},
		GeneratedAt: testNow,
	}
	pubCtx := logging.ContextWithCorrelationID(context.Background(), "abc12345")
	if err := n.PublishRefreshed(pubCtx, snap); err != nil {
		t.Fatalf("PublishRefreshed() error = %v", err)
	}

	var msg *message.Message
	select {
	case msg = <-messages:
		defer msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}

	gotCtx, got, err := DecodeSnapshot(context.Background(), msg)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if got.Date != snap.Date || !reflect.DeepEqual(got.Summaries, snap.Summaries) || !got.GeneratedAt.Equal(snap.GeneratedAt) {
		t.Errorf("DecodeSnapshot() = %+v, want %+v", got, snap)
	}
	if id := logging.CorrelationIDFromContext(gotCtx); id != "abc12345" {
		t.Errorf("correlation id = %q, want abc12345", id)
	}
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	t.Parallel()

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	if _, _, err := DecodeSnapshot(context.Background(), msg); err == nil {
		t.Fatal("DecodeSnapshot() error = nil, want decode failure")
	}
}

func TestNotifier_PublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	n := NewNotifier(watermill.NopLogger{})
	t.Cleanup(func() { _ = n.Close() })

	if err := n.PublishRefreshed(context.Background(), models.AttendanceSnapshot{Date: "2026-03-10"}); err != nil {
		t.Errorf("PublishRefreshed() error = %v", err)
	}
}
