// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/models"
	"github.com/tomtom215/attendsync/internal/validation"
)

// maxBodySize bounds a single gateway response. A full terminal log
// (100k records) fits comfortably.
const maxBodySize = 32 << 20

// Gateway paths.
const (
	pathAttendances = "/attendances"
	pathInfo        = "/info"
	pathUsers       = "/users"
)

// GatewaySource reaches a terminal through its HTTP gateway.
type GatewaySource struct {
	baseURL        string
	hostPort       string
	connectTimeout time.Duration
	readTimeout    time.Duration
	client         *http.Client
}

// NewGatewaySource creates a source for the gateway described by cfg.
func NewGatewaySource(cfg config.DeviceConfig) *GatewaySource {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConnsPerHost:   1,
		IdleConnTimeout:       cfg.ReadTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}

	return &GatewaySource{
		baseURL:        cfg.BaseURL(),
		hostPort:       net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port)),
		connectTimeout: cfg.ConnectTimeout,
		readTimeout:    cfg.ReadTimeout,
		client:         &http.Client{Transport: transport},
	}
}

// Open checks the gateway is reachable within the connect timeout and returns a session.
func (g *GatewaySource) Open(ctx context.Context) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, g.connectTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", g.hostPort)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSessionOpen, g.hostPort, err)
	}
	if err := conn.Close(); err != nil {
		logging.Debug().Err(err).Str("device", g.hostPort).Msg("Probe connection close failed")
	}

	return &gatewaySession{src: g}, nil
}

type gatewaySession struct {
	src    *GatewaySource
	closed atomic.Bool
}

// envelope is the gateway response wrapper: {"data": ...}
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// flexibleID accepts user ids encoded as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

type wireEvent struct {
	DeviceUserID flexibleID `json:"deviceUserId"`
	RecordTime   time.Time  `json:"recordTime"`
}

type wireUser struct {
	UID    int        `json:"uid"`
	UserID flexibleID `json:"userId"`
	Name   string     `json:"name"`
	Role   int        `json:"role"`
	CardNo flexibleID `json:"cardno"`
}

// ReadEvents reads the complete attendance log held by the terminal.
func (s *gatewaySession) ReadEvents(ctx context.Context) (*Batch, error) {
	data, err := s.getData(ctx, pathAttendances, '[')
	if err != nil {
		return nil, err
	}

	// Only a non-list payload is malformed. A record that fails to decode
	// is skipped and counted like one that fails validation.
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	batch := &Batch{Events: make([]models.PunchEvent, 0, len(records))}
	for i, raw := range records {
		var r wireEvent
		if err := json.Unmarshal(raw, &r); err != nil {
			batch.Skipped++
			logging.Warn().Int("index", i).Err(err).Msg("Skipping undecodable punch record")
			continue
		}
		event := models.PunchEvent{UserID: string(r.DeviceUserID), RecordTime: r.RecordTime}
		if verr := validation.ValidateStruct(&event); verr != nil {
			batch.Skipped++
			logging.Warn().Int("index", i).Str("reason", verr.Error()).Msg("Skipping invalid punch record")
			continue
		}
		batch.Events = append(batch.Events, event)
	}
	return batch, nil
}

// Info reads terminal status counters.
func (s *gatewaySession) Info(ctx context.Context) (*models.DeviceInfo, error) {
	data, err := s.getData(ctx, pathInfo, '{')
	if err != nil {
		return nil, err
	}
	var info models.DeviceInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return &info, nil
}

// Users reads the users enrolled on the terminal.
func (s *gatewaySession) Users(ctx context.Context) ([]models.DeviceUser, error) {
	data, err := s.getData(ctx, pathUsers, '[')
	if err != nil {
		return nil, err
	}
	var wire []wireUser
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	users := make([]models.DeviceUser, len(wire))
	for i, u := range wire {
		users[i] = models.DeviceUser{
			UID:    u.UID,
			UserID: string(u.UserID),
			Name:   u.Name,
			Role:   u.Role,
			CardNo: string(u.CardNo),
		}
	}
	return users, nil
}

// Close releases the session. Closing twice is a no-op.
func (s *gatewaySession) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.src.client.CloseIdleConnections()
	return nil
}

// getData fetches path and returns the raw "data" member. open is the JSON
// delimiter the member must start with ('[' or '{').
func (s *gatewaySession) getData(ctx context.Context, path string, open byte) (json.RawMessage, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}

	body, err := s.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPayload, path, err)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: %s", ErrNoData, path)
	}
	if data[0] != open {
		return nil, fmt.Errorf("%w: %s: data is not %s", ErrMalformedPayload, path, kindOf(open))
	}
	return data, nil
}

func (s *gatewaySession) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.src.readTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.src.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRead, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.src.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrRead, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrRead, path, err)
	}
	return body, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logging.Debug().Err(err).Msg("Failed to close gateway response body")
	}
}

func kindOf(open byte) string {
	if open == '{' {
		return "an object"
	}
	return "an array"
}
