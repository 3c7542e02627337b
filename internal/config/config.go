// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Device   DeviceConfig   `koanf:"device"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Cache    CacheConfig    `koanf:"cache"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DeviceConfig describes how to reach the time-clock terminal gateway.
//
// Environment Variables:
//   - DEVICE_ADDRESS: terminal or gateway host (required)
//   - DEVICE_PORT: port (default: 4370)
//   - DEVICE_SCHEME: http or https (default: http)
//   - DEVICE_CONNECT_TIMEOUT: session open timeout (default: 10s)
//   - DEVICE_READ_TIMEOUT: per-read timeout (default: 4s)
type DeviceConfig struct {
	Address        string        `koanf:"address"`
	Port           int           `koanf:"port"`
	Scheme         string        `koanf:"scheme"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	Breaker        BreakerConfig `koanf:"breaker"`
}

// BaseURL returns the gateway root URL, e.g. http://192.168.68.203:4370.
func (d DeviceConfig) BaseURL() string {
	scheme := d.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(d.Address, strconv.Itoa(d.Port)))
}

// BreakerConfig tunes the circuit breaker wrapped around device sessions.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds persistent store settings.
//
// Driver selects the database/sql driver: duckdb (default) or sqlite.
// Pool settings mirror a small pool: ten connections, idle ones closed after a minute.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	Path            string        `koanf:"path"`
	MaxMemory       string        `koanf:"max_memory"`
	Threads         int           `koanf:"threads"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// SyncConfig controls the fetch and reconciliation jobs.
//
// Environment Variables:
//   - FETCH_INTERVAL: device poll period (default: 1m)
//   - RECONCILE_INTERVAL: store reconciliation period (default: 1m)
//   - SYNC_RETRY_ATTEMPTS: attempts per fetch cycle (default: 3)
//   - SYNC_RETRY_DELAY: delay between attempts (default: 2s)
//   - SYNC_RETRY_MAX_ELAPSED: wall-clock cap for one fetch cycle (default: 30s)
//   - RECONCILE_ON_REFRESH: reconcile right after each successful refresh (default: true)
//   - ATTENDANCE_TIMEZONE: IANA zone used to decide "today" (default: Local)
type SyncConfig struct {
	FetchInterval      time.Duration `koanf:"fetch_interval"`
	ReconcileInterval  time.Duration `koanf:"reconcile_interval"`
	RetryAttempts      int           `koanf:"retry_attempts"`
	RetryDelay         time.Duration `koanf:"retry_delay"`
	RetryMaxElapsed    time.Duration `koanf:"retry_max_elapsed"`
	ReconcileOnRefresh bool          `koanf:"reconcile_on_refresh"`
	RunOnStart         bool          `koanf:"run_on_start"`
	Timezone           string        `koanf:"timezone"`
}

// Location resolves Timezone. "" and "Local" map to time.Local.
func (s SyncConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// CacheConfig holds attendance cache settings.
type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds CORS and rate limiting settings for the HTTP API.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load loads configuration from defaults, the optional config file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
