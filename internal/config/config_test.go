// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setupTestEnv sets up test environment variables and returns cleanup function
func setupTestEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	os.Clearenv()
	for k, v := range envVars {
		if err := os.Setenv(k, v); err != nil {
			t.Fatalf("failed to set env var %s: %v", k, err)
		}
	}
	return func() {
		os.Clearenv()
	}
}

// assertErrorContains checks that err is non-nil and mentions substr
func assertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error = %v, want error containing %q", err, substr)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanup := setupTestEnv(t, map[string]string{
		"DEVICE_ADDRESS": "192.168.68.203",
	})
	defer cleanup()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Address != "192.168.68.203" {
		t.Errorf("Device.Address = %q", cfg.Device.Address)
	}
	if cfg.Device.Port != 4370 {
		t.Errorf("Device.Port = %d, want 4370", cfg.Device.Port)
	}
	if cfg.Device.ConnectTimeout != 10*time.Second {
		t.Errorf("Device.ConnectTimeout = %v, want 10s", cfg.Device.ConnectTimeout)
	}
	if cfg.Device.ReadTimeout != 4*time.Second {
		t.Errorf("Device.ReadTimeout = %v, want 4s", cfg.Device.ReadTimeout)
	}
	if cfg.Sync.FetchInterval != time.Minute || cfg.Sync.ReconcileInterval != time.Minute {
		t.Errorf("intervals = %v/%v, want 1m/1m", cfg.Sync.FetchInterval, cfg.Sync.ReconcileInterval)
	}
	if cfg.Sync.RetryAttempts != 3 {
		t.Errorf("Sync.RetryAttempts = %d, want 3", cfg.Sync.RetryAttempts)
	}
	if cfg.Sync.RetryDelay != 2*time.Second {
		t.Errorf("Sync.RetryDelay = %v, want 2s", cfg.Sync.RetryDelay)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "duckdb" {
		t.Errorf("Database.Driver = %q, want duckdb", cfg.Database.Driver)
	}
	if cfg.Database.MaxOpenConns != 10 || cfg.Database.ConnMaxIdleTime != 60*time.Second {
		t.Errorf("pool = %d/%v, want 10/60s", cfg.Database.MaxOpenConns, cfg.Database.ConnMaxIdleTime)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	cleanup := setupTestEnv(t, map[string]string{
		"DEVICE_ADDRESS":      "10.0.0.5",
		"DEVICE_PORT":         "8080",
		"FETCH_INTERVAL":      "30s",
		"RECONCILE_INTERVAL":  "5m",
		"SYNC_RETRY_ATTEMPTS": "5",
		"SYNC_RETRY_DELAY":    "500ms",
		"CACHE_TTL":           "10m",
		"PORT":                "8088",
		"DB_DRIVER":           "sqlite",
		"DB_PATH":             "/tmp/attendance.db",
		"CORS_ORIGINS":        "https://a.example, https://b.example",
		"LOG_LEVEL":           "debug",
		"UNRELATED_VARIABLE":  "ignored",
	})
	defer cleanup()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"device port", cfg.Device.Port, 8080},
		{"fetch interval", cfg.Sync.FetchInterval, 30 * time.Second},
		{"reconcile interval", cfg.Sync.ReconcileInterval, 5 * time.Minute},
		{"retry attempts", cfg.Sync.RetryAttempts, 5},
		{"retry delay", cfg.Sync.RetryDelay, 500 * time.Millisecond},
		{"cache ttl", cfg.Cache.TTL, 10 * time.Minute},
		{"server port", cfg.Server.Port, 8088},
		{"db driver", cfg.Database.Driver, "sqlite"},
		{"db path", cfg.Database.Path, "/tmp/attendance.db"},
		{"log level", cfg.Logging.Level, "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
device:
  address: 192.168.1.20
  port: 5000
sync:
  fetch_interval: 2m
  timezone: UTC
cache:
  ttl: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cleanup := setupTestEnv(t, map[string]string{
		ConfigPathEnvVar: path,
		"DEVICE_PORT":    "6000", // env beats file
	})
	defer cleanup()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.Address != "192.168.1.20" {
		t.Errorf("Device.Address = %q, want file value", cfg.Device.Address)
	}
	if cfg.Device.Port != 6000 {
		t.Errorf("Device.Port = %d, want env override 6000", cfg.Device.Port)
	}
	if cfg.Sync.FetchInterval != 2*time.Minute {
		t.Errorf("Sync.FetchInterval = %v, want 2m", cfg.Sync.FetchInterval)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL)
	}
	loc, err := cfg.Sync.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v; want UTC", loc, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing address", func(c *Config) { c.Device.Address = " " }, "DEVICE_ADDRESS"},
		{"bad device port", func(c *Config) { c.Device.Port = 70000 }, "DEVICE_PORT"},
		{"bad scheme", func(c *Config) { c.Device.Scheme = "tcp" }, "DEVICE_SCHEME"},
		{"bad breaker ratio", func(c *Config) { c.Device.Breaker.FailureRatio = 1.5 }, "FAILURE_RATIO"},
		{"breaker disabled skips checks", func(c *Config) {
			c.Device.Breaker.Enabled = false
			c.Device.Breaker.FailureRatio = 0
		}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "DB_DRIVER"},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 20 }, "DB_MAX_IDLE_CONNS"},
		{"zero attempts", func(c *Config) { c.Sync.RetryAttempts = 0 }, "SYNC_RETRY_ATTEMPTS"},
		{"tiny fetch interval", func(c *Config) { c.Sync.FetchInterval = time.Millisecond }, "FETCH_INTERVAL"},
		{"bad timezone", func(c *Config) { c.Sync.Timezone = "Mars/Olympus" }, "ATTENDANCE_TIMEZONE"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"bad http port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"warning alias", func(c *Config) { c.Logging.Level = "warning" }, ""},
		{"mixed case level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"logging disabled", func(c *Config) { c.Logging.Level = "disabled" }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Device.Address = "192.168.68.203"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			assertErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDeviceConfig_BaseURL(t *testing.T) {
	d := DeviceConfig{Address: "192.168.68.203", Port: 4370}
	if got := d.BaseURL(); got != "http://192.168.68.203:4370" {
		t.Errorf("BaseURL() = %q", got)
	}
	d.Scheme = "https"
	d.Address = "::1"
	if got := d.BaseURL(); got != "https://[::1]:4370" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"DEVICE_ADDRESS":      "device.address",
		"PORT":                "server.port",
		"ATTENDANCE_TIMEZONE": "sync.timezone",
		"HOME":                "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
