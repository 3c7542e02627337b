// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/attendsync/config.yaml",
	"/etc/attendsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Address:        "",
			Port:           4370,
			Scheme:         "http",
			ConnectTimeout: 10 * time.Second,
			ReadTimeout:    4 * time.Second,
			Breaker: BreakerConfig{
				Enabled:      true,
				MinRequests:  5,
				FailureRatio: 0.6,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
			},
		},
		Database: DatabaseConfig{
			Driver:          "duckdb",
			Path:            "/data/attendsync.duckdb",
			MaxMemory:       "512MB",
			Threads:         0, // 0 = runtime.NumCPU()
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 60 * time.Second,
			ConnMaxLifetime: 0,
		},
		Sync: SyncConfig{
			FetchInterval:      time.Minute,
			ReconcileInterval:  time.Minute,
			RetryAttempts:      3,
			RetryDelay:         2 * time.Second,
			RetryMaxElapsed:    30 * time.Second,
			ReconcileOnRefresh: true,
			RunOnStart:         true,
			Timezone:           "Local",
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second, // covers a fallback fetch with retries
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// DEVICE_ADDRESS -> device.address
	// FETCH_INTERVAL -> sync.fetch_interval
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Device
	"device_address":               "device.address",
	"device_port":                  "device.port",
	"device_scheme":                "device.scheme",
	"device_connect_timeout":       "device.connect_timeout",
	"device_read_timeout":          "device.read_timeout",
	"device_breaker_enabled":       "device.breaker.enabled",
	"device_breaker_min_requests":  "device.breaker.min_requests",
	"device_breaker_failure_ratio": "device.breaker.failure_ratio",
	"device_breaker_interval":      "device.breaker.interval",
	"device_breaker_timeout":       "device.breaker.timeout",

	// Database
	"db_driver":             "database.driver",
	"db_path":               "database.path",
	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"db_max_open_conns":     "database.max_open_conns",
	"db_max_idle_conns":     "database.max_idle_conns",
	"db_conn_max_idle_time": "database.conn_max_idle_time",
	"db_conn_max_lifetime":  "database.conn_max_lifetime",

	// Sync
	"fetch_interval":         "sync.fetch_interval",
	"reconcile_interval":     "sync.reconcile_interval",
	"sync_retry_attempts":    "sync.retry_attempts",
	"sync_retry_delay":       "sync.retry_delay",
	"sync_retry_max_elapsed": "sync.retry_max_elapsed",
	"reconcile_on_refresh":   "sync.reconcile_on_refresh",
	"sync_run_on_start":      "sync.run_on_start",
	"attendance_timezone":    "sync.timezone",

	// Cache
	"cache_ttl": "cache.ttl",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DEVICE_ADDRESS -> device.address
//   - SYNC_RETRY_DELAY -> sync.retry_delay
//   - PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables
	// do not pollute the config tree.
	return ""
}
