// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/attendsync/internal/api"
	"github.com/tomtom215/attendsync/internal/cache"
	"github.com/tomtom215/attendsync/internal/config"
	"github.com/tomtom215/attendsync/internal/database"
	"github.com/tomtom215/attendsync/internal/device"
	"github.com/tomtom215/attendsync/internal/logging"
	"github.com/tomtom215/attendsync/internal/supervisor"
	"github.com/tomtom215/attendsync/internal/supervisor/services"
	"github.com/tomtom215/attendsync/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("device", cfg.Device.BaseURL()).
		Str("db_driver", cfg.Database.Driver).
		Str("db_path", cfg.Database.Path).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("Starting Attendsync")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Attendsync stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires every component and blocks until a shutdown signal arrives.
func run(cfg *config.Config) error {
	loc, err := cfg.Sync.Location()
	if err != nil {
		return err
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("driver", db.Driver()).Msg("Database initialized")

	var source device.Source = device.NewGatewaySource(cfg.Device)
	if cfg.Device.Breaker.Enabled {
		source = device.NewCircuitBreakerSource(source, cfg.Device.Breaker)
		logging.Info().
			Uint32("min_requests", cfg.Device.Breaker.MinRequests).
			Float64("failure_ratio", cfg.Device.Breaker.FailureRatio).
			Dur("timeout", cfg.Device.Breaker.Timeout).
			Msg("Device circuit breaker enabled")
	}

	attendance := cache.NewAttendanceCache(cfg.Cache.TTL)

	slogger := logging.NewSlogLogger()
	notifier := sync.NewNotifier(watermill.NewSlogLogger(slogger))
	defer func() {
		if err := notifier.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing refresh notifier")
		}
	}()

	manager := sync.NewManager(cfg.Sync, source, attendance, db,
		sync.WithLocation(loc),
		sync.WithNotifier(notifier),
	)
	defer manager.Close()

	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	addPipelineServices(tree, cfg.Sync, manager, notifier)

	handler := api.NewHandler(manager, db, source)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	stop()

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// addPipelineServices registers the refresh and reconcile jobs. When
// reconcile-on-refresh is enabled, each refreshed snapshot is also
// reconciled as soon as it is published.
func addPipelineServices(tree *supervisor.SupervisorTree, cfg config.SyncConfig, manager *sync.Manager, notifier *sync.Notifier) {
	tree.AddPipelineService(services.NewPeriodicService("attendance-refresh", cfg.FetchInterval, cfg.RunOnStart,
		func(ctx context.Context) error {
			_, err := manager.Refresh(ctx)
			return err
		}))

	tree.AddPipelineService(services.NewPeriodicService("attendance-reconcile", cfg.ReconcileInterval, false,
		func(ctx context.Context) error {
			_, err := manager.Reconcile(ctx)
			if sync.Skipped(err) {
				return nil
			}
			return err
		}))

	if cfg.ReconcileOnRefresh {
		tree.AddPipelineService(services.NewTriggeredService("refresh-reconciler", notifier, manager.HandleRefreshed))
	}
}
