// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

/*
Package supervisor provides process supervision for Attendsync using suture v4.

Every long-running part of the process is a suture.Service: the refresh and
reconcile tickers, the refresh-notification subscriber and the HTTP server.
They live in two child supervisors so that restarts of one layer never
interrupt the other:

	attendsync
	├── pipeline-layer
	│   ├── attendance-refresh     (services.PeriodicService)
	│   ├── attendance-reconcile   (services.PeriodicService)
	│   └── refresh-subscriber     (services.TriggeredService)
	└── api-layer
	    └── http-server            (services.HTTPServerService)

Usage in main.go:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddPipelineService(services.NewPeriodicService("attendance-refresh", interval, true, refresh))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)

Services report failures by returning an error from Serve; suture restarts
them with backoff. Scheduled task failures are not service failures: the
periodic wrapper logs them and keeps ticking.
*/
package supervisor
