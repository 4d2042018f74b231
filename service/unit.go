/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package service runs the long-lived parts of the site API process (the HTTP server and the
// background workers) as units with a shared lifecycle driven by OS signals.
package service

// Unit is a part of the process with its own lifecycle.
type Unit interface {
	// Start runs the unit. It may return right after initialization or block until the unit is stopped.
	// A fatal error is written to fatalErr at most once, and fatalErr is never used after Start returns.
	Start(fatalErr chan<- error)

	// Stop halts the unit. It may be called even if Start failed or was never called.
	Stop(gracefully bool) error
}

// MetricsRegisterer is implemented by units that own Prometheus collectors.
type MetricsRegisterer interface {
	MustRegisterMetrics()
	UnregisterMetrics()
}
