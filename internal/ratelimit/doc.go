/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package ratelimit provides an in-process fixed-window rate limiter.
//
// Requests are counted per bucket, where a bucket is identified by a logical key
// (usually the route, e.g. "api:services") and a client identity (usually the client IP).
// The first request of a bucket opens a window of the configured duration. Up to limit requests
// are admitted in that window, and the rest are rejected until the window ends.
//
// This is a fixed window, not a sliding one. A client can send limit requests at the very end
// of a window and another limit requests right after it resets, so up to 2*limit requests may pass
// within a short interval around the boundary. This is a known property of the algorithm and
// the limiter is meant for best-effort per-process abuse mitigation, not for precise global quotas.
// Switching the algorithm would change the observable Remaining and RetryAfter values.
package ratelimit
