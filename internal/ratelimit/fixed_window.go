/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiterOpts represents options for FixedWindowLimiter.
type FixedWindowLimiterOpts struct {
	// Clock returns the current time. time.Now is used by default.
	Clock func() time.Time
}

// FixedWindowLimiter counts requests per (bucket key, client identity) in fixed windows.
// Buckets are kept for the life of the limiter and reused when their window ends.
// It is safe for concurrent use.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	clock   func() time.Time
}

var _ Limiter = (*FixedWindowLimiter)(nil)

// NewFixedWindowLimiter creates a new limiter with default options.
func NewFixedWindowLimiter() *FixedWindowLimiter {
	return NewFixedWindowLimiterWithOpts(FixedWindowLimiterOpts{})
}

// NewFixedWindowLimiterWithOpts creates a new limiter with the given options.
func NewFixedWindowLimiterWithOpts(opts FixedWindowLimiterOpts) *FixedWindowLimiter {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &FixedWindowLimiter{buckets: make(map[string]*bucket), clock: clock}
}

// Check counts the request and reports whether it is within the limit.
// It never blocks on anything but the internal lock and never fails.
func (l *FixedWindowLimiter) Check(bucketKey, clientIdentity string, limit int, window time.Duration) Result {
	key := bucketKey + ":" + clientIdentity

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 1, resetAt: now.Add(window)}
		l.buckets[key] = b
		return Result{Allowed: true, Limit: limit, Remaining: max(0, limit-1), ResetAt: b.resetAt}
	}

	if b.count >= limit {
		retryAfter := max(1, ceilSeconds(b.resetAt.Sub(now)))
		return Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    b.resetAt,
			RetryAfter: time.Duration(retryAfter) * time.Second,
		}
	}

	b.count++
	return Result{Allowed: true, Limit: limit, Remaining: max(0, limit-b.count), ResetAt: b.resetAt}
}

// Reset drops all buckets.
func (l *FixedWindowLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
}

// Len returns the number of tracked buckets.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
