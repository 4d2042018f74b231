/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ttlcache

import (
	"context"
	"sync"
	"time"

	"github.com/vahairstudio/site-api/log"
)

// FetchFunc produces a fresh value for a key. It owns its own timeouts and cancellation.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Result is returned by GetOrFetch.
type Result[V any] struct {
	Value V

	// ServedFromCache is true when Value was taken from the store (fresh or stale).
	ServedFromCache bool

	// CachedAt is when Value was stored. It is nil when Value was fetched by this call.
	CachedAt *time.Time

	// Stale is true when the fetch failed and Value is an expired entry.
	Stale bool
}

// Options represents options for the cache.
type Options struct {
	// Clock returns the current time. time.Now is used by default.
	Clock func() time.Time

	// MetricsCollector receives hit/miss/stale counters. Metrics are not collected by default.
	MetricsCollector MetricsCollector

	// Logger is used to report stale fallbacks. Nothing is logged by default.
	Logger log.FieldLogger

	// SingleFlight makes concurrent misses for the same key share one fetch call.
	// The shared call runs with the context of the caller that started it.
	SingleFlight bool
}

type entry[V any] struct {
	value    V
	storedAt time.Time
	ttl      time.Duration
}

func (e *entry[V]) fresh(now time.Time) bool {
	return now.Sub(e.storedAt) < e.ttl
}

// Cache stores fetched values of type V under string keys.
// The zero value is not usable, use New or NewWithOpts.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]

	clock            func() time.Time
	metricsCollector MetricsCollector
	logger           log.FieldLogger
	flights          *flightGroup[V]
}

// New creates a new cache with default options.
func New[V any]() *Cache[V] {
	return NewWithOpts[V](Options{})
}

// NewWithOpts creates a new cache with the given options.
func NewWithOpts[V any](opts Options) *Cache[V] {
	c := &Cache[V]{
		entries:          make(map[string]*entry[V]),
		clock:            opts.Clock,
		metricsCollector: opts.MetricsCollector,
		logger:           opts.Logger,
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.metricsCollector == nil {
		c.metricsCollector = disabledMetricsCollector
	}
	if c.logger == nil {
		c.logger = log.NewDisabledLogger()
	}
	if opts.SingleFlight {
		c.flights = &flightGroup[V]{}
	}
	return c
}

// GetOrFetch returns the value stored under the key if it is younger than its TTL.
// Otherwise it calls fetch and stores the result with the given ttl.
// If fetch fails, a previously stored value is returned with Stale set,
// and if there is none, the error is returned as *FetchError.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch FetchFunc[V], ttl time.Duration) (Result[V], error) {
	prev, found := c.lookup(key)
	if found && prev.fresh(c.clock()) {
		c.metricsCollector.IncHits()
		storedAt := prev.storedAt
		return Result[V]{Value: prev.value, ServedFromCache: true, CachedAt: &storedAt}, nil
	}
	c.metricsCollector.IncMisses()

	val, err := c.fetch(ctx, key, fetch, ttl)
	if err == nil {
		return Result[V]{Value: val}, nil
	}

	c.metricsCollector.IncFetchErrors()
	if !found {
		return Result[V]{}, &FetchError{Key: key, Cause: err}
	}

	c.metricsCollector.IncStaleServed()
	c.logger.Warn("fetch failed, serving stale cache entry",
		log.String("cache_key", key),
		log.Time("cached_at", prev.storedAt),
		log.Error(err),
	)
	storedAt := prev.storedAt
	return Result[V]{Value: prev.value, ServedFromCache: true, CachedAt: &storedAt, Stale: true}, nil
}

func (c *Cache[V]) fetch(ctx context.Context, key string, fetch FetchFunc[V], ttl time.Duration) (V, error) {
	fetchCtx := ctx
	if c.flights != nil {
		// The result is shared with other callers, so one caller going away must not cancel it.
		// The fetch is bounded by the Acuity client timeout.
		fetchCtx = context.WithoutCancel(ctx)
	}
	fetchAndStore := func() (V, error) {
		val, err := fetch(fetchCtx)
		if err != nil {
			return val, err
		}
		c.store(key, val, ttl)
		return val, nil
	}
	if c.flights == nil {
		return fetchAndStore()
	}
	val, err, _ := c.flights.Do(ctx, key, fetchAndStore)
	return val, err
}

// lookup returns a copy of the entry so that the caller can inspect it without holding the lock.
func (c *Cache[V]) lookup(key string) (entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return entry[V]{}, false
	}
	return *e, true
}

// store overwrites the entry. Expired entries are never evicted, they stay as the stale fallback.
func (c *Cache[V]) store(key string, val V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry[V]{value: val, storedAt: c.clock(), ttl: ttl}
	c.metricsCollector.SetAmount(len(c.entries))
}

// Invalidate removes the entry for the key. The next GetOrFetch behaves as if nothing was stored.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.metricsCollector.SetAmount(len(c.entries))
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
	c.metricsCollector.SetAmount(0)
}

// Len returns the number of entries in the store, including expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
