/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package ttlcache provides an in-memory cache of fetched values with per-entry TTL
// and a stale-on-error fallback.
//
// GetOrFetch serves a fresh entry without calling the fetch function. When the entry is missing
// or expired, the fetch function is called. If the fetch succeeds, the new value is stored.
// If it fails and an older entry exists (even an expired one), the older value is returned
// and marked as stale. If it fails and nothing has ever been stored, a *FetchError is returned.
//
// Expired entries are never evicted in the background: they stay in the store as a fallback
// until they are overwritten, invalidated or cleared. The key space is expected to be small and fixed.
//
// A Cache is safe for concurrent use. The store lock is held only for look-ups and write-backs,
// never while a fetch is in progress, so slow fetches for one key don't block other keys.
// By default concurrent misses for the same key each call the fetch function and the last write wins.
// Options.SingleFlight makes them share a single call instead.
package ttlcache
