/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"time"
)

// Rate describes the frequency of requests.
type Rate struct {
	Count    int
	Duration time.Duration
}

// Result describes the outcome of a Check.
type Result struct {
	Allowed bool

	// Limit is the limit the request was checked against.
	Limit int

	// Remaining is the number of requests the client may still send in the current window.
	Remaining int

	// ResetAt is when the current window ends.
	ResetAt time.Time

	// RetryAfter is set only for rejected requests. It is a whole number of seconds, at least one.
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter in seconds (zero for allowed requests).
func (r Result) RetryAfterSeconds() int {
	return int(r.RetryAfter / time.Second)
}

// ResetAtUnix returns ResetAt as Unix seconds rounded up.
func (r Result) ResetAtUnix() int64 {
	return ceilSeconds(time.Duration(r.ResetAt.UnixNano()))
}

// Limiter checks requests against a limit.
type Limiter interface {
	Check(bucketKey, clientIdentity string, limit int, window time.Duration) Result
}

func ceilSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second > 0 {
		secs++
	}
	return secs
}
