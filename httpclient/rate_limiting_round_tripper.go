/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default parameter values for RateLimitingRoundTripper.
const (
	DefaultRateLimitingBurst       = 1
	DefaultRateLimitingWaitTimeout = 15 * time.Second
)

// RateLimitingRoundTripperOpts represents an options for RateLimitingRoundTripper.
type RateLimitingRoundTripperOpts struct {
	Burst       int
	WaitTimeout time.Duration
}

// RateLimitingRoundTripper limits the rate (requests per second) of outgoing requests with a token bucket.
// Acuity throttles API users per account, so all requests made with one account should share one instance.
type RateLimitingRoundTripper struct {
	Delegate http.RoundTripper

	RateLimit   int
	Burst       int
	WaitTimeout time.Duration

	limiter *rate.Limiter
}

// NewRateLimitingRoundTripper creates a new RateLimitingRoundTripper with specified rate limit.
func NewRateLimitingRoundTripper(delegate http.RoundTripper, rateLimit int) (*RateLimitingRoundTripper, error) {
	return NewRateLimitingRoundTripperWithOpts(delegate, rateLimit, RateLimitingRoundTripperOpts{})
}

// NewRateLimitingRoundTripperWithOpts creates a new RateLimitingRoundTripper with specified rate limit and options.
// For options that are not presented, the default values will be used.
func NewRateLimitingRoundTripperWithOpts(
	delegate http.RoundTripper, rateLimit int, opts RateLimitingRoundTripperOpts,
) (*RateLimitingRoundTripper, error) {
	if rateLimit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive")
	}
	if opts.Burst < 0 {
		return nil, fmt.Errorf("burst must be positive")
	}
	if opts.Burst == 0 {
		opts.Burst = DefaultRateLimitingBurst
	}
	if opts.WaitTimeout == 0 {
		opts.WaitTimeout = DefaultRateLimitingWaitTimeout
	}
	return &RateLimitingRoundTripper{
		Delegate:    delegate,
		RateLimit:   rateLimit,
		Burst:       opts.Burst,
		WaitTimeout: opts.WaitTimeout,
		limiter:     rate.NewLimiter(rate.Limit(rateLimit), opts.Burst),
	}, nil
}

// ErrRateLimitWaitTooLong is wrapped by RateLimitingWaitError when the request would have to wait
// longer than WaitTimeout for a token.
var ErrRateLimitWaitTooLong = errors.New("wait exceeds timeout")

// RoundTrip reserves a token and sends the request when it becomes available.
// The request fails fast with *RateLimitingWaitError if the reservation delay exceeds WaitTimeout,
// and the reserved token is given back if the request context is done while waiting.
func (rt *RateLimitingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := rt.waitForToken(r.Context()); err != nil {
		if r.Body != nil {
			_ = r.Body.Close() // Per RoundTripper contract.
		}
		return nil, err
	}
	return rt.Delegate.RoundTrip(r)
}

func (rt *RateLimitingRoundTripper) waitForToken(ctx context.Context) error {
	reservation := rt.limiter.Reserve()
	if !reservation.OK() {
		return &RateLimitingWaitError{Inner: ErrRateLimitWaitTooLong}
	}
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}
	if delay > rt.WaitTimeout {
		reservation.Cancel()
		return &RateLimitingWaitError{Delay: delay, Inner: ErrRateLimitWaitTooLong}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return &RateLimitingWaitError{Delay: delay, Inner: ctx.Err()}
	}
}

// RateLimitingWaitError is returned by RateLimitingRoundTripper when the request is not sent
// because of the client-side rate limit.
type RateLimitingWaitError struct {
	Delay time.Duration
	Inner error
}

func (e *RateLimitingWaitError) Error() string {
	return fmt.Sprintf("acuity request rate limited on client side (delay %s): %s", e.Delay, e.Inner)
}

// Unwrap returns the next error in the error chain.
func (e *RateLimitingWaitError) Unwrap() error {
	return e.Inner
}
