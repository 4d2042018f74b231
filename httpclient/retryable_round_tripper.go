/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/retry"
)

// Default parameter values for RetryableRoundTripper.
const (
	DefaultMaxRetryAttempts                  = 2
	DefaultExponentialBackoffInitialInterval = 200 * time.Millisecond
	DefaultExponentialBackoffMultiplier      = 2
	DefaultMaxRetryAfter                     = 5 * time.Second
)

// UnlimitedRetryAttempts should be used as RetryableRoundTripperOpts.MaxRetryAttempts value
// when we want to stop retries only by RetryableRoundTripperOpts.BackoffPolicy.
const UnlimitedRetryAttempts = -1

// RetryAttemptNumberHeader is an HTTP header name that will contain the serial number of the retry attempt.
const RetryAttemptNumberHeader = "X-Retry-Attempt"

// CheckRetryFunc is a function that is called right after RoundTrip() method
// and determines if the next retry attempt is needed.
type CheckRetryFunc func(ctx context.Context, resp *http.Response, roundTripErr error, doneRetryAttempts int) (bool, error)

// RetryableRoundTripper wraps an object that implements http.RoundTripper interface
// and retries requests that failed with temporary errors, 429 or 5xx responses.
type RetryableRoundTripper struct {
	// Delegate is used for sending HTTP requests under the hood.
	Delegate http.RoundTripper

	// LoggerProvider provides a context-specific logger.
	// middleware.GetLoggerFromContextOrDisabled is used by default.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// MaxRetryAttempts determines how many maximum retry attempts can be done.
	// The total number of sent requests may be MaxRetryAttempts + 1.
	MaxRetryAttempts int

	// CheckRetry determines if the next retry attempt is needed.
	CheckRetry CheckRetryFunc

	// IgnoreRetryAfter disables using the Retry-After response header as the wait time.
	IgnoreRetryAfter bool

	// MaxRetryAfter is the longest Retry-After the round tripper agrees to wait.
	// Longer values stop retrying and the last response is returned to the caller.
	MaxRetryAfter time.Duration

	// BackoffPolicy computes the wait time when Retry-After is absent or ignored.
	BackoffPolicy retry.Policy
}

// RetryableRoundTripperOpts represents an options for RetryableRoundTripper.
type RetryableRoundTripperOpts struct {
	LoggerProvider   func(ctx context.Context) log.FieldLogger
	MaxRetryAttempts int
	CheckRetryFunc   CheckRetryFunc
	IgnoreRetryAfter bool
	MaxRetryAfter    time.Duration
	BackoffPolicy    retry.Policy
}

// NewRetryableRoundTripper returns a new instance of RetryableRoundTripper.
func NewRetryableRoundTripper(delegate http.RoundTripper) (*RetryableRoundTripper, error) {
	return NewRetryableRoundTripperWithOpts(delegate, RetryableRoundTripperOpts{})
}

// NewRetryableRoundTripperWithOpts creates a new instance of RetryableRoundTripper with specified options.
func NewRetryableRoundTripperWithOpts(
	delegate http.RoundTripper, opts RetryableRoundTripperOpts,
) (*RetryableRoundTripper, error) {
	if opts.MaxRetryAttempts < 0 && opts.MaxRetryAttempts != UnlimitedRetryAttempts {
		return nil, fmt.Errorf("incorrect max retry attempts")
	}
	if opts.MaxRetryAttempts == 0 {
		opts.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if opts.LoggerProvider == nil {
		opts.LoggerProvider = middleware.GetLoggerFromContextOrDisabled
	}
	if opts.CheckRetryFunc == nil {
		opts.CheckRetryFunc = DefaultCheckRetry
	}
	if opts.MaxRetryAfter == 0 {
		opts.MaxRetryAfter = DefaultMaxRetryAfter
	}
	if opts.BackoffPolicy == nil {
		opts.BackoffPolicy = DefaultBackoffPolicy
	}
	return &RetryableRoundTripper{
		Delegate:         delegate,
		LoggerProvider:   opts.LoggerProvider,
		MaxRetryAttempts: opts.MaxRetryAttempts,
		CheckRetry:       opts.CheckRetryFunc,
		IgnoreRetryAfter: opts.IgnoreRetryAfter,
		MaxRetryAfter:    opts.MaxRetryAfter,
		BackoffPolicy:    opts.BackoffPolicy,
	}, nil
}

// RoundTrip performs request with retry logic.
func (rt *RetryableRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCtx := req.Context()
	logger := rt.LoggerProvider(reqCtx)

	if originalReqBody := req.Body; originalReqBody != nil {
		defer func() {
			_ = originalReqBody.Close() // Per RoundTripper contract.
		}()
	}
	rewindReqBody, err := makeRequestBodyRewindable(req)
	if err != nil {
		return nil, &RetryableRoundTripperError{Inner: err}
	}

	bf := rt.BackoffPolicy.NewBackOff()
	reqCloned := false
	var resp *http.Response
	var roundTripErr error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if resp != nil && roundTripErr == nil {
				drainResponseBody(resp, logger)
			}
			if !reqCloned {
				req, reqCloned = req.Clone(reqCtx), true // Per RoundTripper contract.
			}
			if err := rewindReqBody(req); err != nil {
				logger.Error(fmt.Sprintf("failed to rewind request body, %d request(s) done", attempt), log.Error(err))
				return nil, &RetryableRoundTripperError{Inner: err}
			}
			req.Header.Set(RetryAttemptNumberHeader, strconv.Itoa(attempt))
		}

		resp, roundTripErr = rt.Delegate.RoundTrip(req)

		needRetry, checkErr := rt.CheckRetry(reqCtx, resp, roundTripErr, attempt)
		if checkErr != nil {
			logger.Error(fmt.Sprintf("failed to check if retry is needed, %d request(s) done", attempt+1),
				log.Error(checkErr))
			return resp, roundTripErr
		}
		if !needRetry {
			return resp, roundTripErr
		}
		if rt.MaxRetryAttempts > 0 && attempt >= rt.MaxRetryAttempts {
			logger.Warnf("max retry attempts exceeded (%d), %d request(s) done", rt.MaxRetryAttempts, attempt+1)
			return resp, roundTripErr
		}

		waitTime, stop := rt.nextWaitTime(bf, resp)
		if stop {
			return resp, roundTripErr
		}
		select {
		case <-reqCtx.Done():
			logger.Warnf("context canceled (%v) while waiting for the next retry attempt, %d request(s) done",
				reqCtx.Err(), attempt+1)
			return resp, roundTripErr
		case <-time.After(waitTime):
		}
	}
}

func (rt *RetryableRoundTripper) nextWaitTime(bf backoff.BackOff, resp *http.Response) (waitTime time.Duration, stop bool) {
	if resp != nil && !rt.IgnoreRetryAfter {
		if retryAfter, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			return retryAfter, retryAfter > rt.MaxRetryAfter
		}
	}
	waitTime = bf.NextBackOff()
	return waitTime, waitTime == backoff.Stop
}

// RetryableRoundTripperError is returned in RoundTrip method of RetryableRoundTripper
// when the original request cannot be potentially retried.
type RetryableRoundTripperError struct {
	Inner error
}

func (e *RetryableRoundTripperError) Error() string {
	return fmt.Sprintf("retryable round trip: %s", e.Inner.Error())
}

// Unwrap returns the next error in the error chain.
func (e *RetryableRoundTripperError) Unwrap() error {
	return e.Inner
}

// DefaultCheckRetry retries requests that failed with a temporary transport error
// and idempotent requests that got 429 or 5xx.
// GET, HEAD and OPTIONS are idempotent, other methods only with NewContextWithIdempotentHint.
func DefaultCheckRetry(
	ctx context.Context, resp *http.Response, roundTripErr error, _ int,
) (needRetry bool, err error) {
	if ctx.Err() != nil {
		return false, nil
	}
	var method string
	if resp != nil && resp.Request != nil {
		method = resp.Request.Method
	}
	if roundTripErr != nil {
		return CheckErrorIsTemporary(roundTripErr), nil
	}
	if resp == nil {
		return false, fmt.Errorf("both response and round trip error are nil")
	}
	if !isIdempotentMethod(method) && !GetIdempotentHintFromContext(ctx) {
		return false, nil
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError, nil
}

func isIdempotentMethod(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// DefaultBackoffPolicy is a default backoff policy.
var DefaultBackoffPolicy = retry.ExponentialBackoffPolicy{
	InitialInterval: DefaultExponentialBackoffInitialInterval,
	Multiplier:      DefaultExponentialBackoffMultiplier,
}

// CheckErrorIsTemporary checks either error is temporary or not.
func CheckErrorIsTemporary(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var terr interface{ Temporary() bool }
	if errors.As(err, &terr) && terr.Temporary() {
		return true
	}
	var toErr interface{ Timeout() bool }
	return errors.As(err, &toErr) && toErr.Timeout()
}

// parseRetryAfter parses the Retry-After header value given either in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	date, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	if d := date.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
