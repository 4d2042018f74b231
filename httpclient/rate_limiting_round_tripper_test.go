/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRateLimitingRoundTripper(t *testing.T) {
	tests := []struct {
		name       string
		rateLimit  int
		opts       RateLimitingRoundTripperOpts
		wantErrMsg string
	}{
		{name: "rate limit is negative", rateLimit: -1, wantErrMsg: "rate limit must be positive"},
		{name: "rate limit is zero", rateLimit: 0, wantErrMsg: "rate limit must be positive"},
		{name: "burst is negative", rateLimit: 1, opts: RateLimitingRoundTripperOpts{Burst: -1}, wantErrMsg: "burst must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRateLimitingRoundTripperWithOpts(http.DefaultTransport, tt.rateLimit, tt.opts)
			require.EqualError(t, err, tt.wantErrMsg)
		})
	}

	rt, err := NewRateLimitingRoundTripper(http.DefaultTransport, 10)
	require.NoError(t, err)
	require.Equal(t, DefaultRateLimitingBurst, rt.Burst)
	require.Equal(t, DefaultRateLimitingWaitTimeout, rt.WaitTimeout)
}

func TestRateLimitingRoundTripper_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte("ok"))
	}))
	defer server.Close()

	makeClient := func(rateLimit, burst int, waitTimeout time.Duration) *http.Client {
		tr, err := NewRateLimitingRoundTripperWithOpts(http.DefaultTransport, rateLimit,
			RateLimitingRoundTripperOpts{Burst: burst, WaitTimeout: waitTimeout})
		require.NoError(t, err)
		return &http.Client{Transport: tr}
	}

	t.Run("wait timeout is not enough for the 2nd request", func(t *testing.T) {
		client := makeClient(1, 1, 200*time.Millisecond)

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		_, err = client.Get(server.URL)
		var waitErr *RateLimitingWaitError
		require.ErrorAs(t, err, &waitErr)
	})

	t.Run("2nd request waits for a token", func(t *testing.T) {
		client := makeClient(5, 1, time.Second)

		startedAt := time.Now()
		for i := 0; i < 2; i++ {
			resp, err := client.Get(server.URL)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
		}
		require.GreaterOrEqual(t, time.Since(startedAt), 150*time.Millisecond)
	})

	t.Run("burst is served immediately", func(t *testing.T) {
		client := makeClient(1, 3, 100*time.Millisecond)
		for i := 0; i < 3; i++ {
			resp, err := client.Get(server.URL)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
		}
	})
}

func TestRateLimitingRoundTripper_WaitErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	t.Run("delay over wait timeout fails fast", func(t *testing.T) {
		tr, err := NewRateLimitingRoundTripperWithOpts(http.DefaultTransport, 1,
			RateLimitingRoundTripperOpts{WaitTimeout: 500 * time.Millisecond})
		require.NoError(t, err)
		client := &http.Client{Transport: tr}

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		startedAt := time.Now()
		_, err = client.Get(server.URL)
		require.ErrorIs(t, err, ErrRateLimitWaitTooLong)
		require.Less(t, time.Since(startedAt), 400*time.Millisecond)
	})

	t.Run("context canceled while waiting", func(t *testing.T) {
		tr, err := NewRateLimitingRoundTripperWithOpts(http.DefaultTransport, 2,
			RateLimitingRoundTripperOpts{WaitTimeout: time.Second})
		require.NoError(t, err)
		client := &http.Client{Transport: tr}

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		_, err = client.Do(req)
		var waitErr *RateLimitingWaitError
		require.ErrorAs(t, err, &waitErr)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Greater(t, waitErr.Delay, time.Duration(0))
	})
}
