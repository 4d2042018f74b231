/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/internal/ratelimit"
	"github.com/vahairstudio/site-api/log/logtest"
	"github.com/vahairstudio/site-api/testutil"
)

func newTestLimiter(now time.Time) *ratelimit.FixedWindowLimiter {
	return ratelimit.NewFixedWindowLimiterWithOpts(ratelimit.FixedWindowLimiterOpts{Clock: func() time.Time { return now }})
}

func sendFrom(h http.Handler, clientIP string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 2, 8, 15, 0, 0, 500_000_000, time.UTC)
	rate := ratelimit.Rate{Count: 2, Duration: time.Minute}

	t.Run("third request in window is rejected", func(t *testing.T) {
		next := &mockNextHandler{}
		metrics := NewRateLimitPrometheusMetrics("")
		h := RateLimitWithOpts(newTestLimiter(now), "api:services", rate, RateLimitOpts{MetricsCollector: metrics})(next)

		require.Equal(t, http.StatusOK, sendFrom(h, "1.2.3.4").Code)
		require.Equal(t, http.StatusOK, sendFrom(h, "1.2.3.4").Code)
		require.Equal(t, 2, next.called)
		require.Equal(t, "1.2.3.4", GetClientIdentityFromContext(next.request.Context()))

		resp := sendFrom(h, "1.2.3.4")
		require.Equal(t, 2, next.called)
		require.Equal(t, http.StatusTooManyRequests, resp.Code)
		testutil.RequireHeaders(t, resp.Header(), map[string]string{
			"Retry-After":           "60",
			"X-RateLimit-Limit":     "2",
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     strconv.FormatInt(now.Add(time.Minute).Unix()+1, 10),
		})
		testutil.RequireStringJSONInRecorder(t, resp, `{"error":"Too many requests"}`)
		require.Equal(t, 1, int(promtestutil.ToFloat64(metrics.Rejects.WithLabelValues("api:services", "false"))))
	})

	t.Run("clients and buckets are independent", func(t *testing.T) {
		limiter := newTestLimiter(now)
		next := &mockNextHandler{}
		services := RateLimit(limiter, "api:services", ratelimit.Rate{Count: 1, Duration: time.Minute})(next)
		stylists := RateLimit(limiter, "api:stylists", ratelimit.Rate{Count: 1, Duration: time.Minute})(next)

		require.Equal(t, http.StatusOK, sendFrom(services, "1.2.3.4").Code)
		require.Equal(t, http.StatusTooManyRequests, sendFrom(services, "1.2.3.4").Code)
		require.Equal(t, http.StatusOK, sendFrom(services, "5.6.7.8").Code)
		require.Equal(t, http.StatusOK, sendFrom(stylists, "1.2.3.4").Code)
		require.Equal(t, http.StatusOK, sendFrom(services, "").Code)
		require.Equal(t, http.StatusTooManyRequests, sendFrom(services, "").Code)
	})

	t.Run("excluded clients bypass the limiter", func(t *testing.T) {
		limiter := newTestLimiter(now)
		next := &mockNextHandler{}
		h := RateLimitWithOpts(limiter, "api:services", ratelimit.Rate{Count: 1, Duration: time.Minute},
			RateLimitOpts{ExcludedClients: []string{"10.0.*", "127.0.0.1"}})(next)

		for i := 0; i < 5; i++ {
			require.Equal(t, http.StatusOK, sendFrom(h, "10.0.3.7").Code)
			require.Equal(t, http.StatusOK, sendFrom(h, "127.0.0.1").Code)
		}
		require.Equal(t, 0, limiter.Len())
		require.Equal(t, http.StatusOK, sendFrom(h, "10.1.0.1").Code)
		require.Equal(t, http.StatusTooManyRequests, sendFrom(h, "10.1.0.1").Code)
	})

	t.Run("dry run", func(t *testing.T) {
		next := &mockNextHandler{}
		metrics := NewRateLimitPrometheusMetrics("")
		logger := logtest.NewRecorder()
		h := RateLimitWithOpts(newTestLimiter(now), "api:services", ratelimit.Rate{Count: 1, Duration: time.Minute},
			RateLimitOpts{DryRun: true, MetricsCollector: metrics})(next)
		h = withLogger(h, logger)

		require.Equal(t, http.StatusOK, sendFrom(h, "1.2.3.4").Code)
		require.Equal(t, http.StatusOK, sendFrom(h, "1.2.3.4").Code)
		require.Equal(t, 2, next.called)
		require.Equal(t, 1, int(promtestutil.ToFloat64(metrics.Rejects.WithLabelValues("api:services", "true"))))
		entry, found := logger.FindEntry("too many requests, serving in dry-run mode")
		require.True(t, found)
		bucket, _ := entry.FieldString(RateLimitLogFieldKey)
		require.Equal(t, "api:services", bucket)
	})
}

func withLogger(next http.Handler, logger *logtest.Recorder) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(rw, r.WithContext(NewContextWithLogger(r.Context(), logger)))
	})
}
