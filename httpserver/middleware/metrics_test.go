/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/testutil"
)

func TestHTTPRequestMetrics(t *testing.T) {
	newRouter := func(collector *HTTPRequestMetricsCollector, opts HTTPRequestMetricsOpts) *chi.Mux {
		router := chi.NewRouter()
		router.Use(HTTPRequestMetricsWithOpts(collector, GetChiRoutePattern, opts))
		router.Get("/api/services", func(rw http.ResponseWriter, r *http.Request) {
			require.Equal(t, float64(1), promtestutil.ToFloat64(collector.InFlight))
			rw.WriteHeader(http.StatusOK)
		})
		router.Get("/api/stylists", func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(http.StatusServiceUnavailable)
		})
		router.Get("/metrics", func(rw http.ResponseWriter, r *http.Request) {})
		router.Get("/panic", func(rw http.ResponseWriter, r *http.Request) {
			panic("boom")
		})
		return router
	}

	histogram := func(c *HTTPRequestMetricsCollector, method, pattern, status string) prometheus.Histogram {
		return c.Durations.With(prometheus.Labels{
			httpRequestMetricsLabelMethod:       method,
			httpRequestMetricsLabelRoutePattern: pattern,
			httpRequestMetricsLabelStatusCode:   status,
		}).(prometheus.Histogram)
	}

	t.Run("durations are labeled by route pattern and status", func(t *testing.T) {
		collector := NewHTTPRequestMetricsCollector()
		router := newRouter(collector, HTTPRequestMetricsOpts{})

		for i := 0; i < 3; i++ {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/services", nil))
		}
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stylists", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no-such-path", nil))

		testutil.RequireSamplesCountInHistogram(t, histogram(collector, http.MethodGet, "/api/services", "200"), 3)
		testutil.RequireSamplesCountInHistogram(t, histogram(collector, http.MethodGet, "/api/stylists", "503"), 1)
		testutil.RequireSamplesCountInHistogram(t, histogram(collector, http.MethodGet, unmatchedRoutePattern, "404"), 1)
		require.Equal(t, float64(0), promtestutil.ToFloat64(collector.InFlight))
	})

	t.Run("excluded endpoints are not measured", func(t *testing.T) {
		collector := NewHTTPRequestMetricsCollector()
		router := newRouter(collector, HTTPRequestMetricsOpts{ExcludedEndpoints: []string{"/metrics"}})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, 0, promtestutil.CollectAndCount(collector.Durations))
	})

	t.Run("panic is measured as 500 and re-raised", func(t *testing.T) {
		collector := NewHTTPRequestMetricsCollector()
		router := newRouter(collector, HTTPRequestMetricsOpts{})

		require.Panics(t, func() {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))
		})
		testutil.RequireSamplesCountInHistogram(t, histogram(collector, http.MethodGet, "/panic", "500"), 1)
		require.Equal(t, float64(0), promtestutil.ToFloat64(collector.InFlight))
	})

	t.Run("nil route pattern getter panics", func(t *testing.T) {
		require.Panics(t, func() {
			HTTPRequestMetrics(NewHTTPRequestMetricsCollector(), nil)
		})
	})
}
