/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vasayxtx/go-glob"

	"github.com/vahairstudio/site-api/internal/ratelimit"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/restapi"
)

// RateLimitErrMessage is the message of the 429 response body.
const RateLimitErrMessage = "Too many requests"

// Rate-limit response headers.
const (
	HeaderRetryAfter         = restapi.HeaderRetryAfter
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimitLogFieldKey is the name of the logged field that contains the rate-limit bucket.
const RateLimitLogFieldKey = "rate_limit_bucket"

// RateLimitMetricsCollector counts requests rejected by the RateLimit middleware.
type RateLimitMetricsCollector interface {
	IncRejects(bucketKey string, dryRun bool)
}

// RateLimitPrometheusMetrics is a Prometheus implementation of RateLimitMetricsCollector.
type RateLimitPrometheusMetrics struct {
	Rejects *prometheus.CounterVec
}

// NewRateLimitPrometheusMetrics creates a new instance of RateLimitPrometheusMetrics.
func NewRateLimitPrometheusMetrics(namespace string) *RateLimitPrometheusMetrics {
	return &RateLimitPrometheusMetrics{
		Rejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limit_rejects_total",
			Help:      "Number of HTTP requests rejected (or, in dry-run mode, that would be rejected) by the rate limiter.",
		}, []string{"bucket", "dry_run"}),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (m *RateLimitPrometheusMetrics) MustRegister() {
	prometheus.MustRegister(m.Rejects)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (m *RateLimitPrometheusMetrics) Unregister() {
	prometheus.Unregister(m.Rejects)
}

// IncRejects implements RateLimitMetricsCollector.
func (m *RateLimitPrometheusMetrics) IncRejects(bucketKey string, dryRun bool) {
	m.Rejects.WithLabelValues(bucketKey, strconv.FormatBool(dryRun)).Inc()
}

type disabledRateLimitMetrics struct{}

func (disabledRateLimitMetrics) IncRejects(string, bool) {}

// RateLimitOpts represents an options for RateLimit middleware.
type RateLimitOpts struct {
	// GetClientIdentity returns the identity that shares a bucket. ClientIdentity is used by default.
	GetClientIdentity func(r *http.Request) string

	// ExcludedClients are glob patterns ("10.0.*", "127.0.0.1") of client identities that are never limited.
	ExcludedClients []string

	// DryRun makes the middleware log and count rejections without rejecting.
	DryRun bool

	MetricsCollector RateLimitMetricsCollector
}

type rateLimitHandler struct {
	next            http.Handler
	limiter         ratelimit.Limiter
	bucketKey       string
	rate            ratelimit.Rate
	getIdentity     func(r *http.Request) string
	excludedClients []func(string) bool
	dryRun          bool
	metrics         RateLimitMetricsCollector
}

// RateLimit is a middleware that limits the rate of requests per client within the bucketKey bucket.
// Rejected requests get 429 with {"error":"Too many requests"} and Retry-After/X-RateLimit-* headers.
func RateLimit(limiter ratelimit.Limiter, bucketKey string, rate ratelimit.Rate) func(next http.Handler) http.Handler {
	return RateLimitWithOpts(limiter, bucketKey, rate, RateLimitOpts{})
}

// RateLimitWithOpts is a more configurable version of RateLimit middleware.
func RateLimitWithOpts(
	limiter ratelimit.Limiter, bucketKey string, rate ratelimit.Rate, opts RateLimitOpts,
) func(next http.Handler) http.Handler {
	if opts.GetClientIdentity == nil {
		opts.GetClientIdentity = ClientIdentity
	}
	if opts.MetricsCollector == nil {
		opts.MetricsCollector = disabledRateLimitMetrics{}
	}
	excluded := make([]func(string) bool, 0, len(opts.ExcludedClients))
	for _, pattern := range opts.ExcludedClients {
		excluded = append(excluded, glob.Compile(pattern))
	}
	return func(next http.Handler) http.Handler {
		return &rateLimitHandler{
			next:            next,
			limiter:         limiter,
			bucketKey:       bucketKey,
			rate:            rate,
			getIdentity:     opts.GetClientIdentity,
			excludedClients: excluded,
			dryRun:          opts.DryRun,
			metrics:         opts.MetricsCollector,
		}
	}
}

func (h *rateLimitHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	identity := h.getIdentity(r)
	r = r.WithContext(NewContextWithClientIdentity(r.Context(), identity))
	for _, matches := range h.excludedClients {
		if matches(identity) {
			h.next.ServeHTTP(rw, r)
			return
		}
	}

	res := h.limiter.Check(h.bucketKey, identity, h.rate.Count, h.rate.Duration)
	if res.Allowed {
		h.next.ServeHTTP(rw, r)
		return
	}

	h.metrics.IncRejects(h.bucketKey, h.dryRun)
	logger := GetLoggerFromContextOrDisabled(r.Context())
	if h.dryRun {
		logger.Warn("too many requests, serving in dry-run mode",
			log.String(RateLimitLogFieldKey, h.bucketKey), log.String("client", identity))
		h.next.ServeHTTP(rw, r)
		return
	}

	logger.Warn("too many requests", log.String(RateLimitLogFieldKey, h.bucketKey),
		log.String("client", identity), log.Int("retry_after_s", res.RetryAfterSeconds()))
	rw.Header().Set(HeaderRateLimitLimit, strconv.Itoa(res.Limit))
	rw.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
	rw.Header().Set(HeaderRateLimitReset, strconv.FormatInt(res.ResetAtUnix(), 10))
	restapi.RespondRetryLater(rw, http.StatusTooManyRequests, res.RetryAfterSeconds(),
		restapi.MessageResponseData{Error: RateLimitErrMessage}, logger)
}
