/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ttlcache

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector collects metrics showing how effectively the cache is used.
type MetricsCollector interface {
	// SetAmount sets the number of entries (fresh and expired) in the store.
	SetAmount(int)

	// IncHits increments the number of requests served by a fresh entry.
	IncHits()

	// IncMisses increments the number of requests that required a fetch.
	IncMisses()

	// IncStaleServed increments the number of failed fetches answered with an expired entry.
	IncStaleServed()

	// IncFetchErrors increments the number of failed fetches.
	IncFetchErrors()
}

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is prepended to all metric names.
	Namespace string

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels

	// CurriedLabelNames are label names that must be curried with MustCurryWith before use
	// (e.g. "cache" when several typed caches share the same collectors).
	CurriedLabelNames []string
}

// PrometheusMetrics represents Prometheus metrics for the cache.
type PrometheusMetrics struct {
	EntriesAmount    *prometheus.GaugeVec
	HitsTotal        *prometheus.CounterVec
	MissesTotal      *prometheus.CounterVec
	StaleServedTotal *prometheus.CounterVec
	FetchErrorsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	makeCounter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: opts.ConstLabels,
		}, opts.CurriedLabelNames)
	}
	return &PrometheusMetrics{
		EntriesAmount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   opts.Namespace,
			Name:        "ttlcache_entries",
			Help:        "Number of entries (fresh and expired) in the cache.",
			ConstLabels: opts.ConstLabels,
		}, opts.CurriedLabelNames),
		HitsTotal:        makeCounter("ttlcache_hits_total", "Number of requests served by a fresh entry."),
		MissesTotal:      makeCounter("ttlcache_misses_total", "Number of requests that required a fetch."),
		StaleServedTotal: makeCounter("ttlcache_stale_served_total", "Number of failed fetches answered with an expired entry."),
		FetchErrorsTotal: makeCounter("ttlcache_fetch_errors_total", "Number of failed fetches."),
	}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{
		EntriesAmount:    pm.EntriesAmount.MustCurryWith(labels),
		HitsTotal:        pm.HitsTotal.MustCurryWith(labels),
		MissesTotal:      pm.MissesTotal.MustCurryWith(labels),
		StaleServedTotal: pm.StaleServedTotal.MustCurryWith(labels),
		FetchErrorsTotal: pm.FetchErrorsTotal.MustCurryWith(labels),
	}
}

// MustRegister does registration of metrics collector in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(pm.EntriesAmount, pm.HitsTotal, pm.MissesTotal, pm.StaleServedTotal, pm.FetchErrorsTotal)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.EntriesAmount)
	prometheus.Unregister(pm.HitsTotal)
	prometheus.Unregister(pm.MissesTotal)
	prometheus.Unregister(pm.StaleServedTotal)
	prometheus.Unregister(pm.FetchErrorsTotal)
}

// SetAmount implements MetricsCollector.
func (pm *PrometheusMetrics) SetAmount(amount int) {
	pm.EntriesAmount.With(nil).Set(float64(amount))
}

// IncHits implements MetricsCollector.
func (pm *PrometheusMetrics) IncHits() {
	pm.HitsTotal.With(nil).Inc()
}

// IncMisses implements MetricsCollector.
func (pm *PrometheusMetrics) IncMisses() {
	pm.MissesTotal.With(nil).Inc()
}

// IncStaleServed implements MetricsCollector.
func (pm *PrometheusMetrics) IncStaleServed() {
	pm.StaleServedTotal.With(nil).Inc()
}

// IncFetchErrors implements MetricsCollector.
func (pm *PrometheusMetrics) IncFetchErrors() {
	pm.FetchErrorsTotal.With(nil).Inc()
}

type disabledMetrics struct{}

func (disabledMetrics) SetAmount(int)   {}
func (disabledMetrics) IncHits()        {}
func (disabledMetrics) IncMisses()      {}
func (disabledMetrics) IncStaleServed() {}
func (disabledMetrics) IncFetchErrors() {}

var disabledMetricsCollector = disabledMetrics{}
