/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import "github.com/prometheus/client_golang/prometheus"

const (
	metricsSubsystem = "restapi"

	metricsLabelDomain = "domain"
	metricsLabelCode   = "code"
)

// responseErrors is nil until MustInitAndRegisterMetrics is called, errors are not counted then.
var responseErrors *prometheus.CounterVec

// MustInitAndRegisterMetrics creates and registers the counter of error responses.
// It panics if the counter is already registered.
func MustInitAndRegisterMetrics(namespace string) {
	responseErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: metricsSubsystem,
		Name:      "response_errors_total",
		Help:      "Number of error responses by error domain and code.",
	}, []string{metricsLabelDomain, metricsLabelCode})
	prometheus.MustRegister(responseErrors)
}

// UnregisterMetrics unregisters the counter of error responses.
func UnregisterMetrics() {
	if responseErrors == nil {
		return
	}
	prometheus.Unregister(responseErrors)
	responseErrors = nil
}

func incResponseErrors(err *Error) {
	if responseErrors == nil {
		return
	}
	responseErrors.With(prometheus.Labels{metricsLabelDomain: err.Domain, metricsLabelCode: err.Code}).Inc()
}
