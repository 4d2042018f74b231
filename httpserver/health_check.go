/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/atomic"

	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/restapi"
)

// StatusClientClosedRequest is a special HTTP status code used by Nginx to show that the client
// closed the request before the server could send a response
const StatusClientClosedRequest = 499

// HealthCheckComponentServer is reported as failed once the server starts shutting down,
// so the load balancer stops routing new requests to the instance.
const HealthCheckComponentServer = "http_server"

// HealthCheckStatus is a resulting status of the health-check.
type HealthCheckStatus int

// Health-check statuses.
const (
	HealthCheckStatusOK HealthCheckStatus = iota
	HealthCheckStatusFail
)

// HealthCheckResult maps component names to their statuses.
type HealthCheckResult = map[string]HealthCheckStatus

// HealthCheck is a health-check operation that has access to the request Context.
type HealthCheck = func(ctx context.Context) (HealthCheckResult, error)

type healthCheckResponseData struct {
	Components map[string]bool `json:"components"`
}

// HealthCheckHandler implements http.Handler and does health-check of a service.
type HealthCheckHandler struct {
	healthCheckFn HealthCheck
	shuttingDown  *atomic.Bool
}

// NewHealthCheckHandler creates a new http.Handler for doing health-check.
// fn may be nil. The http_server component fails while shuttingDown is set.
func NewHealthCheckHandler(fn HealthCheck, shuttingDown *atomic.Bool) *HealthCheckHandler {
	if fn == nil {
		fn = func(ctx context.Context) (HealthCheckResult, error) {
			return HealthCheckResult{}, ctx.Err()
		}
	}
	if shuttingDown == nil {
		shuttingDown = atomic.NewBool(false)
	}
	return &HealthCheckHandler{healthCheckFn: fn, shuttingDown: shuttingDown}
}

// ServeHTTP serves heath-check HTTP request.
func (h *HealthCheckHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContextOrDisabled(r.Context())
	hcResult, err := h.healthCheckFn(r.Context())
	if err != nil {
		logger.Error("error while checking health", log.Error(err))
		if errors.Is(err, context.Canceled) {
			rw.WriteHeader(StatusClientClosedRequest)
			return
		}
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	serverStatus := HealthCheckStatusOK
	if h.shuttingDown.Load() {
		serverStatus = HealthCheckStatusFail
	}

	healthy := serverStatus == HealthCheckStatusOK
	respData := healthCheckResponseData{Components: map[string]bool{HealthCheckComponentServer: healthy}}
	for name, status := range hcResult {
		respData.Components[name] = status == HealthCheckStatusOK
		if status != HealthCheckStatusOK {
			healthy = false
		}
	}

	if errors.Is(r.Context().Err(), context.Canceled) {
		rw.WriteHeader(StatusClientClosedRequest)
		return
	}

	respStatus := http.StatusOK
	if !healthy {
		respStatus = http.StatusServiceUnavailable
	}
	restapi.RespondCodeAndJSON(rw, respStatus, respData, logger)
}
