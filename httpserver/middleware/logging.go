/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ssgreg/logf"

	"github.com/vahairstudio/site-api/log"
)

// LoggingSecretQueryPlaceholder represents a placeholder that will be used for secret query parameters.
const LoggingSecretQueryPlaceholder = "_HIDDEN_"

// DefaultSlowRequestThreshold is the duration after which the time_slots field group is logged.
const DefaultSlowRequestThreshold = time.Second

// LoggingOpts represents an options for Logging middleware.
type LoggingOpts struct {
	RequestStart           bool
	RequestHeaders         map[string]string
	ExcludedEndpoints      []string
	SecretQueryParams      []string
	AddRequestInfoToLogger bool
	SlowRequestThreshold   time.Duration // controls when to include "time_slots" field group into final log message
}

type loggingHandler struct {
	next     http.Handler
	logger   log.FieldLogger
	opts     LoggingOpts
	excluded map[string]struct{}
}

// Logging logs the completion of every request and puts a logger with the request ids into its context.
func Logging(logger log.FieldLogger) func(next http.Handler) http.Handler {
	return LoggingWithOpts(logger, LoggingOpts{})
}

// LoggingWithOpts is a more configurable version of Logging middleware.
// Requests to ExcludedEndpoints are logged only when they fail.
func LoggingWithOpts(logger log.FieldLogger, opts LoggingOpts) func(next http.Handler) http.Handler {
	if opts.SlowRequestThreshold == 0 {
		opts.SlowRequestThreshold = DefaultSlowRequestThreshold
	}
	excluded := make(map[string]struct{}, len(opts.ExcludedEndpoints))
	for _, endpoint := range opts.ExcludedEndpoints {
		excluded[endpoint] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return &loggingHandler{next: next, logger: logger, opts: opts, excluded: excluded}
	}
}

func (h *loggingHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := GetRequestStartTimeFromContext(ctx)
	if startTime.IsZero() {
		startTime = time.Now()
		ctx = NewContextWithRequestStartTime(ctx, startTime)
	}

	handlerLogger := h.logger.With(
		log.String("request_id", GetRequestIDFromContext(ctx)),
		log.String("int_request_id", GetInternalRequestIDFromContext(ctx)),
	)
	reqLogger := handlerLogger.With(h.requestFields(r)...)
	if h.opts.AddRequestInfoToLogger {
		handlerLogger = reqLogger
	}

	_, excluded := h.excluded[r.URL.Path]
	if h.opts.RequestStart && !excluded {
		reqLogger.Info("request started")
	}

	lp := &LoggingParams{}
	wrw := WrapResponseWriterIfNeeded(rw, r.ProtoMajor)
	h.next.ServeHTTP(wrw, r.WithContext(NewContextWithLoggingParams(NewContextWithLogger(ctx, handlerLogger), lp)))

	status := statusOf(wrw)
	if excluded && status < http.StatusBadRequest {
		return
	}
	elapsed := time.Since(startTime)
	reqLogger.Info(fmt.Sprintf("response completed in %.3fs", elapsed.Seconds()), h.responseFields(wrw, status, elapsed, lp)...)
}

func (h *loggingHandler) requestFields(r *http.Request) []log.Field {
	fields := []log.Field{
		log.String("method", r.Method),
		log.String("uri", h.makeURIToLog(r)),
		log.String("remote_addr", r.RemoteAddr),
		log.String("client_ip", ClientIdentity(r)),
		log.Int64("content_length", r.ContentLength),
		log.String("user_agent", r.UserAgent()),
	}
	if host, port, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		fields = append(fields, log.String("remote_addr_ip", host))
		if n, convErr := strconv.Atoi(port); convErr == nil {
			fields = append(fields, log.Int("remote_addr_port", n))
		}
	}
	for header, key := range h.opts.RequestHeaders {
		fields = append(fields, log.String(key, r.Header.Get(header)))
	}
	return fields
}

func (h *loggingHandler) responseFields(wrw WrapResponseWriter, status int, elapsed time.Duration, lp *LoggingParams) []log.Field {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	fields := make([]log.Field, 0, 4+len(lp.fields))
	fields = append(fields,
		log.Int64("duration_ms", elapsed.Milliseconds()),
		log.Int("status", status),
		log.Int("bytes_sent", wrw.BytesWritten()),
	)
	fields = append(fields, lp.fields...)
	if elapsed >= h.opts.SlowRequestThreshold && len(lp.timeSlots) != 0 {
		fields = append(fields, log.Field{Key: "time_slots", Type: logf.FieldTypeObject, Any: lp.timeSlots})
	}
	return fields
}

// makeURIToLog replaces values of SecretQueryParams (customer email or phone) with a placeholder.
func (h *loggingHandler) makeURIToLog(r *http.Request) string {
	if len(h.opts.SecretQueryParams) == 0 || r.URL.RawQuery == "" {
		return r.RequestURI
	}
	query := r.URL.Query()
	for _, name := range h.opts.SecretQueryParams {
		for i, val := range query[name] {
			if val != "" {
				query[name][i] = LoggingSecretQueryPlaceholder
			}
		}
	}
	return r.URL.Path + "?" + query.Encode()
}
