/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/log/logtest"
)

type mockLoggingNextHandler struct {
	called                   int
	lastContextLogger        log.FieldLogger
	lastContextLoggingParams *LoggingParams
	respStatusCode           int
}

func (h *mockLoggingNextHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	h.called++
	h.lastContextLogger = GetLoggerFromContext(r.Context())
	h.lastContextLoggingParams = GetLoggingParamsFromContext(r.Context())
	rw.WriteHeader(h.respStatusCode)
	_, _ = rw.Write([]byte(http.StatusText(h.respStatusCode)))
}

func requireLogFieldString(t *testing.T, logEntry logtest.RecordedEntry, key, want string) {
	t.Helper()
	got, found := logEntry.FieldString(key)
	require.True(t, found, "field %q not found", key)
	require.Equal(t, want, got, "field %q", key)
}

func requireLogFieldInt(t *testing.T, logEntry logtest.RecordedEntry, key string, want int) {
	t.Helper()
	f, found := logEntry.FindField(key)
	require.True(t, found, "field %q not found", key)
	require.Equal(t, int64(want), f.Int, "field %q", key)
}

func newLoggingTestRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(NewContextWithRequestID(req.Context(), "external-request-id"))
	req = req.WithContext(NewContextWithInternalRequestID(req.Context(), "internal-request-id"))
	req.Header.Set("User-Agent", "http-client")
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	req.Header.Set("Origin", "https://vahair.studio")
	return req
}

func TestLoggingHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name              string
		opts              LoggingOpts
		statusCode        int
		wantLoggedHeaders map[string]string
	}{
		{name: "defaults", statusCode: http.StatusServiceUnavailable},
		{name: "request start", opts: LoggingOpts{RequestStart: true}, statusCode: http.StatusBadRequest},
		{
			name:              "request headers",
			opts:              LoggingOpts{RequestHeaders: map[string]string{"Origin": "origin", "Referer": "referer"}},
			statusCode:        http.StatusOK,
			wantLoggedHeaders: map[string]string{"origin": "https://vahair.studio", "referer": ""},
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			logger := logtest.NewRecorder()
			handler := &mockLoggingNextHandler{respStatusCode: tt.statusCode}
			LoggingWithOpts(logger, tt.opts)(handler).ServeHTTP(httptest.NewRecorder(), newLoggingTestRequest("/api/services"))
			require.Equal(t, 1, handler.called)
			require.NotNil(t, handler.lastContextLogger)
			require.NotNil(t, handler.lastContextLoggingParams)

			wantLoggedLines := 1
			if tt.opts.RequestStart {
				wantLoggedLines++
				require.Equal(t, "request started", logger.Entries()[0].Text)
			}
			require.Equal(t, wantLoggedLines, len(logger.Entries()))

			logEntry := logger.Entries()[wantLoggedLines-1]
			require.True(t, strings.HasPrefix(logEntry.Text, "response completed in "))
			require.Equal(t, log.LevelInfo, logEntry.Level)
			requireLogFieldString(t, logEntry, "request_id", "external-request-id")
			requireLogFieldString(t, logEntry, "int_request_id", "internal-request-id")
			requireLogFieldString(t, logEntry, "method", http.MethodGet)
			requireLogFieldString(t, logEntry, "uri", "/api/services")
			requireLogFieldString(t, logEntry, "client_ip", "1.2.3.4")
			requireLogFieldString(t, logEntry, "user_agent", "http-client")
			requireLogFieldInt(t, logEntry, "status", tt.statusCode)
			requireLogFieldInt(t, logEntry, "bytes_sent", len(http.StatusText(tt.statusCode)))
			for logKey, logVal := range tt.wantLoggedHeaders {
				requireLogFieldString(t, logEntry, logKey, logVal)
			}
		})
	}
}

func TestLoggingHandler_ExcludedEndpoints(t *testing.T) {
	opts := LoggingOpts{ExcludedEndpoints: []string{"/healthz"}}

	logger := logtest.NewRecorder()
	LoggingWithOpts(logger, opts)(&mockLoggingNextHandler{respStatusCode: http.StatusOK}).
		ServeHTTP(httptest.NewRecorder(), newLoggingTestRequest("/healthz"))
	require.Empty(t, logger.Entries())

	// Failures of excluded endpoints are still logged.
	LoggingWithOpts(logger, opts)(&mockLoggingNextHandler{respStatusCode: http.StatusServiceUnavailable}).
		ServeHTTP(httptest.NewRecorder(), newLoggingTestRequest("/healthz"))
	require.Len(t, logger.Entries(), 1)
}

func TestLoggingHandler_SecretQueryParams(t *testing.T) {
	logger := logtest.NewRecorder()
	LoggingWithOpts(logger, LoggingOpts{SecretQueryParams: []string{"email"}})(
		&mockLoggingNextHandler{respStatusCode: http.StatusOK},
	).ServeHTTP(httptest.NewRecorder(), newLoggingTestRequest("/api/availability?calendarId=7&email=a%40b.c"))
	require.Len(t, logger.Entries(), 1)
	requireLogFieldString(t, logger.Entries()[0], "uri", "/api/availability?calendarId=7&email=_HIDDEN_")
}

func TestLoggingHandler_AddRequestInfoToLogger(t *testing.T) {
	logger := logtest.NewRecorder()
	next := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		GetLoggerFromContext(r.Context()).Info("inside handler")
	})
	LoggingWithOpts(logger, LoggingOpts{AddRequestInfoToLogger: true})(next).
		ServeHTTP(httptest.NewRecorder(), newLoggingTestRequest("/api/stylists"))

	entry, found := logger.FindEntry("inside handler")
	require.True(t, found)
	requireLogFieldString(t, entry, "uri", "/api/stylists")
	requireLogFieldString(t, entry, "request_id", "external-request-id")
}
