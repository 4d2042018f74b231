/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/httpserver/middleware"
	"github.com/vahairstudio/site-api/log"
	"github.com/vahairstudio/site-api/log/logtest"
)

func doLoggedRequest(t *testing.T, rt http.RoundTripper, logger *logtest.Recorder, url string) (*http.Response, error) {
	t.Helper()
	ctx := middleware.NewContextWithLogger(context.Background(), logger)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := (&http.Client{Transport: rt}).Do(req)
	if resp != nil {
		require.NoError(t, resp.Body.Close())
	}
	return resp, err
}

func TestLoggingRoundTripper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			rw.WriteHeader(http.StatusNotFound)
			return
		}
		rw.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("all mode logs successful requests", func(t *testing.T) {
		logger := logtest.NewRecorder()
		_, err := doLoggedRequest(t, NewLoggingRoundTripper(http.DefaultTransport, "acuity"), logger, server.URL+"/calendars")
		require.NoError(t, err)

		entry, found := logger.FindEntry("client http request GET /calendars responded 200")
		require.True(t, found)
		require.Equal(t, log.LevelInfo, entry.Level)
		clientType, _ := entry.FieldString("client_type")
		require.Equal(t, "acuity", clientType)
	})

	t.Run("failed mode skips successful requests", func(t *testing.T) {
		logger := logtest.NewRecorder()
		rt := NewLoggingRoundTripperWithOpts(http.DefaultTransport, "acuity", LoggingRoundTripperOpts{Mode: LoggingModeFailed})
		_, err := doLoggedRequest(t, rt, logger, server.URL+"/calendars")
		require.NoError(t, err)
		require.Empty(t, logger.Entries())

		_, err = doLoggedRequest(t, rt, logger, server.URL+"/missing")
		require.NoError(t, err)
		entry, found := logger.FindEntry("client http request GET /missing responded 404")
		require.True(t, found)
		require.Equal(t, log.LevelWarn, entry.Level)
	})

	t.Run("none mode logs nothing", func(t *testing.T) {
		logger := logtest.NewRecorder()
		rt := NewLoggingRoundTripperWithOpts(http.DefaultTransport, "acuity", LoggingRoundTripperOpts{Mode: LoggingModeNone})
		_, err := doLoggedRequest(t, rt, logger, server.URL+"/missing")
		require.NoError(t, err)
		require.Empty(t, logger.Entries())
	})

	t.Run("transport error is logged at error level", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		deadURL := "http://" + ln.Addr().String()
		require.NoError(t, ln.Close())

		logger := logtest.NewRecorder()
		_, err = doLoggedRequest(t, NewLoggingRoundTripper(http.DefaultTransport, "acuity"), logger, deadURL+"/calendars")
		require.Error(t, err)

		entry, found := logger.FindEntry("client http request GET /calendars failed")
		require.True(t, found)
		require.Equal(t, log.LevelError, entry.Level)
	})

	t.Run("request type from context overrides the default", func(t *testing.T) {
		logger := logtest.NewRecorder()
		ctx := NewContextWithRequestType(middleware.NewContextWithLogger(context.Background(), logger), "calendars")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/calendars", nil)
		require.NoError(t, err)
		resp, err := (&http.Client{Transport: NewLoggingRoundTripper(http.DefaultTransport, "acuity")}).Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		entry, found := logger.FindEntry("client http request GET /calendars responded 200")
		require.True(t, found)
		clientType, _ := entry.FieldString("client_type")
		require.Equal(t, "calendars", clientType)
	})
}

func TestLoggingMode_IsValid(t *testing.T) {
	require.True(t, LoggingModeAll.IsValid())
	require.True(t, LoggingModeFailed.IsValid())
	require.True(t, LoggingModeNone.IsValid())
	require.False(t, LoggingMode("some").IsValid())
}
