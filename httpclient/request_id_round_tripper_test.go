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

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/httpserver/middleware"
)

func TestRequestIDRoundTripper(t *testing.T) {
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		rw.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	do := func(t *testing.T, rt http.RoundTripper, ctx context.Context, header string) {
		t.Helper()
		gotRequestID = ""
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("X-Request-ID", header)
		}
		resp, err := (&http.Client{Transport: rt}).Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
	}

	t.Run("request id from incoming request context", func(t *testing.T) {
		ctx := middleware.NewContextWithRequestID(context.Background(), "cr9vb2kq4b1jt6k7ee3g")
		do(t, NewRequestIDRoundTripper(http.DefaultTransport), ctx, "")
		require.Equal(t, "cr9vb2kq4b1jt6k7ee3g", gotRequestID)
	})

	t.Run("no request id in context", func(t *testing.T) {
		do(t, NewRequestIDRoundTripper(http.DefaultTransport), context.Background(), "")
		require.Equal(t, "", gotRequestID)
	})

	t.Run("existing header is kept", func(t *testing.T) {
		ctx := middleware.NewContextWithRequestID(context.Background(), "from-context")
		do(t, NewRequestIDRoundTripper(http.DefaultTransport), ctx, "from-header")
		require.Equal(t, "from-header", gotRequestID)
	})

	t.Run("custom provider", func(t *testing.T) {
		rt := NewRequestIDRoundTripperWithOpts(http.DefaultTransport, RequestIDRoundTripperOpts{
			RequestIDProvider: func(ctx context.Context) string { return "audit-run-1" },
		})
		do(t, rt, context.Background(), "")
		require.Equal(t, "audit-run-1", gotRequestID)
	})
}
