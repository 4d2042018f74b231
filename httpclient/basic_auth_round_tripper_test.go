/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type credentialsProviderFunc func(ctx context.Context) (string, string, error)

func (f credentialsProviderFunc) Credentials(ctx context.Context) (string, string, error) {
	return f(ctx)
}

func TestBasicAuthRoundTripper(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		rw.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("sets basic auth header", func(t *testing.T) {
		client := &http.Client{Transport: NewBasicAuthRoundTripper(http.DefaultTransport,
			StaticCredentials{Username: "12345", Password: "secret"})}
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		// base64("12345:secret")
		require.Equal(t, "Basic MTIzNDU6c2VjcmV0", gotAuth)
	})

	t.Run("keeps existing authorization header", func(t *testing.T) {
		client := &http.Client{Transport: NewBasicAuthRoundTripper(http.DefaultTransport,
			StaticCredentials{Username: "12345", Password: "secret"})}
		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer token")
		resp, err := client.Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		require.Equal(t, "Bearer token", gotAuth)
	})

	t.Run("credentials error", func(t *testing.T) {
		credsErr := errors.New("no credentials")
		rt := NewBasicAuthRoundTripper(http.DefaultTransport, credentialsProviderFunc(
			func(ctx context.Context) (string, string, error) { return "", "", credsErr }))
		req := httptest.NewRequest(http.MethodGet, server.URL, nil)
		_, err := rt.RoundTrip(req)
		require.ErrorIs(t, err, credsErr)
		var rtErr *BasicAuthRoundTripperError
		require.ErrorAs(t, err, &rtErr)
	})
}
