/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/config"
	"github.com/vahairstudio/site-api/internal/ratelimit"
)

func loadTestConfig(t *testing.T, data string, cfgs ...config.Config) error {
	t.Helper()
	return config.NewLoader(config.NewViperAdapter()).LoadFromReader(
		bytes.NewBufferString(data), config.DataTypeYAML, cfgs[0], cfgs[1:]...)
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, loadTestConfig(t, "", cfg))
		require.Equal(t, NewDefaultConfig(), cfg)
	})

	t.Run("yaml config", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, loadTestConfig(t, `
server:
  address: "127.0.0.1:9090"
  timeouts:
    write: 1h
    read: 7m
    readHeader: 1m
    idle: 20m
    shutdown: 30s
    shutdownDelay: 5s
  limits:
    maxBodySize: 1M
  log:
    requestStart: true
    requestHeaders: [User-Agent]
    excludedEndpoints: [/healthz]
    secretQueryParams: [email]
    slowRequestThreshold: 2s
  cors:
    allowOrigin: https://staging.vahair.studio
`, cfg))

		want := NewDefaultConfig()
		want.Address = "127.0.0.1:9090"
		want.Timeouts.Write = config.TimeDuration(time.Hour)
		want.Timeouts.Read = config.TimeDuration(time.Minute * 7)
		want.Timeouts.ReadHeader = config.TimeDuration(time.Minute)
		want.Timeouts.Idle = config.TimeDuration(time.Minute * 20)
		want.Timeouts.Shutdown = config.TimeDuration(time.Second * 30)
		want.Timeouts.ShutdownDelay = config.TimeDuration(time.Second * 5)
		want.Limits.MaxBodySizeBytes = 1024 * 1024
		want.Log.RequestStart = true
		want.Log.RequestHeaders = []string{"User-Agent"}
		want.Log.ExcludedEndpoints = []string{"/healthz"}
		want.Log.SecretQueryParams = []string{"email"}
		want.Log.SlowRequestThreshold = config.TimeDuration(2 * time.Second)
		want.CORS.AllowOrigin = "https://staging.vahair.studio"
		require.Equal(t, want, cfg)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			data    string
			wantErr string
		}{
			{"empty address", "server:\n  address: \"\"\n", "server.address: must not be empty"},
			{"negative timeout", "server:\n  timeouts:\n    idle: -1s\n", "server.timeouts.idle: must not be negative"},
			{"bad body size", "server:\n  limits:\n    maxBodySize: lots\n", "server.limits.maxBodySize"},
			{"empty origin", "server:\n  cors:\n    allowOrigin: \"\"\n", "server.cors.allowOrigin: must not be empty"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				require.ErrorContains(t, loadTestConfig(t, tt.data, NewConfig()), tt.wantErr)
			})
		}
	})
}

func TestRateLimitConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewRateLimitConfig()
		require.NoError(t, loadTestConfig(t, "", cfg))
		require.Equal(t, NewDefaultRateLimitConfig(), cfg)
		require.Equal(t, ratelimit.Rate{Count: 120, Duration: time.Minute}, cfg.Rate())
	})

	t.Run("yaml config", func(t *testing.T) {
		cfg := NewRateLimitConfig()
		require.NoError(t, loadTestConfig(t, `
rateLimit:
  limit: 10
  window: 10s
  excludedClients: ["10.0.*", "127.0.0.1"]
  dryRun: true
`, cfg))
		require.Equal(t, ratelimit.Rate{Count: 10, Duration: 10 * time.Second}, cfg.Rate())
		require.Equal(t, []string{"10.0.*", "127.0.0.1"}, cfg.ExcludedClients)
		require.True(t, cfg.DryRun)
	})

	t.Run("errors", func(t *testing.T) {
		require.EqualError(t, loadTestConfig(t, "rateLimit:\n  limit: 0\n", NewRateLimitConfig()),
			"rateLimit.limit: must be positive")
		require.EqualError(t, loadTestConfig(t, "rateLimit:\n  window: 500ms\n", NewRateLimitConfig()),
			"rateLimit.window: must be at least 1s")
	})
}
