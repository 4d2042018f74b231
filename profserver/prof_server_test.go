/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package profserver

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/config"
	"github.com/vahairstudio/site-api/log/logtest"
	"github.com/vahairstudio/site-api/testutil"
)

func TestProfServer_Start(t *testing.T) {
	profServer := New(&Config{Address: "127.0.0.1:0"}, logtest.NewRecorder())
	fatalErr := make(chan error, 1)
	go profServer.Start(fatalErr)
	require.Eventually(t, func() bool { return profServer.Addr() != "" }, 3*time.Second, 10*time.Millisecond)
	defer func() {
		require.NoError(t, profServer.Stop(false))
		testutil.RequireNoErrorInChannel(t, fatalErr)
	}()

	resp, err := http.Get("http://" + profServer.Addr() + "/debug/pprof/")
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, respBody)
}

func TestProfServer_StopWithoutStart(t *testing.T) {
	require.NoError(t, New(NewDefaultConfig(), logtest.NewRecorder()).Stop(true))
}

func TestConfig(t *testing.T) {
	load := func(data string) (*Config, error) {
		cfg := NewConfig()
		err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString(data), config.DataTypeYAML, cfg)
		return cfg, err
	}

	cfg, err := load("")
	require.NoError(t, err)
	require.Equal(t, NewDefaultConfig(), cfg)

	cfg, err = load("profServer:\n  enabled: true\n  address: 127.0.0.1:7070\n")
	require.NoError(t, err)
	require.True(t, cfg.Enabled)
	require.Equal(t, "127.0.0.1:7070", cfg.Address)

	_, err = load("profServer:\n  address: \"\"\n")
	require.EqualError(t, err, "profServer.address: must not be empty")
}
