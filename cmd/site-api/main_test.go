/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/internal/version"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.Equal(t, "site-api "+version.Get().String()+"\n", out.String())
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \"\"\n"), 0o600))

	root := newRootCommand(&bytes.Buffer{})
	root.SetArgs([]string{"serve", "--config", path, "--env-prefix", "SITE_API_CMD_TEST"})
	err := root.Execute()
	require.ErrorContains(t, err, "load configuration: server.address: must not be empty")
}

func TestServeCommand_UnknownFlag(t *testing.T) {
	root := newRootCommand(&bytes.Buffer{})
	root.SetArgs([]string{"serve", "--port", "8080"})
	err := root.Execute()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "unknown flag"))
}
