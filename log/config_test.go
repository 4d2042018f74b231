/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/config"
)

func TestConfig(t *testing.T) {
	load := func(t *testing.T, data string) (*Config, error) {
		t.Helper()
		cfg := NewConfig()
		err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(bytes.NewBufferString(data), config.DataTypeYAML, cfg)
		return cfg, err
	}

	t.Run("defaults", func(t *testing.T) {
		cfg, err := load(t, "")
		require.NoError(t, err)
		require.Equal(t, NewDefaultConfig(), cfg)
	})

	t.Run("custom values", func(t *testing.T) {
		cfg, err := load(t, `
log:
  level: DEBUG
  format: text
  output: file
  file:
    path: /var/log/site-api-{{pid}}.log
    rotation:
      maxSize: 10M
      maxBackups: 3
  masking:
    fields: [email]
`)
		require.NoError(t, err)
		require.Equal(t, LevelDebug, cfg.Level)
		require.Equal(t, FormatText, cfg.Format)
		require.Equal(t, OutputFile, cfg.Output)
		require.Equal(t, uint64(10*1024*1024), cfg.File.Rotation.MaxSize)
		require.Equal(t, 3, cfg.File.Rotation.MaxBackups)
		require.True(t, cfg.Masking.Enabled)
		require.Equal(t, []string{"email"}, cfg.Masking.Fields)
	})

	t.Run("errors", func(t *testing.T) {
		for _, tc := range []struct {
			name string
			data string
			err  string
		}{
			{"unknown level", "log: {level: verbose}", "log.level"},
			{"file output without path", "log: {output: file}", "log.file.path"},
			{"rotation size too small", "log: {file: {rotation: {maxSize: 1K}}}", "log.file.rotation.maxSize"},
			{"no backups", "log: {file: {rotation: {maxBackups: 0}}}", "log.file.rotation.maxBackups"},
		} {
			t.Run(tc.name, func(t *testing.T) {
				_, err := load(t, tc.data)
				require.ErrorContains(t, err, tc.err)
			})
		}
	})
}
