package main

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/melon/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.LogConfig
		level hclog.Level
	}{
		{name: "debug", cfg: config.LogConfig{Level: "debug"}, level: hclog.Debug},
		{name: "unknown falls back to info", cfg: config.LogConfig{Level: "loud"}, level: hclog.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger(tt.cfg, &bytes.Buffer{})
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var out bytes.Buffer
	newLogger(config.LogConfig{Level: "info", JSON: true}, &out).Info("hello", "k", "v")
	assert.Contains(t, out.String(), `"@message":"hello"`)
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printJSON(&out, []string{"a"}))
	assert.Equal(t, "[\n  \"a\"\n]\n", out.String())
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "artist", "track", "preview", "songs"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
