package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "US", cfg.Spotify.Market)
	assert.Equal(t, 3, cfg.Spotify.MaxRetries)
	assert.Equal(t, time.Hour, cfg.Cache.AnalysisTTL)
	assert.Equal(t, time.Hour, cfg.Cache.ArtistIDTTL)
	assert.Equal(t, time.Second, cfg.Tunebat.MinDelay)
	assert.Equal(t, 6*time.Second, cfg.Tunebat.MaxDelay)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melon.yaml")
	yaml := `
http:
  addr: ":9090"
spotify:
  client_id: file-id
  client_secret: file-secret
  retry_backoff: 250ms
ratelimit:
  max_requests: 5
  window: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("MELON_SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("MELON_GENIUS_ACCESS_TOKEN", "env-token")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "env-id", cfg.Spotify.ClientID, "env beats file")
	assert.Equal(t, "file-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "env-token", cfg.Genius.AccessToken)
	assert.Equal(t, 250*time.Millisecond, cfg.Spotify.RetryBackoff)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)
		cfg.Spotify.ClientID = "id"
		cfg.Spotify.ClientSecret = "secret"
		cfg.Genius.AccessToken = "token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing spotify secret", mutate: func(c *Config) { c.Spotify.ClientSecret = "" }, wantErr: "spotify.client_id"},
		{name: "missing genius token", mutate: func(c *Config) { c.Genius.AccessToken = "" }, wantErr: "genius.access_token"},
		{name: "inverted delays", mutate: func(c *Config) { c.Tunebat.MaxDelay = 0 }, wantErr: "tunebat.max_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
