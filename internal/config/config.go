// Package config loads melon's settings from defaults, an optional YAML
// file and MELON_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "MELON"

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Genius    GeniusConfig    `mapstructure:"genius"`
	Spotify   SpotifyConfig   `mapstructure:"spotify"`
	Tunebat   TunebatConfig   `mapstructure:"tunebat"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig points at the shared store. An empty Addr disables the
// limiter and both caches.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type GeniusConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
}

type SpotifyConfig struct {
	APIURL       string        `mapstructure:"api_url"`
	TokenURL     string        `mapstructure:"token_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RefreshToken string        `mapstructure:"refresh_token"`
	AccessToken  string        `mapstructure:"access_token"`
	Market       string        `mapstructure:"market"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type TunebatConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
}

type OllamaConfig struct {
	Host  string `mapstructure:"host"`
	Model string `mapstructure:"model"`
}

type CacheConfig struct {
	AnalysisTTL time.Duration `mapstructure:"analysis_ttl"`
	ArtistIDTTL time.Duration `mapstructure:"artist_id_ttl"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers every key so that environment overrides are seen
// by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.path", "melon.db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("genius.base_url", "https://api.genius.com")
	v.SetDefault("genius.access_token", "")

	v.SetDefault("spotify.api_url", "https://api.spotify.com/v1")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.refresh_token", "")
	v.SetDefault("spotify.access_token", "")
	v.SetDefault("spotify.market", "US")
	v.SetDefault("spotify.max_retries", 3)
	v.SetDefault("spotify.retry_backoff", 500*time.Millisecond)

	v.SetDefault("tunebat.base_url", "https://tunebat.com")
	v.SetDefault("tunebat.min_delay", time.Second)
	v.SetDefault("tunebat.max_delay", 6*time.Second)

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.1:8b")

	v.SetDefault("cache.analysis_ttl", time.Hour)
	v.SetDefault("cache.artist_id_ttl", time.Hour)

	v.SetDefault("ratelimit.max_requests", 30)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Load reads configuration into v. configFile may be empty.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Validate fails when credentials the providers cannot work without are missing.
func (c Config) Validate() error {
	var errs []error
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("spotify.client_id and spotify.client_secret are required"))
	}
	if c.Genius.AccessToken == "" {
		errs = append(errs, errors.New("genius.access_token is required"))
	}
	if c.Tunebat.MaxDelay < c.Tunebat.MinDelay {
		errs = append(errs, fmt.Errorf("tunebat.max_delay %s is below tunebat.min_delay %s", c.Tunebat.MaxDelay, c.Tunebat.MinDelay))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
