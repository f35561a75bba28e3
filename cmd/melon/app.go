package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/ewilliams-labs/melon/internal/adapters/genius"
	"github.com/ewilliams-labs/melon/internal/adapters/ollama"
	"github.com/ewilliams-labs/melon/internal/adapters/redisstore"
	"github.com/ewilliams-labs/melon/internal/adapters/rest"
	"github.com/ewilliams-labs/melon/internal/adapters/spotify"
	"github.com/ewilliams-labs/melon/internal/adapters/sqlite"
	"github.com/ewilliams-labs/melon/internal/adapters/tunebat"
	"github.com/ewilliams-labs/melon/internal/config"
	"github.com/ewilliams-labs/melon/internal/core/ports"
	"github.com/ewilliams-labs/melon/internal/core/services"
)

// app holds the wired adapters and services.
type app struct {
	store   *sqlite.Adapter
	rdb     *redis.Client
	genius  *genius.Client
	limiter ports.RateLimiter

	artists  *services.ArtistResolver
	tracks   *services.TrackResolver
	analyzer *services.Analyzer
	library  *services.Library

	logger hclog.Logger
}

func newApp(ctx context.Context, cfg config.Config, logger hclog.Logger) (*app, error) {
	store, err := sqlite.NewAdapter(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	a := &app{store: store, logger: logger}

	var (
		ids   ports.ArtistIDCache
		cache ports.AnalysisCache
	)
	if cfg.Redis.Addr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("shared store unreachable, continuing without it until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()

		a.limiter = redisstore.NewRateLimiter(a.rdb)
		ids = redisstore.NewArtistIDCache(a.rdb, cfg.Cache.ArtistIDTTL, logger)
		cache = redisstore.NewResultCache(a.rdb, cfg.Cache.AnalysisTTL, logger)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	a.genius = genius.NewClient(httpClient, cfg.Genius.BaseURL, cfg.Genius.AccessToken, logger)
	catalog := spotify.NewClient(spotify.Config{
		BaseURL:      cfg.Spotify.APIURL,
		TokenURL:     cfg.Spotify.TokenURL,
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
		AccessToken:  cfg.Spotify.AccessToken,
		Market:       cfg.Spotify.Market,
		MaxRetries:   cfg.Spotify.MaxRetries,
		RetryBackoff: cfg.Spotify.RetryBackoff,
		HTTPClient:   httpClient,
	}, logger)
	scraper := tunebat.NewScraper(tunebat.Config{
		BaseURL:  cfg.Tunebat.BaseURL,
		MinDelay: cfg.Tunebat.MinDelay,
		MaxDelay: cfg.Tunebat.MaxDelay,
	}, logger)
	llm := ollama.NewClient(cfg.Ollama.Host, cfg.Ollama.Model, nil, logger)

	a.artists = services.NewArtistResolver(a.genius, catalog, store, ids, logger)
	a.tracks = services.NewTrackResolver(a.genius, catalog, scraper, store, logger)
	a.analyzer = services.NewAnalyzer(llm, cache)
	a.library = services.NewLibrary(store)

	return a, nil
}

func (a *app) handler(cfg config.Config) *rest.Handler {
	return rest.NewHandler(rest.Services{
		Artists:  a.artists,
		Tracks:   a.tracks,
		Analysis: a.analyzer,
		Library:  a.library,
	}, a.limiter, rest.RateLimit{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
	}, a.logger)
}

func (a *app) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
