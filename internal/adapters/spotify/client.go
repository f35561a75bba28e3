// Package spotify implements the catalog provider against the Spotify Web API.
package spotify

import (
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/melon/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultMarket   = "US"

	topTracksLimit = 10
)

// Config holds the connection and credential settings of a Client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	// RefreshToken is exchanged for access tokens. Without it the client
	// falls back to the client-credentials grant.
	RefreshToken string
	// AccessToken is an optional initial token.
	AccessToken  string
	Market       string
	MaxRetries   int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	market      string
	auth        *tokenSource
	maxRetries  int
	baseBackoff time.Duration
	logger      hclog.Logger
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient constructs a new Spotify client.
func NewClient(cfg Config, logger hclog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	market := cfg.Market
	if market == "" {
		market = DefaultMarket
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("spotify")

	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		market:      market,
		auth:        newTokenSource(httpClient, tokenURL, cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken, cfg.AccessToken, logger),
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.RetryBackoff,
		logger:      logger,
	}
}
