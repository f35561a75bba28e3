package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// tokenSource holds the current bearer token and renews it on demand.
// Renewal is explicit so that each call refreshes at most once.
type tokenSource struct {
	mu sync.Mutex

	httpClient   *http.Client
	refresh      oauth2.Config
	credentials  clientcredentials.Config
	refreshToken string
	access       string
	logger       hclog.Logger
}

func newTokenSource(httpClient *http.Client, tokenURL, clientID, clientSecret, refreshToken, accessToken string, logger hclog.Logger) *tokenSource {
	return &tokenSource{
		httpClient: httpClient,
		refresh: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		credentials: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		refreshToken: refreshToken,
		access:       accessToken,
		logger:       logger,
	}
}

// current returns the cached access token, fetching one if none is held yet.
func (t *tokenSource) current(ctx context.Context) (string, error) {
	t.mu.Lock()
	token := t.access
	t.mu.Unlock()
	if token != "" {
		return token, nil
	}
	return t.renew(ctx, "")
}

// renew replaces stale with a fresh token. When another caller already
// replaced it, that token is returned without a second exchange.
func (t *tokenSource) renew(ctx context.Context, stale string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.access != "" && t.access != stale {
		return t.access, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, t.httpClient)

	var (
		tok *oauth2.Token
		err error
	)
	if t.refreshToken != "" {
		tok, err = t.refresh.TokenSource(ctx, &oauth2.Token{RefreshToken: t.refreshToken}).Token()
	} else {
		tok, err = t.credentials.Token(ctx)
	}
	if err != nil {
		status := 0
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			status = re.Response.StatusCode
		}
		return "", fmt.Errorf("spotify adapter: token refresh failed: %v: %w", err, &domain.ProviderError{Provider: "spotify", Status: status})
	}

	if tok.RefreshToken != "" && tok.RefreshToken != t.refreshToken {
		t.refreshToken = tok.RefreshToken
	}
	t.access = tok.AccessToken
	t.logger.Debug("access token refreshed", "expiry", tok.Expiry)
	return t.access, nil
}
