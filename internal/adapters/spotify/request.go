package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

const maxResponseBytes = 4 << 20

// getJSON performs an authorized GET and decodes the payload into out.
// A 401, or a 200 whose payload lacks requiredKey, triggers exactly one
// token refresh and one retry. A second failure is not retried.
func (c *Client) getJSON(ctx context.Context, u string, requiredKey string, out any) error {
	token, err := c.auth.current(ctx)
	if err != nil {
		return err
	}

	body, status, err := c.fetch(ctx, u, token)
	if err != nil {
		return err
	}

	if authFailed(status, body, requiredKey) {
		c.logger.Warn("access token rejected, refreshing", "url", u, "status", status)
		token, err = c.auth.renew(ctx, token)
		if err != nil {
			return err
		}
		body, status, err = c.fetch(ctx, u, token)
		if err != nil {
			return err
		}
		if authFailed(status, body, requiredKey) {
			return fmt.Errorf("spotify adapter: %s rejected after token refresh: %w", u, &domain.ProviderError{Provider: "spotify", Status: status})
		}
	}

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("spotify adapter: %s: %w", u, domain.ErrNotFound)
	case status != http.StatusOK:
		return fmt.Errorf("spotify adapter: %w", &domain.ProviderError{Provider: "spotify", Status: status})
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("spotify adapter: decode %s: %w", u, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, u string, token string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("spotify adapter: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Debug("request", "url", u)
	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("spotify adapter: read %s: %w", u, err)
	}
	return body, resp.StatusCode, nil
}

func authFailed(status int, body []byte, requiredKey string) bool {
	if status == http.StatusUnauthorized {
		return true
	}
	if status != http.StatusOK || requiredKey == "" {
		return false
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	_, ok := payload[requiredKey]
	return !ok
}
