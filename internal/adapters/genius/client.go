// Package genius implements the metadata provider against the Genius API and
// its public song pages.
package genius

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/melon/internal/core/domain"
	"github.com/ewilliams-labs/melon/internal/core/ports"
)

// DefaultBaseURL is the Genius API root.
const DefaultBaseURL = "https://api.genius.com"

// featureSeparators mark multi-artist entries such as "A & B" or "A, B".
var featureSeparators = []string{",", "&"}

// Client is an HTTP client for the Genius adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     hclog.Logger
}

// compile-time interface assertion
var _ ports.MetadataProvider = (*Client)(nil)

// NewClient constructs a new Genius client.
func NewClient(httpClient *http.Client, baseURL, token string, logger hclog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		logger:     logger.Named("genius"),
	}
}

// FindArtistID prefers an artist hit whose name matches exactly. Failing
// that, it accepts the primary artist of a solo song hit.
func (c *Client) FindArtistID(ctx context.Context, name string) (int64, error) {
	hits, err := c.search(ctx, name)
	if err != nil {
		return 0, err
	}

	want := strings.ToLower(strings.TrimSpace(name))

	for _, h := range hits {
		if h.Type != "artist" {
			continue
		}
		var a searchArtist
		if err := json.Unmarshal(h.Result, &a); err != nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(a.Name)) == want && !isFeature(a.Name) {
			return a.ID, nil
		}
	}

	for _, h := range hits {
		if h.Type != "song" {
			continue
		}
		var s searchSong
		if err := json.Unmarshal(h.Result, &s); err != nil {
			continue
		}
		if len(s.FeaturedArtists) > 0 {
			continue
		}
		primary := strings.TrimSpace(s.PrimaryArtist.Name)
		if strings.ToLower(primary) == want && !isFeature(primary) {
			return s.PrimaryArtist.ID, nil
		}
	}

	return 0, fmt.Errorf("genius adapter: no artist named %q: %w", name, domain.ErrNotFound)
}

func (c *Client) GetArtist(ctx context.Context, id int64) (domain.MetadataArtist, error) {
	var envelope artistResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/artists/%d", c.baseURL, id), &envelope); err != nil {
		return domain.MetadataArtist{}, err
	}
	if envelope.Response.Artist == nil {
		return domain.MetadataArtist{}, fmt.Errorf("genius adapter: artist %d: %w", id, domain.ErrNotFound)
	}
	return *envelope.Response.Artist, nil
}

// FindSongURL returns the page URL of the first song hit for "artist title".
func (c *Client) FindSongURL(ctx context.Context, artist, title string) (string, error) {
	hits, err := c.search(ctx, artist+" "+title)
	if err != nil {
		return "", err
	}
	for _, h := range hits {
		if h.Type != "song" {
			continue
		}
		var s searchSong
		if err := json.Unmarshal(h.Result, &s); err != nil {
			continue
		}
		if s.URL != "" {
			return s.URL, nil
		}
	}
	return "", nil
}

func (c *Client) FetchLyrics(ctx context.Context, pageURL string) (string, error) {
	body, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return ParseLyrics(body)
}

// TrackLinks lists the song page links found on an artist page.
func (c *Client) TrackLinks(ctx context.Context, artistPageURL string) ([]string, error) {
	body, err := c.fetchPage(ctx, artistPageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseTrackLinks(body)
}

func (c *Client) search(ctx context.Context, query string) ([]searchHit, error) {
	u := c.baseURL + "/search?" + url.Values{"q": {query}}.Encode()
	var envelope searchResponse
	if err := c.getJSON(ctx, u, &envelope); err != nil {
		return nil, err
	}
	return envelope.Response.Hits, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("genius adapter: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("request", "url", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("genius adapter: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("genius adapter: decode %s: %w", u, err)
	}
	return nil
}

// fetchPage downloads a public HTML page. The caller closes the body.
func (c *Client) fetchPage(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("genius adapter: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	c.logger.Debug("page request", "url", pageURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genius adapter: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("genius adapter: %s: %w", resp.Request.URL.Path, domain.ErrNotFound)
	default:
		return fmt.Errorf("genius adapter: %w", &domain.ProviderError{Provider: "genius", Status: resp.StatusCode})
	}
}

func isFeature(name string) bool {
	for _, sep := range featureSeparators {
		if strings.Contains(name, sep) {
			return true
		}
	}
	return false
}
