package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// FindArtistID searches artists by name. An exact case-insensitive name
// match wins over Spotify's ranking; otherwise the top hit is used.
func (c *Client) FindArtistID(ctx context.Context, name string) (string, error) {
	query := url.Values{}
	query.Set("q", name)
	query.Set("type", "artist")
	query.Set("limit", "5")
	query.Set("market", c.market)

	var body artistSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+query.Encode(), "artists", &body); err != nil {
		return "", fmt.Errorf("spotify adapter: artist search %q: %w", name, err)
	}

	items := body.Artists.Items
	if len(items) == 0 {
		return "", fmt.Errorf("spotify adapter: no artist found with name %q: %w", name, domain.ErrNotFound)
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, a := range items {
		if strings.ToLower(strings.TrimSpace(a.Name)) == want {
			return a.ID, nil
		}
	}
	return items[0].ID, nil
}

func (c *Client) GetArtist(ctx context.Context, id string) (domain.CatalogArtist, error) {
	var body spotifyArtist
	if err := c.getJSON(ctx, fmt.Sprintf("%s/artists/%s", c.baseURL, url.PathEscape(id)), "id", &body); err != nil {
		return domain.CatalogArtist{}, fmt.Errorf("spotify adapter: artist %s: %w", id, err)
	}
	return mapArtistToDomain(body), nil
}

// GetTopTracks returns up to ten tracks in Spotify's ranking order.
func (c *Client) GetTopTracks(ctx context.Context, id string) ([]domain.Track, error) {
	u := fmt.Sprintf("%s/artists/%s/top-tracks?%s", c.baseURL, url.PathEscape(id), url.Values{"market": {c.market}}.Encode())

	var body topTracksResponse
	if err := c.getJSON(ctx, u, "tracks", &body); err != nil {
		return nil, fmt.Errorf("spotify adapter: top tracks for %s: %w", id, err)
	}

	items := body.Tracks
	if len(items) > topTracksLimit {
		items = items[:topTracksLimit]
	}

	tracks := make([]domain.Track, 0, len(items))
	for _, st := range items {
		if st.ID == "" {
			continue
		}
		tracks = append(tracks, mapTrackToDomain(st))
	}
	return tracks, nil
}
