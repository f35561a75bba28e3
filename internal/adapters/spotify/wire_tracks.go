package spotify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

const searchLimit = 5

// FindTrackID searches by title and artist and returns the best scoring hit.
// Hits scoring below searchMatchThreshold are rejected.
func (c *Client) FindTrackID(ctx context.Context, artist, title string) (string, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("track:%s artist:%s", queryTerm(title), queryTerm(artist)))
	query.Set("type", "track")
	query.Set("limit", fmt.Sprint(searchLimit))
	query.Set("market", c.market)

	var body trackSearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+query.Encode(), "tracks", &body); err != nil {
		return "", fmt.Errorf("spotify adapter: track search %q by %q: %w", title, artist, err)
	}

	items := body.Tracks.Items
	if len(items) > searchLimit {
		items = items[:searchLimit]
	}

	bestScore := 0.0
	bestIndex := -1
	for i, candidate := range items {
		candidateArtist := joinArtistNames(candidate)
		score := ScoreResult(artist, title, candidateArtist, candidate.Name)
		c.logger.Debug("search candidate", "artist", candidateArtist, "title", candidate.Name, "score", score)
		if score >= searchMatchThreshold && score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex == -1 {
		return "", fmt.Errorf("spotify adapter: no confident match for %q by %q: %w", title, artist, domain.ErrNotFound)
	}
	return items[bestIndex].ID, nil
}

func (c *Client) GetTrack(ctx context.Context, id string) (domain.Track, error) {
	u := fmt.Sprintf("%s/tracks/%s?%s", c.baseURL, url.PathEscape(id), url.Values{"market": {c.market}}.Encode())

	var body spotifyTrack
	if err := c.getJSON(ctx, u, "id", &body); err != nil {
		return domain.Track{}, fmt.Errorf("spotify adapter: track %s: %w", id, err)
	}
	return mapTrackToDomain(body), nil
}
