package genius

import (
	"encoding/json"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

type searchResponse struct {
	Response struct {
		Hits []searchHit `json:"hits"`
	} `json:"response"`
}

// searchHit keeps Result raw because its shape depends on Type.
type searchHit struct {
	Type   string          `json:"type"`
	Result json.RawMessage `json:"result"`
}

type searchArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type searchSong struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	URL             string         `json:"url"`
	PrimaryArtist   searchArtist   `json:"primary_artist"`
	FeaturedArtists []searchArtist `json:"featured_artists"`
}

type artistResponse struct {
	Response struct {
		Artist *domain.MetadataArtist `json:"artist"`
	} `json:"response"`
}
