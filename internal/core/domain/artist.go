package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultAvatarPrefix is the metadata provider's placeholder image location.
// Artists carrying it are low-confidence matches.
const DefaultAvatarPrefix = "https://assets.genius.com/images/default_avatar"

// MetadataArtist is the lyrics/metadata provider's view of an artist.
type MetadataArtist struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	AlternateNames []string `json:"alternate_names"`
	InstagramName  string   `json:"instagram_name,omitempty"`
	TwitterName    string   `json:"twitter_name,omitempty"`
	FollowersCount int      `json:"followers_count"`
	HeaderImageURL string   `json:"header_image_url"`
	ImageURL       string   `json:"image_url"`
	URL            string   `json:"url"`
}

// UnmarshalJSON accepts the legacy header_photo/avatar_photo aliases and
// maps them onto the canonical keys.
func (a *MetadataArtist) UnmarshalJSON(data []byte) error {
	type canonical MetadataArtist
	var raw struct {
		canonical
		HeaderPhoto string `json:"header_photo"`
		AvatarPhoto string `json:"avatar_photo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = MetadataArtist(raw.canonical)
	if a.HeaderImageURL == "" {
		a.HeaderImageURL = raw.HeaderPhoto
	}
	if a.ImageURL == "" {
		a.ImageURL = raw.AvatarPhoto
	}
	return nil
}

// HasDefaultAvatar reports whether the artist image is the provider placeholder.
func (a MetadataArtist) HasDefaultAvatar() bool {
	return strings.HasPrefix(a.ImageURL, DefaultAvatarPrefix)
}

// CatalogArtist is the music-catalog provider's view of an artist.
type CatalogArtist struct {
	Name           string   `json:"name"`
	ImageURL       string   `json:"image_url"`
	Popularity     int      `json:"popularity"`
	FollowersCount int      `json:"followers_count"`
	Genres         []string `json:"genres"`
}

// UnmarshalJSON accepts the legacy avatar_photo alias.
func (a *CatalogArtist) UnmarshalJSON(data []byte) error {
	type canonical CatalogArtist
	var raw struct {
		canonical
		AvatarPhoto string `json:"avatar_photo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = CatalogArtist(raw.canonical)
	if a.ImageURL == "" {
		a.ImageURL = raw.AvatarPhoto
	}
	return nil
}

// ArtistSnapshot is the merged record persisted for an artist. It is
// replaced as a whole on every refetch.
type ArtistSnapshot struct {
	Metadata MetadataArtist `json:"genius"`
	Catalog  CatalogArtist  `json:"spotify"`
}

// MergeArtist maps both provider responses onto the canonical snapshot.
func MergeArtist(meta MetadataArtist, catalog CatalogArtist) ArtistSnapshot {
	if meta.AlternateNames == nil {
		meta.AlternateNames = []string{}
	}
	if catalog.Genres == nil {
		catalog.Genres = []string{}
	}
	return ArtistSnapshot{Metadata: meta, Catalog: catalog}
}

// DecodeArtistSnapshot parses a stored snapshot.
func DecodeArtistSnapshot(data []byte) (ArtistSnapshot, error) {
	var s ArtistSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return ArtistSnapshot{}, err
	}
	return s, nil
}

// Encode serializes the snapshot for storage.
func (s ArtistSnapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// ArtistRecord is a stored artist row.
type ArtistRecord struct {
	ID        int64
	Snapshot  []byte
	FetchedAt time.Time
}

// ArtistProfile bundles artist metadata with its top tracks.
type ArtistProfile struct {
	Metadata MetadataArtist `json:"genius"`
	Catalog  CatalogArtist  `json:"spotify"`
	Tracks   []Track        `json:"spotify_tracks"`
}

// NewArtistProfile builds a profile from a snapshot and its tracks.
func NewArtistProfile(s ArtistSnapshot, tracks []Track) ArtistProfile {
	if tracks == nil {
		tracks = []Track{}
	}
	return ArtistProfile{
		Metadata: s.Metadata,
		Catalog:  s.Catalog,
		Tracks:   tracks,
	}
}
