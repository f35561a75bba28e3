package domain

import "strings"

// Track is a catalog track owned by an artist. SongID is the catalog
// provider's globally unique id.
type Track struct {
	SongID      string `json:"spotify_song_id"`
	ArtistID    int64  `json:"artist_id,omitempty"`
	Artists     string `json:"artists"` // display names, comma separated
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
}

// Searchable reports whether the track carries the fields needed to look it
// up at other providers.
func (t Track) Searchable() bool {
	return strings.TrimSpace(t.Artists) != "" && strings.TrimSpace(t.Title) != ""
}

// TrackDetail holds scraped audio features. All fields are optional.
type TrackDetail struct {
	Key          string `json:"key,omitempty"`
	BPM          string `json:"bpm,omitempty"`
	Camelot      string `json:"camelot,omitempty"`
	Popularity   string `json:"popularity,omitempty"`
	Energy       string `json:"energy,omitempty"`
	Danceability string `json:"danceability,omitempty"`
	Happiness    string `json:"happiness,omitempty"`
}

// TrackBundle is the combined Track + TrackDetail + Lyrics view.
// Details and Lyrics are nil when unavailable.
type TrackBundle struct {
	Track   Track        `json:"track"`
	Details *TrackDetail `json:"details"`
	Lyrics  *string      `json:"lyrics"`
}
