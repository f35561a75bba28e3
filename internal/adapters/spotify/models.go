package spotify

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyArtist represents the Spotify API response for an artist.
type spotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Popularity int            `json:"popularity"`
	Images     []spotifyImage `json:"images"`
	Followers  struct {
		Total int `json:"total"`
	} `json:"followers"`
}

// spotifyTrack represents the Spotify API response for a track.
type spotifyTrack struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Artists    []spotifyArtistRef `json:"artists"`
	PreviewURL *string            `json:"preview_url"`
	Album      struct {
		Name        string         `json:"name"`
		ReleaseDate string         `json:"release_date"`
		Images      []spotifyImage `json:"images"`
	} `json:"album"`
}

type artistSearchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

type trackSearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type topTracksResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}
