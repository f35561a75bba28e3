package spotify

import (
	"strings"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// mapTrackToDomain flattens the artist list into a display string and picks
// the largest album cover.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	names := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		names = append(names, a.Name)
	}

	t := domain.Track{
		SongID:      st.ID,
		Artists:     strings.Join(names, ", "),
		Title:       st.Name,
		ReleaseDate: st.Album.ReleaseDate,
		CoverURL:    firstImage(st.Album.Images),
	}
	if st.PreviewURL != nil {
		t.PreviewURL = *st.PreviewURL
	}
	return t
}

func mapArtistToDomain(sa spotifyArtist) domain.CatalogArtist {
	genres := sa.Genres
	if genres == nil {
		genres = []string{}
	}
	return domain.CatalogArtist{
		Name:           sa.Name,
		ImageURL:       firstImage(sa.Images),
		Popularity:     sa.Popularity,
		FollowersCount: sa.Followers.Total,
		Genres:         genres,
	}
}

// Spotify lists images widest first.
func firstImage(images []spotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
