package ports

import (
	"context"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// MetadataProvider resolves artist identity, song pages and lyrics text.
type MetadataProvider interface {
	// FindArtistID returns the provider id of the artist whose name matches
	// exactly, ignoring case. Multi-artist entries never match.
	FindArtistID(ctx context.Context, name string) (int64, error)
	GetArtist(ctx context.Context, id int64) (domain.MetadataArtist, error)
	// FindSongURL returns the canonical lyrics page, or "" when none matches.
	FindSongURL(ctx context.Context, artist, title string) (string, error)
	FetchLyrics(ctx context.Context, pageURL string) (string, error)
}

// CatalogProvider is the music catalog of record for artists and tracks.
type CatalogProvider interface {
	FindArtistID(ctx context.Context, name string) (string, error)
	GetArtist(ctx context.Context, id string) (domain.CatalogArtist, error)
	GetTopTracks(ctx context.Context, id string) ([]domain.Track, error)
	FindTrackID(ctx context.Context, artist, title string) (string, error)
	GetTrack(ctx context.Context, id string) (domain.Track, error)
}

// DetailScraper looks up per-track audio features.
type DetailScraper interface {
	GetTrackDetail(ctx context.Context, songID string) (domain.TrackDetail, error)
}

// TextAnalyzer is the language model collaborator.
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
	Chat(ctx context.Context, message string, history []domain.ChatMessage) (domain.ChatReply, error)
}
