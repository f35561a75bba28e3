package ports

import (
	"context"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// ArtistRepository stores artist snapshots and their track batches.
// Get methods return domain.ErrNotFound for missing rows.
type ArtistRepository interface {
	GetArtist(ctx context.Context, id int64) (domain.ArtistRecord, error)
	UpsertArtist(ctx context.Context, id int64, snapshot []byte) error
	GetTracks(ctx context.Context, artistID int64) ([]domain.Track, error)
	// UpsertTracks inserts the tracks not yet stored and reports how many
	// were new. Existing rows are left untouched.
	UpsertTracks(ctx context.Context, artistID int64, tracks []domain.Track) (int, error)
}

// TrackRepository stores tracks with their details and lyrics.
type TrackRepository interface {
	GetTrack(ctx context.Context, songID string) (domain.Track, error)
	GetTrackDetail(ctx context.Context, songID string) (domain.TrackDetail, error)
	UpsertTrackDetail(ctx context.Context, songID string, detail domain.TrackDetail) error
	GetLyrics(ctx context.Context, songID string) (string, error)
	UpsertLyrics(ctx context.Context, songID string, text string) error
	UpdateLyrics(ctx context.Context, songID string, text string) error
}

// LikeRepository stores user like relations.
type LikeRepository interface {
	LikeArtist(ctx context.Context, userID int64, artistID int64) error
	LikeTrack(ctx context.Context, userID int64, songID string) error
	LikedTracks(ctx context.Context, userID int64) ([]domain.Track, error)
}
