package services

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/melon/internal/core/domain"
	"github.com/ewilliams-labs/melon/internal/core/ports"
)

// Library manages the artists and tracks a user liked.
type Library struct {
	repo ports.LikeRepository
}

// NewLibrary constructs a Library.
func NewLibrary(repo ports.LikeRepository) *Library {
	return &Library{repo: repo}
}

// LikeArtist records that userID likes artistID. Repeating it is a no-op.
func (l *Library) LikeArtist(ctx context.Context, userID, artistID int64) error {
	if err := l.repo.LikeArtist(ctx, userID, artistID); err != nil {
		return fmt.Errorf("service: failed to like artist %d: %w", artistID, err)
	}
	return nil
}

// LikeTrack records that userID likes songID. Repeating it is a no-op.
func (l *Library) LikeTrack(ctx context.Context, userID int64, songID string) error {
	if err := l.repo.LikeTrack(ctx, userID, songID); err != nil {
		return fmt.Errorf("service: failed to like track %s: %w", songID, err)
	}
	return nil
}

// LikedTracks lists the tracks userID liked, most recent first.
func (l *Library) LikedTracks(ctx context.Context, userID int64) ([]domain.Track, error) {
	tracks, err := l.repo.LikedTracks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list liked tracks: %w", err)
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks, nil
}
