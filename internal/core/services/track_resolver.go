package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/melon/internal/core/domain"
	"github.com/ewilliams-labs/melon/internal/core/ports"
)

// TrackResolver serves track bundles, scraping details and lyrics on first request.
type TrackResolver struct {
	metadata ports.MetadataProvider
	catalog  ports.CatalogProvider
	scraper  ports.DetailScraper
	repo     ports.TrackRepository
	logger   hclog.Logger
}

// NewTrackResolver constructs a TrackResolver.
func NewTrackResolver(metadata ports.MetadataProvider, catalog ports.CatalogProvider, scraper ports.DetailScraper, repo ports.TrackRepository, logger hclog.Logger) *TrackResolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &TrackResolver{
		metadata: metadata,
		catalog:  catalog,
		scraper:  scraper,
		repo:     repo,
		logger:   logger.Named("tracks"),
	}
}

// ResolveTrack returns the stored bundle for songID, filling in missing
// details and lyrics from the providers. The track itself must already exist.
func (r *TrackResolver) ResolveTrack(ctx context.Context, songID string) (domain.TrackBundle, error) {
	track, err := r.repo.GetTrack(ctx, songID)
	if err != nil {
		return domain.TrackBundle{}, fmt.Errorf("service: failed to load track %s: %w", songID, err)
	}

	bundle := domain.TrackBundle{Track: track}

	detail, err := r.repo.GetTrackDetail(ctx, songID)
	switch {
	case err == nil:
		bundle.Details = &detail
	case !errors.Is(err, domain.ErrNotFound):
		return domain.TrackBundle{}, fmt.Errorf("service: failed to load details for %s: %w", songID, err)
	}

	lyrics, err := r.repo.GetLyrics(ctx, songID)
	switch {
	case err == nil:
		bundle.Lyrics = &lyrics
	case !errors.Is(err, domain.ErrNotFound):
		return domain.TrackBundle{}, fmt.Errorf("service: failed to load lyrics for %s: %w", songID, err)
	}

	if bundle.Details != nil && bundle.Lyrics != nil {
		return bundle, nil
	}

	if !track.Searchable() {
		return domain.TrackBundle{}, fmt.Errorf("service: track %s lacks artist or title: %w", songID, domain.ErrIncompleteRecord)
	}

	fetched := r.enrich(ctx, track, bundle.Details == nil, bundle.Lyrics == nil)

	writeCtx := context.WithoutCancel(ctx)
	if fetched.Details != nil {
		bundle.Details = fetched.Details
		if err := r.repo.UpsertTrackDetail(writeCtx, songID, *fetched.Details); err != nil {
			r.logger.Warn("failed to save track details", "song_id", songID, "error", err)
		}
	}
	if fetched.Lyrics != nil {
		bundle.Lyrics = fetched.Lyrics
		if err := r.repo.UpsertLyrics(writeCtx, songID, *fetched.Lyrics); err != nil {
			r.logger.Warn("failed to save lyrics", "song_id", songID, "error", err)
		}
	}

	return bundle, nil
}

// ResolveTrackEphemeral fetches a bundle for artist and title without
// reading or writing the store.
func (r *TrackResolver) ResolveTrackEphemeral(ctx context.Context, artist, title string) (domain.TrackBundle, error) {
	if strings.TrimSpace(artist) == "" || strings.TrimSpace(title) == "" {
		return domain.TrackBundle{}, fmt.Errorf("service: artist and title are required: %w", domain.ErrIncompleteRecord)
	}

	songID, err := r.catalog.FindTrackID(ctx, artist, title)
	if err != nil {
		return domain.TrackBundle{}, fmt.Errorf("service: failed to find track %q by %q: %w", title, artist, err)
	}
	track, err := r.catalog.GetTrack(ctx, songID)
	if err != nil {
		return domain.TrackBundle{}, fmt.Errorf("service: failed to fetch track %s: %w", songID, err)
	}

	fetched := r.enrich(ctx, track, true, true)
	fetched.Track = track
	return fetched, nil
}

// CorrectLyrics replaces the stored lyrics of an existing track, creating
// them when none were scraped yet.
func (r *TrackResolver) CorrectLyrics(ctx context.Context, songID string, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("service: lyrics text cannot be empty: %w", domain.ErrIncompleteRecord)
	}
	if _, err := r.repo.GetTrack(ctx, songID); err != nil {
		return fmt.Errorf("service: failed to load track %s: %w", songID, err)
	}
	err := r.repo.UpdateLyrics(ctx, songID, text)
	if errors.Is(err, domain.ErrNotFound) {
		err = r.repo.UpsertLyrics(ctx, songID, text)
	}
	if err != nil {
		return fmt.Errorf("service: failed to save lyrics for %s: %w", songID, err)
	}
	return nil
}

// enrich fetches the requested secondary data. Provider failures are
// downgraded to nil fields. The calls outlive a cancelled caller.
func (r *TrackResolver) enrich(ctx context.Context, track domain.Track, wantDetails, wantLyrics bool) domain.TrackBundle {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	defer cancel()

	var out domain.TrackBundle
	var g errgroup.Group

	if wantDetails {
		g.Go(func() error {
			detail, err := r.scraper.GetTrackDetail(ctx, track.SongID)
			if err != nil {
				r.logger.Warn("track details unavailable", "song_id", track.SongID, "error", err)
				return nil
			}
			out.Details = &detail
			return nil
		})
	}

	if wantLyrics {
		g.Go(func() error {
			text, err := r.lyrics(ctx, track)
			if err != nil {
				r.logger.Warn("lyrics unavailable", "song_id", track.SongID, "error", err)
				return nil
			}
			out.Lyrics = text
			return nil
		})
	}

	_ = g.Wait()
	return out
}

func (r *TrackResolver) lyrics(ctx context.Context, track domain.Track) (*string, error) {
	pageURL, err := r.metadata.FindSongURL(ctx, track.Artists, track.Title)
	if err != nil {
		return nil, err
	}
	if pageURL == "" {
		return nil, nil
	}

	text, err := r.metadata.FetchLyrics(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return &text, nil
}
