package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/melon/internal/core/domain"
	"github.com/ewilliams-labs/melon/internal/core/ports"
)

// fetchTimeout bounds provider work that runs detached from the caller.
const fetchTimeout = 2 * time.Minute

// ArtistResolver serves artist profiles from the store and falls back to
// both providers when the stored record is missing or incomplete.
type ArtistResolver struct {
	metadata ports.MetadataProvider
	catalog  ports.CatalogProvider
	repo     ports.ArtistRepository
	ids      ports.ArtistIDCache
	logger   hclog.Logger
}

// NewArtistResolver constructs an ArtistResolver. ids may be nil.
func NewArtistResolver(metadata ports.MetadataProvider, catalog ports.CatalogProvider, repo ports.ArtistRepository, ids ports.ArtistIDCache, logger hclog.Logger) *ArtistResolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ArtistResolver{
		metadata: metadata,
		catalog:  catalog,
		repo:     repo,
		ids:      ids,
		logger:   logger.Named("artists"),
	}
}

// ResolveArtist returns the profile of the named artist.
func (r *ArtistResolver) ResolveArtist(ctx context.Context, name string) (domain.ArtistProfile, error) {
	artistID, err := r.artistID(ctx, name)
	if err != nil {
		return domain.ArtistProfile{}, err
	}

	profile, ok, err := r.fromStore(ctx, artistID)
	if err != nil {
		return domain.ArtistProfile{}, err
	}
	if ok {
		return profile, nil
	}

	return r.fetch(ctx, name, artistID)
}

func (r *ArtistResolver) artistID(ctx context.Context, name string) (int64, error) {
	if r.ids != nil {
		if id, ok := r.ids.Get(ctx, name); ok {
			return id, nil
		}
	}

	id, err := r.metadata.FindArtistID(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("service: failed to identify artist %q: %w", name, err)
	}

	if r.ids != nil {
		r.ids.Set(ctx, name, id)
	}
	return id, nil
}

// fromStore reports ok only for a stored artist that already has tracks.
// An artist row without tracks is what an interrupted write leaves behind.
func (r *ArtistResolver) fromStore(ctx context.Context, artistID int64) (domain.ArtistProfile, bool, error) {
	record, err := r.repo.GetArtist(ctx, artistID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ArtistProfile{}, false, nil
	}
	if err != nil {
		return domain.ArtistProfile{}, false, fmt.Errorf("service: failed to load artist %d: %w", artistID, err)
	}

	tracks, err := r.repo.GetTracks(ctx, artistID)
	if err != nil {
		return domain.ArtistProfile{}, false, fmt.Errorf("service: failed to load tracks for artist %d: %w", artistID, err)
	}
	if len(tracks) == 0 {
		r.logger.Debug("stored artist has no tracks, refetching", "artist_id", artistID)
		return domain.ArtistProfile{}, false, nil
	}

	snapshot, err := domain.DecodeArtistSnapshot(record.Snapshot)
	if err != nil {
		r.logger.Warn("discarding unreadable artist snapshot", "artist_id", artistID, "error", err)
		return domain.ArtistProfile{}, false, nil
	}

	return domain.NewArtistProfile(snapshot, tracks), true, nil
}

// fetch runs detached from the caller: an abandoned request still completes
// and stores the merge, bounded by fetchTimeout.
func (r *ArtistResolver) fetch(ctx context.Context, name string, artistID int64) (domain.ArtistProfile, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	defer cancel()

	var (
		catalogID     string
		catalogArtist domain.CatalogArtist
		metaArtist    domain.MetadataArtist
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := r.catalog.FindArtistID(gctx, name)
		if err != nil {
			return fmt.Errorf("service: failed to find catalog artist %q: %w", name, err)
		}
		a, err := r.catalog.GetArtist(gctx, id)
		if err != nil {
			return fmt.Errorf("service: failed to fetch catalog artist %s: %w", id, err)
		}
		catalogID, catalogArtist = id, a
		return nil
	})
	g.Go(func() error {
		a, err := r.metadata.GetArtist(gctx, artistID)
		if err != nil {
			return fmt.Errorf("service: failed to fetch metadata artist %d: %w", artistID, err)
		}
		metaArtist = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ArtistProfile{}, err
	}

	if metaArtist.HasDefaultAvatar() {
		return domain.ArtistProfile{}, fmt.Errorf("service: artist %q has a placeholder avatar: %w", name, domain.ErrAmbiguousMatch)
	}

	tracks, err := r.catalog.GetTopTracks(ctx, catalogID)
	if err != nil {
		return domain.ArtistProfile{}, fmt.Errorf("service: failed to fetch top tracks for %q: %w", name, err)
	}
	for i := range tracks {
		tracks[i].ArtistID = artistID
	}

	snapshot := domain.MergeArtist(metaArtist, catalogArtist)
	r.persist(context.WithoutCancel(ctx), artistID, snapshot, tracks)

	return domain.NewArtistProfile(snapshot, tracks), nil
}

// persist writes the snapshot before its tracks. Failures are logged only;
// the fetched profile is still returned.
func (r *ArtistResolver) persist(ctx context.Context, artistID int64, snapshot domain.ArtistSnapshot, tracks []domain.Track) {
	encoded, err := snapshot.Encode()
	if err != nil {
		r.logger.Warn("failed to encode artist snapshot", "artist_id", artistID, "error", err)
		return
	}
	if err := r.repo.UpsertArtist(ctx, artistID, encoded); err != nil {
		r.logger.Warn("failed to save artist", "artist_id", artistID, "error", err)
		return
	}

	inserted, err := r.repo.UpsertTracks(ctx, artistID, tracks)
	if err != nil {
		r.logger.Warn("failed to save tracks", "artist_id", artistID, "error", err)
		return
	}
	r.logger.Debug("saved artist", "artist_id", artistID, "tracks", len(tracks), "new_tracks", inserted)
}
