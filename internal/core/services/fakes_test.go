package services

import (
	"context"
	"sync"
	"time"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// --- Fakes ---

type fakeMetadata struct {
	mu sync.Mutex

	artistID    int64
	artistIDErr error
	artist      domain.MetadataArtist
	artistErr   error
	songURL     string
	songURLErr  error
	lyrics      string
	lyricsErr   error

	findArtistCalls int
	getArtistCalls  int
	songURLCalls    int
	lyricsCalls     int
}

func (m *fakeMetadata) FindArtistID(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findArtistCalls++
	return m.artistID, m.artistIDErr
}

func (m *fakeMetadata) GetArtist(ctx context.Context, id int64) (domain.MetadataArtist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getArtistCalls++
	return m.artist, m.artistErr
}

func (m *fakeMetadata) FindSongURL(ctx context.Context, artist, title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.songURLCalls++
	return m.songURL, m.songURLErr
}

func (m *fakeMetadata) FetchLyrics(ctx context.Context, pageURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lyricsCalls++
	return m.lyrics, m.lyricsErr
}

func (m *fakeMetadata) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findArtistCalls + m.getArtistCalls + m.songURLCalls + m.lyricsCalls
}

type fakeCatalog struct {
	mu sync.Mutex

	artistID  string
	artistErr error
	artist    domain.CatalogArtist
	topTracks []domain.Track
	topErr    error
	trackID   string
	trackErr  error
	track     domain.Track

	findArtistCalls int
	getArtistCalls  int
	topTracksCalls  int
	findTrackCalls  int
	getTrackCalls   int

	topTracksDelay time.Duration
}

func (c *fakeCatalog) FindArtistID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findArtistCalls++
	return c.artistID, c.artistErr
}

func (c *fakeCatalog) GetArtist(ctx context.Context, id string) (domain.CatalogArtist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getArtistCalls++
	return c.artist, nil
}

func (c *fakeCatalog) GetTopTracks(ctx context.Context, id string) ([]domain.Track, error) {
	if err := wait(ctx, c.topTracksDelay); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topTracksCalls++
	if c.topErr != nil {
		return nil, c.topErr
	}
	out := make([]domain.Track, len(c.topTracks))
	copy(out, c.topTracks)
	return out, nil
}

func (c *fakeCatalog) FindTrackID(ctx context.Context, artist, title string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findTrackCalls++
	return c.trackID, c.trackErr
}

func (c *fakeCatalog) GetTrack(ctx context.Context, id string) (domain.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getTrackCalls++
	return c.track, nil
}

func (c *fakeCatalog) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findArtistCalls + c.getArtistCalls + c.topTracksCalls + c.findTrackCalls + c.getTrackCalls
}

type fakeScraper struct {
	mu     sync.Mutex
	detail domain.TrackDetail
	err    error
	calls  int
	delay  time.Duration
}

func (s *fakeScraper) GetTrackDetail(ctx context.Context, songID string) (domain.TrackDetail, error) {
	if err := wait(ctx, s.delay); err != nil {
		return domain.TrackDetail{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.detail, s.err
}

// wait sleeps for d unless ctx ends first, like a real network call.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// memoryRepo is an in-memory store with the same conflict semantics as the
// sqlite adapter.
type memoryRepo struct {
	mu sync.Mutex

	artists map[int64][]byte
	tracks  map[string]domain.Track
	details map[string]domain.TrackDetail
	lyrics  map[string]string

	upsertArtistErr error
	upsertLyricsErr error

	artistWrites  int
	trackBatches  int
	detailWrites  int
	lyricsWrites  int
	lyricsUpdates int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		artists: map[int64][]byte{},
		tracks:  map[string]domain.Track{},
		details: map[string]domain.TrackDetail{},
		lyrics:  map[string]string{},
	}
}

func (m *memoryRepo) GetArtist(ctx context.Context, id int64) (domain.ArtistRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.artists[id]
	if !ok {
		return domain.ArtistRecord{}, domain.ErrNotFound
	}
	return domain.ArtistRecord{ID: id, Snapshot: snapshot}, nil
}

func (m *memoryRepo) UpsertArtist(ctx context.Context, id int64, snapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertArtistErr != nil {
		return m.upsertArtistErr
	}
	m.artistWrites++
	m.artists[id] = snapshot
	return nil
}

func (m *memoryRepo) GetTracks(ctx context.Context, artistID int64) ([]domain.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Track
	for _, t := range m.tracks {
		if t.ArtistID == artistID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryRepo) UpsertTracks(ctx context.Context, artistID int64, tracks []domain.Track) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackBatches++
	inserted := 0
	for _, t := range tracks {
		if _, exists := m.tracks[t.SongID]; exists {
			continue
		}
		t.ArtistID = artistID
		m.tracks[t.SongID] = t
		inserted++
	}
	return inserted, nil
}

func (m *memoryRepo) GetTrack(ctx context.Context, songID string) (domain.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[songID]
	if !ok {
		return domain.Track{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *memoryRepo) GetTrackDetail(ctx context.Context, songID string) (domain.TrackDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[songID]
	if !ok {
		return domain.TrackDetail{}, domain.ErrNotFound
	}
	return d, nil
}

func (m *memoryRepo) UpsertTrackDetail(ctx context.Context, songID string, detail domain.TrackDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailWrites++
	m.details[songID] = detail
	return nil
}

func (m *memoryRepo) GetLyrics(ctx context.Context, songID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.lyrics[songID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *memoryRepo) UpsertLyrics(ctx context.Context, songID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertLyricsErr != nil {
		return m.upsertLyricsErr
	}
	m.lyricsWrites++
	m.lyrics[songID] = text
	return nil
}

func (m *memoryRepo) UpdateLyrics(ctx context.Context, songID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lyrics[songID]; !ok {
		return domain.ErrNotFound
	}
	m.lyricsUpdates++
	m.lyrics[songID] = text
	return nil
}

type memoryIDCache struct {
	mu  sync.Mutex
	ids map[string]int64
}

func (c *memoryIDCache) Get(ctx context.Context, name string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[name]
	return id, ok
}

func (c *memoryIDCache) Set(ctx context.Context, name string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ids == nil {
		c.ids = map[string]int64{}
	}
	c.ids[name] = id
}
