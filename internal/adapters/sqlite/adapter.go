// Package sqlite provides a SQLite-backed implementation of the repository ports.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-sqlite3"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// Adapter implements the artist, track and like repositories for SQLite.
type Adapter struct {
	db     *sql.DB
	now    func() time.Time
	logger hclog.Logger
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string, logger hclog.Logger) (*Adapter, error) {
	db, err := sql.Open("sqlite3", dataSourceName(storagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := newAdapter(db, logger)
	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// dataSourceName enables foreign keys on every connection the driver opens.
func dataSourceName(storagePath string) string {
	sep := "?"
	if strings.Contains(storagePath, "?") {
		sep = "&"
	}
	return storagePath + sep + "_foreign_keys=on"
}

func newAdapter(db *sql.DB, logger hclog.Logger) *Adapter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Adapter{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.Named("sqlite"),
	}
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) GetArtist(ctx context.Context, id int64) (domain.ArtistRecord, error) {
	row := a.db.QueryRowContext(ctx, "SELECT genius_id, snapshot, fetched_at FROM artists WHERE genius_id = ?", id)
	var record domain.ArtistRecord
	if err := row.Scan(&record.ID, &record.Snapshot, &record.FetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ArtistRecord{}, domain.ErrNotFound
		}
		return domain.ArtistRecord{}, fmt.Errorf("failed to load artist: %w", err)
	}
	return record, nil
}

// UpsertArtist replaces the whole snapshot. Snapshots are never patched field by field.
func (a *Adapter) UpsertArtist(ctx context.Context, id int64, snapshot []byte) error {
	query := `
		INSERT INTO artists (genius_id, snapshot, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(genius_id) DO UPDATE SET
			snapshot=excluded.snapshot,
			fetched_at=excluded.fetched_at
	`
	if _, err := a.db.ExecContext(ctx, query, id, snapshot, a.now()); err != nil {
		return fmt.Errorf("failed to save artist %d: %w", id, err)
	}
	return nil
}

func (a *Adapter) GetTracks(ctx context.Context, artistID int64) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT spotify_song_id, artist_id, artists, title, release_date, cover_url, preview_url
		FROM tracks
		WHERE artist_id = ?
		ORDER BY rowid ASC
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	defer rows.Close()

	tracks := []domain.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracks: %w", err)
	}
	return tracks, nil
}

// UpsertTracks inserts the batch in one transaction. Rows whose song id is
// already stored are skipped, never overwritten.
func (a *Adapter) UpsertTracks(ctx context.Context, artistID int64, tracks []domain.Track) (int, error) {
	if len(tracks) == 0 {
		return 0, nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (
			spotify_song_id, artist_id, artists, title, release_date, cover_url, preview_url
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_song_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range tracks {
		res, err := stmt.ExecContext(ctx,
			t.SongID,
			artistID,
			nullString(t.Artists),
			nullString(t.Title),
			nullString(t.ReleaseDate),
			nullString(t.CoverURL),
			nullString(t.PreviewURL),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save track %s: %w", t.SongID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count inserted tracks: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("transaction commit failed: %w", err)
	}

	a.logger.Debug("track batch stored", "artist_id", artistID, "batch", len(tracks), "inserted", inserted)
	return inserted, nil
}

func (a *Adapter) GetTrack(ctx context.Context, songID string) (domain.Track, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT spotify_song_id, artist_id, artists, title, release_date, cover_url, preview_url
		FROM tracks
		WHERE spotify_song_id = ?
	`, songID)
	track, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Track{}, domain.ErrNotFound
		}
		return domain.Track{}, fmt.Errorf("failed to load track: %w", err)
	}
	return track, nil
}

func (a *Adapter) GetTrackDetail(ctx context.Context, songID string) (domain.TrackDetail, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT key, bpm, camelot, popularity, energy, danceability, happiness
		FROM track_details
		WHERE spotify_song_id = ?
	`, songID)

	var key, bpm, camelot, popularity, energy, danceability, happiness sql.NullString
	if err := row.Scan(&key, &bpm, &camelot, &popularity, &energy, &danceability, &happiness); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TrackDetail{}, domain.ErrNotFound
		}
		return domain.TrackDetail{}, fmt.Errorf("failed to load track details: %w", err)
	}

	return domain.TrackDetail{
		Key:          key.String,
		BPM:          bpm.String,
		Camelot:      camelot.String,
		Popularity:   popularity.String,
		Energy:       energy.String,
		Danceability: danceability.String,
		Happiness:    happiness.String,
	}, nil
}

func (a *Adapter) UpsertTrackDetail(ctx context.Context, songID string, d domain.TrackDetail) error {
	query := `
		INSERT INTO track_details (
			spotify_song_id, key, bpm, camelot, popularity, energy, danceability, happiness
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_song_id) DO UPDATE SET
			key=excluded.key,
			bpm=excluded.bpm,
			camelot=excluded.camelot,
			popularity=excluded.popularity,
			energy=excluded.energy,
			danceability=excluded.danceability,
			happiness=excluded.happiness
	`
	if _, err := a.db.ExecContext(ctx, query,
		songID,
		nullString(d.Key),
		nullString(d.BPM),
		nullString(d.Camelot),
		nullString(d.Popularity),
		nullString(d.Energy),
		nullString(d.Danceability),
		nullString(d.Happiness),
	); err != nil {
		return fmt.Errorf("failed to save track details for %s: %w", songID, mapConstraintError(err))
	}
	return nil
}

func (a *Adapter) GetLyrics(ctx context.Context, songID string) (string, error) {
	var text string
	err := a.db.QueryRowContext(ctx, "SELECT text FROM lyrics WHERE spotify_song_id = ?", songID).Scan(&text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to load lyrics: %w", err)
	}
	return text, nil
}

// UpsertLyrics creates the lyrics row or overwrites its text.
func (a *Adapter) UpsertLyrics(ctx context.Context, songID string, text string) error {
	query := `
		INSERT INTO lyrics (spotify_song_id, text, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(spotify_song_id) DO UPDATE SET
			text=excluded.text,
			updated_at=excluded.updated_at
	`
	if _, err := a.db.ExecContext(ctx, query, songID, text, a.now()); err != nil {
		return fmt.Errorf("failed to save lyrics for %s: %w", songID, mapConstraintError(err))
	}
	return nil
}

// UpdateLyrics rewrites existing lyrics and fails with domain.ErrNotFound when there are none.
func (a *Adapter) UpdateLyrics(ctx context.Context, songID string, text string) error {
	res, err := a.db.ExecContext(ctx,
		"UPDATE lyrics SET text = ?, updated_at = ? WHERE spotify_song_id = ?",
		text, a.now(), songID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lyrics for %s: %w", songID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update lyrics for %s: %w", songID, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (a *Adapter) LikeArtist(ctx context.Context, userID, artistID int64) error {
	query := `
		INSERT INTO user_liked_artists (user_id, artist_id, liked_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id, artist_id) DO NOTHING
	`
	if _, err := a.db.ExecContext(ctx, query, userID, artistID, a.now()); err != nil {
		return fmt.Errorf("failed to like artist %d: %w", artistID, mapConstraintError(err))
	}
	return nil
}

func (a *Adapter) LikeTrack(ctx context.Context, userID int64, songID string) error {
	query := `
		INSERT INTO user_liked_tracks (user_id, spotify_song_id, liked_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id, spotify_song_id) DO NOTHING
	`
	if _, err := a.db.ExecContext(ctx, query, userID, songID, a.now()); err != nil {
		return fmt.Errorf("failed to like track %s: %w", songID, mapConstraintError(err))
	}
	return nil
}

func (a *Adapter) LikedTracks(ctx context.Context, userID int64) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT t.spotify_song_id, t.artist_id, t.artists, t.title, t.release_date, t.cover_url, t.preview_url
		FROM tracks t
		JOIN user_liked_tracks ul ON ul.spotify_song_id = t.spotify_song_id
		WHERE ul.user_id = ?
		ORDER BY ul.liked_at DESC, ul.rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load liked tracks: %w", err)
	}
	defer rows.Close()

	tracks := []domain.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liked track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate liked tracks: %w", err)
	}
	return tracks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTrack decodes the column order used by every track query.
func scanTrack(row rowScanner) (domain.Track, error) {
	var track domain.Track
	var artistID sql.NullInt64
	var artists, title, releaseDate, coverURL, previewURL sql.NullString
	if err := row.Scan(
		&track.SongID,
		&artistID,
		&artists,
		&title,
		&releaseDate,
		&coverURL,
		&previewURL,
	); err != nil {
		return domain.Track{}, err
	}
	if artistID.Valid {
		track.ArtistID = artistID.Int64
	}
	track.Artists = artists.String
	track.Title = title.String
	track.ReleaseDate = releaseDate.String
	track.CoverURL = coverURL.String
	track.PreviewURL = previewURL.String
	return track, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// mapConstraintError turns a foreign key violation into domain.ErrNotFound.
func mapConstraintError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return domain.ErrNotFound
	}
	return err
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS artists (
		genius_id INTEGER PRIMARY KEY,
		snapshot BLOB NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tracks (
		spotify_song_id TEXT PRIMARY KEY,
		artist_id INTEGER,
		artists TEXT,
		title TEXT,
		release_date TEXT,
		cover_url TEXT,
		preview_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(artist_id) REFERENCES artists(genius_id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_tracks_artist_id ON tracks(artist_id);

	CREATE TABLE IF NOT EXISTS track_details (
		spotify_song_id TEXT PRIMARY KEY,
		key TEXT,
		bpm TEXT,
		camelot TEXT,
		popularity TEXT,
		energy TEXT,
		danceability TEXT,
		FOREIGN KEY(spotify_song_id) REFERENCES tracks(spotify_song_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS lyrics (
		spotify_song_id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		FOREIGN KEY(spotify_song_id) REFERENCES tracks(spotify_song_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS user_liked_artists (
		user_id INTEGER NOT NULL,
		artist_id INTEGER NOT NULL,
		liked_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, artist_id),
		FOREIGN KEY(artist_id) REFERENCES artists(genius_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS user_liked_tracks (
		user_id INTEGER NOT NULL,
		spotify_song_id TEXT NOT NULL,
		liked_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, spotify_song_id),
		FOREIGN KEY(spotify_song_id) REFERENCES tracks(spotify_song_id) ON DELETE CASCADE
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Columns added after the first release.
	if _, err := a.db.Exec("ALTER TABLE track_details ADD COLUMN happiness TEXT"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}
	if _, err := a.db.Exec("ALTER TABLE lyrics ADD COLUMN updated_at TIMESTAMP"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
