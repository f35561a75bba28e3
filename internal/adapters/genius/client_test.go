package genius

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

func TestClient_FindArtistID(t *testing.T) {
	tests := []struct {
		name    string
		hits    string
		want    int64
		wantErr error
	}{
		{
			name: "exact artist hit",
			hits: `[
				{"type":"artist","result":{"id":99,"name":"Test Artist & Friend"}},
				{"type":"artist","result":{"id":1234,"name":"test artist"}}
			]`,
			want: 1234,
		},
		{
			name: "falls back to solo song hit",
			hits: `[
				{"type":"song","result":{"id":1,"url":"u","primary_artist":{"id":55,"name":"Test Artist"},"featured_artists":[{"id":2,"name":"Guest"}]}},
				{"type":"song","result":{"id":3,"url":"u","primary_artist":{"id":1234,"name":" Test Artist "},"featured_artists":[]}}
			]`,
			want: 1234,
		},
		{
			name:    "feature entries never match",
			hits:    `[{"type":"artist","result":{"id":7,"name":"Test Artist, Other"}}]`,
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "no hits",
			hits:    `[]`,
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Fatalf("unexpected path: %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer secret" {
					t.Fatalf("authorization header: got %q", got)
				}
				if q := r.URL.Query().Get("q"); q != "Test Artist" {
					t.Fatalf("query: got %q", q)
				}
				fmt.Fprintf(w, `{"response":{"hits":%s}}`, tt.hits)
			}))
			defer server.Close()

			c := NewClient(server.Client(), server.URL, "secret", nil)
			got, err := c.FindArtistID(context.Background(), "Test Artist")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("id: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClient_GetArtist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artists/1234":
			fmt.Fprint(w, `{"response":{"artist":{
				"id":1234,"name":"Test Artist","alternate_names":["TA"],
				"instagram_name":"ta","twitter_name":"ta_tweets","followers_count":1000,
				"header_image_url":"http://header.jpg","image_url":"http://avatar.jpg",
				"url":"https://genius.com/artists/Test-artist"}}}`)
		case "/artists/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL, "secret", nil)

	artist, err := c.GetArtist(context.Background(), 1234)
	require.NoError(t, err)
	assert.Equal(t, "Test Artist", artist.Name)
	assert.Equal(t, []string{"TA"}, artist.AlternateNames)
	assert.Equal(t, 1000, artist.FollowersCount)
	assert.Equal(t, "http://avatar.jpg", artist.ImageURL)

	_, err = c.GetArtist(context.Background(), 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	_, err = c.GetArtist(context.Background(), 500)
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable), "got %v", err)
	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "genius", pe.Provider)
	assert.Equal(t, 500, pe.Status)
}

func TestClient_FindSongURL(t *testing.T) {
	var hits string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Test Artist Test Song", r.URL.Query().Get("q"))
		fmt.Fprintf(w, `{"response":{"hits":%s}}`, hits)
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL, "secret", nil)

	hits = `[
		{"type":"artist","result":{"id":1,"name":"Test Artist"}},
		{"type":"song","result":{"id":2,"url":"https://genius.com/test-artist-test-song-lyrics","primary_artist":{"id":1,"name":"Test Artist"}}}
	]`
	got, err := c.FindSongURL(context.Background(), "Test Artist", "Test Song")
	require.NoError(t, err)
	assert.Equal(t, "https://genius.com/test-artist-test-song-lyrics", got)

	hits = `[]`
	got, err = c.FindSongURL(context.Background(), "Test Artist", "Test Song")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_FetchLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blocked" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		assert.Empty(t, r.Header.Get("Authorization"), "song pages are public")
		fmt.Fprint(w, songPage)
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL, "secret", nil)

	got, err := c.FetchLyrics(context.Background(), server.URL+"/test-artist-test-song-lyrics")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "[Verse 1]"), "got %q", got)

	_, err = c.FetchLyrics(context.Background(), server.URL+"/blocked")
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable), "got %v", err)
}

func TestClient_TrackLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, artistPage)
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL, "secret", nil)
	links, err := c.TrackLinks(context.Background(), server.URL+"/artists/Test-artist")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://genius.com/test-artist-first-lyrics",
		"https://genius.com/test-artist-second-lyrics",
	}, links)
}
