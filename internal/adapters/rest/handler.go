package rest

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/melon/internal/core/domain"
	"github.com/ewilliams-labs/melon/internal/core/ports"
)

// ArtistService resolves artist profiles.
type ArtistService interface {
	ResolveArtist(ctx context.Context, name string) (domain.ArtistProfile, error)
}

// TrackService resolves track bundles and accepts lyrics corrections.
type TrackService interface {
	ResolveTrack(ctx context.Context, songID string) (domain.TrackBundle, error)
	ResolveTrackEphemeral(ctx context.Context, artist, title string) (domain.TrackBundle, error)
	CorrectLyrics(ctx context.Context, songID string, text string) error
}

// AnalysisService answers text analysis requests and chat turns.
type AnalysisService interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
	Chat(ctx context.Context, message string, history []domain.ChatMessage) (domain.ChatReply, error)
}

// LibraryService manages user likes.
type LibraryService interface {
	LikeArtist(ctx context.Context, userID, artistID int64) error
	LikeTrack(ctx context.Context, userID int64, songID string) error
	LikedTracks(ctx context.Context, userID int64) ([]domain.Track, error)
}

// Services groups the core services the handler exposes.
type Services struct {
	Artists  ArtistService
	Tracks   TrackService
	Analysis AnalysisService
	Library  LibraryService
}

// RateLimit is the per-route, per-client request budget.
type RateLimit struct {
	MaxRequests int
	Window      time.Duration
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc     Services
	limiter ports.RateLimiter
	limit   RateLimit
	logger  hclog.Logger
	router  *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes. A nil limiter
// disables rate limiting.
func NewHandler(svc Services, limiter ports.RateLimiter, limit RateLimit, logger hclog.Logger) *Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	h := &Handler{
		svc:     svc,
		limiter: limiter,
		limit:   limit,
		logger:  logger.Named("rest"),
		router:  http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	h.handle("POST /artists", "artists", h.ResolveArtist)

	h.handle("GET /tracks/{id}", "tracks", h.GetTrack)
	h.handle("POST /tracks/preview", "tracks_preview", h.PreviewTrack)
	h.handle("PUT /tracks/{id}/lyrics", "lyrics", h.CorrectLyrics)

	h.handle("POST /analysis", "analysis", h.Analyze)
	h.handle("POST /chat", "chat", h.Chat)

	h.handle("PUT /users/{userID}/liked-artists/{id}", "likes", h.LikeArtist)
	h.handle("PUT /users/{userID}/liked-tracks/{id}", "likes", h.LikeTrack)
	h.handle("GET /users/{userID}/liked-tracks", "liked_tracks", h.LikedTracks)
}

func (h *Handler) handle(pattern, endpoint string, fn http.HandlerFunc) {
	h.router.Handle(pattern, h.rateLimited(endpoint, fn))
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Melon is live"})
}

const (
	codeInvalidRequest   = "INVALID_REQUEST"
	codeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	codeNotFound         = "NOT_FOUND"
	codeAmbiguousMatch   = "AMBIGUOUS_MATCH"
	codeIncompleteRecord = "INCOMPLETE_RECORD"
	codeProviderDown     = "PROVIDER_UNAVAILABLE"
	codeRateLimited      = "RATE_LIMITED"
	codeInternal         = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Every code gets a fixed message; wrapped errors can carry provider URLs
// and payloads, so they only go to the log.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.logger.Debug("resource not found", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusNotFound, "resource not found", codeNotFound)
	case errors.Is(err, domain.ErrAmbiguousMatch):
		h.logger.Info("ambiguous match", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "ambiguous match", codeAmbiguousMatch)
	case errors.Is(err, domain.ErrIncompleteRecord):
		h.logger.Info("incomplete record", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusConflict, "incomplete record", codeIncompleteRecord)
	case errors.Is(err, domain.ErrProviderUnavailable):
		h.logger.Warn("upstream provider failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "upstream provider unavailable", codeProviderDown)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", codeInternal)
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSON reads a JSON body into dst, writing the error response itself
// when it fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", codeUnsupportedMedia)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", codeInvalidRequest)
		return false
	}
	return true
}
