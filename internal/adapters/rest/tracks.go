package rest

import (
	"net/http"
	"strings"
)

// previewTrackRequest defines what the client sends us
type previewTrackRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type correctLyricsRequest struct {
	Text string `json:"text"`
}

// GetTrack handles GET /tracks/{id}
func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	songID := r.PathValue("id")
	if songID == "" {
		writeError(w, http.StatusBadRequest, "track id is required", codeInvalidRequest)
		return
	}

	bundle, err := h.svc.Tracks.ResolveTrack(r.Context(), songID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

// PreviewTrack handles POST /tracks/preview. Nothing is stored.
func (h *Handler) PreviewTrack(w http.ResponseWriter, r *http.Request) {
	var req previewTrackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Artist) == "" {
		writeError(w, http.StatusBadRequest, "title and artist are required", codeInvalidRequest)
		return
	}

	bundle, err := h.svc.Tracks.ResolveTrackEphemeral(r.Context(), req.Artist, req.Title)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

// CorrectLyrics handles PUT /tracks/{id}/lyrics
func (h *Handler) CorrectLyrics(w http.ResponseWriter, r *http.Request) {
	songID := r.PathValue("id")

	var req correctLyricsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required", codeInvalidRequest)
		return
	}

	if err := h.svc.Tracks.CorrectLyrics(r.Context(), songID, req.Text); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
