package rest

import (
	"net/http"
	"strconv"
)

func pathInt64(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return v, err == nil
}

// LikeArtist handles PUT /users/{userID}/liked-artists/{id}
func (h *Handler) LikeArtist(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "user id must be an integer", codeInvalidRequest)
		return
	}
	artistID, ok := pathInt64(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "artist id must be an integer", codeInvalidRequest)
		return
	}

	if err := h.svc.Library.LikeArtist(r.Context(), userID, artistID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LikeTrack handles PUT /users/{userID}/liked-tracks/{id}
func (h *Handler) LikeTrack(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "user id must be an integer", codeInvalidRequest)
		return
	}

	if err := h.svc.Library.LikeTrack(r.Context(), userID, r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LikedTracks handles GET /users/{userID}/liked-tracks
func (h *Handler) LikedTracks(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "user id must be an integer", codeInvalidRequest)
		return
	}

	tracks, err := h.svc.Library.LikedTracks(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tracks)
}
