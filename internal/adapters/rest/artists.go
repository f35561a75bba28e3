package rest

import (
	"net/http"
	"strings"
)

type resolveArtistRequest struct {
	Name string `json:"name"`
}

// ResolveArtist handles POST /artists
func (h *Handler) ResolveArtist(w http.ResponseWriter, r *http.Request) {
	var req resolveArtistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", codeInvalidRequest)
		return
	}

	profile, err := h.svc.Artists.ResolveArtist(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
