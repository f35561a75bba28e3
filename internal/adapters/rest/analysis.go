package rest

import (
	"net/http"
	"strings"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// Analyze handles POST /analysis
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.svc.Analysis == nil {
		writeError(w, http.StatusNotImplemented, "text analysis not configured", codeInternal)
		return
	}

	var req domain.AnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" || req.Language == "" || req.Level == "" {
		writeError(w, http.StatusBadRequest, "text, language and level are required", codeInvalidRequest)
		return
	}

	result, err := h.svc.Analysis.Analyze(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	Message string               `json:"message"`
	History []domain.ChatMessage `json:"history"`
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.svc.Analysis == nil {
		writeError(w, http.StatusNotImplemented, "text analysis not configured", codeInternal)
		return
	}

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required", codeInvalidRequest)
		return
	}

	reply, err := h.svc.Analysis.Chat(r.Context(), req.Message, req.History)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}
