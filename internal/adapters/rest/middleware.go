package rest

import (
	"net"
	"net/http"
	"strconv"
)

// rateLimited rejects requests over budget for (endpoint, client IP).
// Limiter failures let the request through.
func (h *Handler) rateLimited(endpoint string, next http.HandlerFunc) http.Handler {
	if h.limiter == nil || h.limit.MaxRequests <= 0 || h.limit.Window <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		limited, err := h.limiter.IsLimited(r.Context(), client, endpoint, h.limit.MaxRequests, h.limit.Window)
		if err != nil {
			h.logger.Warn("rate limiter unavailable, allowing request", "endpoint", endpoint, "client", client, "error", err)
			next(w, r)
			return
		}
		if limited {
			w.Header().Set("Retry-After", strconv.Itoa(int(h.limit.Window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "too many requests", codeRateLimited)
			return
		}
		next(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
