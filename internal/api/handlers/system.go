package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/ratelimit"
)

// TestConnection handles POST /api/test-connection. It reports whether the
// configured API key is accepted; the check is not rate limited.
func TestConnection(provider ai.Provider, providerName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := provider.TestConnection(r.Context())
		if !ok {
			slog.Warn("AI connection test failed", "provider", providerName)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"connected": ok,
			"provider":  providerName,
			"model":     provider.Model(),
		})
	}
}

// RateLimitStatus handles GET /api/rate-limit. It reports usage of the
// generation budget without consuming from it.
func RateLimitStatus(limiter ratelimit.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := limiter.Status(r.Context())
		if err != nil {
			slog.Error("failed to read rate limit status", "error", err)
			writeError(w, http.StatusServiceUnavailable, "Rate limiter unavailable")
			return
		}

		writeJSON(w, http.StatusOK, st)
	}
}
