package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/generator"
)

// ArticleGenerator produces and stores one article.
type ArticleGenerator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// GenerateArticle handles POST /api/generate. The generation runs under the
// interactive timeout rather than the shorter scheduled-call timeout.
func GenerateArticle(gen ArticleGenerator, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generator.Request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		// Schedule attribution is reserved for the scheduler.
		req.ScheduleID = nil

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res, err := gen.Generate(ctx, req)
		if err != nil {
			status, msg := generationError(err)
			if status >= http.StatusInternalServerError {
				slog.Error("article generation failed", "topic", req.Topic, "error", err)
			}
			writeError(w, status, msg)
			return
		}

		writeJSON(w, http.StatusCreated, res)
	}
}

// generationError maps a generation failure to an HTTP status and message.
func generationError(err error) (int, string) {
	switch {
	case errors.Is(err, generator.ErrTopicRequired):
		return http.StatusBadRequest, "Topic is required"
	case errors.Is(err, ai.ErrRateLimit):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, ai.ErrConfiguration):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Generation timed out"
	case errors.Is(err, ai.ErrUpstream), errors.Is(err, ai.ErrTransport), errors.Is(err, ai.ErrProtocol):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to generate article"
	}
}
