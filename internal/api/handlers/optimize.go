package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/analyzer"
	"github.com/hoanghai1803/autoscribe/internal/optimizer"
)

type optimizeFunc func(ctx context.Context, in optimizer.Input) (any, error)

// optimizeHandler decodes an optimizer.Input, runs fn under timeout and
// writes its result. name labels failures in the log.
func optimizeHandler(name string, timeout time.Duration, fn optimizeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in optimizer.Input
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res, err := fn(ctx, in)
		if err != nil {
			status, msg := optimizeError(err)
			if status >= http.StatusInternalServerError {
				slog.Error("content tool failed", "tool", name, "error", err)
			}
			writeError(w, status, msg)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func optimizeError(err error) (int, string) {
	switch {
	case errors.Is(err, optimizer.ErrInvalidInput):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), optimizer.ErrInvalidInput.Error()+": ")
	case errors.Is(err, optimizer.ErrNoImagesNeedAlt):
		return http.StatusBadRequest, "No images without alt text found"
	case errors.Is(err, ai.ErrRateLimit):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, ai.ErrConfiguration):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	case errors.Is(err, ai.ErrUpstream), errors.Is(err, ai.ErrTransport), errors.Is(err, ai.ErrProtocol):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Content tool failed"
	}
}

// GenerateAltText handles POST /api/optimize/alt-text.
func GenerateAltText(o *optimizer.Optimizer, timeout time.Duration) http.HandlerFunc {
	return optimizeHandler("alt-text", timeout, func(ctx context.Context, in optimizer.Input) (any, error) {
		return o.AltText(ctx, in)
	})
}

// OptimizeContent handles POST /api/optimize/content.
func OptimizeContent(o *optimizer.Optimizer, timeout time.Duration) http.HandlerFunc {
	return optimizeHandler("content", timeout, func(ctx context.Context, in optimizer.Input) (any, error) {
		return o.Optimize(ctx, in)
	})
}

// ContentSuggestions handles POST /api/optimize/suggestions.
func ContentSuggestions(o *optimizer.Optimizer, timeout time.Duration) http.HandlerFunc {
	return optimizeHandler("suggestions", timeout, func(ctx context.Context, in optimizer.Input) (any, error) {
		return o.Suggestions(ctx, in)
	})
}

// ContentGaps handles POST /api/optimize/gaps.
func ContentGaps(o *optimizer.Optimizer, timeout time.Duration) http.HandlerFunc {
	return optimizeHandler("gaps", timeout, func(ctx context.Context, in optimizer.Input) (any, error) {
		return o.ContentGaps(ctx, in)
	})
}

// CompetitorAnalysis handles POST /api/optimize/competitors. Only the
// keyword is read.
func CompetitorAnalysis(o *optimizer.Optimizer, timeout time.Duration) http.HandlerFunc {
	return optimizeHandler("competitors", timeout, func(ctx context.Context, in optimizer.Input) (any, error) {
		return o.Competitors(ctx, in.Keyword)
	})
}

// TranslateContent handles POST /api/optimize/translate.
func TranslateContent(o *optimizer.Optimizer, timeout time.Duration) http.HandlerFunc {
	return optimizeHandler("translate", timeout, func(ctx context.Context, in optimizer.Input) (any, error) {
		return o.Translate(ctx, in)
	})
}

// SEOSuggestions handles POST /api/optimize/seo-suggestions. The rules run
// locally and never call the provider.
func SEOSuggestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in optimizer.Input
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"suggestions": analyzer.SEOSuggestions(in.Content, in.Title, in.Keyword),
		})
	}
}
