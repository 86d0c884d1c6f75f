package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hoanghai1803/autoscribe/internal/ratelimit"
)

// limitedProvider consults a limiter before every billable call.
type limitedProvider struct {
	Provider
	limiter ratelimit.Limiter
}

// WithLimiter wraps p so Generate and GenerateImage fail with ErrRateLimit,
// without touching the network, once limiter denies a request.
// TestConnection is not counted.
func WithLimiter(p Provider, limiter ratelimit.Limiter) Provider {
	if limiter == nil {
		return p
	}
	return &limitedProvider{Provider: p, limiter: limiter}
}

func (l *limitedProvider) admit(ctx context.Context, op string) error {
	st, err := l.limiter.Allow(ctx)
	if err != nil {
		// Fail open when the limiter backend is unreachable.
		slog.Warn("rate limiter unavailable, allowing request", "error", err)
		return nil
	}
	if !st.Allowed {
		return &Error{
			Kind:    KindRateLimit,
			Op:      op,
			Message: fmt.Sprintf("rate limit exceeded: %d requests in the current window, resets at %s", st.Made, st.ResetAt.UTC().Format("15:04:05")),
		}
	}
	return nil
}

func (l *limitedProvider) Generate(ctx context.Context, prompt, systemMessage string) (*Completion, error) {
	if err := l.admit(ctx, "generate"); err != nil {
		return nil, err
	}
	return l.Provider.Generate(ctx, prompt, systemMessage)
}

func (l *limitedProvider) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	if err := l.admit(ctx, "generate image"); err != nil {
		return "", err
	}
	return l.Provider.GenerateImage(ctx, prompt, size)
}
