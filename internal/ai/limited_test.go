package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/ratelimit"
)

// stubProvider counts calls and returns canned values.
type stubProvider struct {
	calls int
}

func (s *stubProvider) Generate(ctx context.Context, prompt, systemMessage string) (*Completion, error) {
	s.calls++
	return &Completion{Content: "ok", Model: "stub"}, nil
}

func (s *stubProvider) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	s.calls++
	return "https://img", nil
}

func (s *stubProvider) TestConnection(ctx context.Context) bool { return true }
func (s *stubProvider) Model() string                          { return "stub" }

func TestWithLimiter(t *testing.T) {
	inner := &stubProvider{}
	p := WithLimiter(inner, ratelimit.NewWindow(2, time.Hour))
	ctx := context.Background()

	if _, err := p.Generate(ctx, "a", ""); err != nil {
		t.Fatalf("first Generate() error: %v", err)
	}
	if _, err := p.GenerateImage(ctx, "a", ""); err != nil {
		t.Fatalf("GenerateImage() error: %v", err)
	}

	_, err := p.Generate(ctx, "a", "")
	if !errors.Is(err, ErrRateLimit) {
		t.Fatalf("third call error = %v, want ErrRateLimit", err)
	}
	if errors.Is(err, ErrUpstream) {
		t.Error("local rate limit should not look like an upstream error")
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}

	if !p.TestConnection(ctx) {
		t.Error("TestConnection should pass through")
	}
	if p.Model() != "stub" {
		t.Errorf("Model() = %q", p.Model())
	}
}

func TestWithLimiter_NilLimiter(t *testing.T) {
	inner := &stubProvider{}
	if WithLimiter(inner, nil) != Provider(inner) {
		t.Error("nil limiter should return the provider unchanged")
	}
}
