package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/ratelimit"
)

func TestTestConnection(t *testing.T) {
	for _, connected := range []bool{true, false} {
		w := httptest.NewRecorder()
		TestConnection(&fakeProvider{connected: connected}, "openai").
			ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/test-connection", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d", w.Code)
		}
		var got map[string]any
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if got["connected"] != connected || got["provider"] != "openai" || got["model"] != "gpt-4o" {
			t.Errorf("response = %v", got)
		}
	}
}

func TestRateLimitStatus(t *testing.T) {
	limiter := ratelimit.NewWindow(5, time.Hour)
	if _, err := limiter.Allow(context.Background()); err != nil {
		t.Fatalf("Allow: %v", err)
	}

	for range 2 {
		w := httptest.NewRecorder()
		RateLimitStatus(limiter).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rate-limit", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d", w.Code)
		}
		var st ratelimit.Status
		if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		// Reading the status must not consume budget.
		if st.Made != 1 || st.Remaining != 4 || st.Limit != 5 {
			t.Errorf("status = %+v", st)
		}
	}
}
