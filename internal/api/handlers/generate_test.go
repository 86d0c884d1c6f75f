package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/generator"
)

func TestGenerateArticle(t *testing.T) {
	store := newTestStore(t)
	gen := newTestGenerator(store, &fakeProvider{})

	body := `{"topic":"Scheduling posts","keyword":"scheduler","tone":"casual"}`
	r := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	GenerateArticle(gen, time.Minute).ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var res generator.Result
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.ArticleID == 0 || res.Title != "Scheduling Posts With Go" {
		t.Errorf("result = %+v", res)
	}

	article, err := store.GetArticle(context.Background(), res.ArticleID)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if article.ScheduleID != nil {
		t.Errorf("interactive article attributed to schedule %d", *article.ScheduleID)
	}
}

func TestGenerateArticle_Errors(t *testing.T) {
	rateLimited := &ai.Error{Kind: ai.KindRateLimit, Op: "generate", Message: "rate limit exceeded"}

	tests := []struct {
		name       string
		body       string
		provider   *fakeProvider
		wantStatus int
	}{
		{"invalid json", `not json`, &fakeProvider{}, http.StatusBadRequest},
		{"blank topic", `{"topic":"  "}`, &fakeProvider{}, http.StatusBadRequest},
		{"rate limited", `{"topic":"Go"}`, &fakeProvider{err: rateLimited}, http.StatusTooManyRequests},
		{"upstream error", `{"topic":"Go"}`, &fakeProvider{err: &ai.Error{Kind: ai.KindUpstream, StatusCode: 500}}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newTestGenerator(newTestStore(t), tt.provider)
			r := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			GenerateArticle(gen, time.Minute).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d; body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestGenerationError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{generator.ErrTopicRequired, http.StatusBadRequest},
		{fmt.Errorf("generating: %w", &ai.Error{Kind: ai.KindRateLimit}), http.StatusTooManyRequests},
		{&ai.Error{Kind: ai.KindRateLimit, StatusCode: 429}, http.StatusTooManyRequests},
		{&ai.Error{Kind: ai.KindConfiguration}, http.StatusServiceUnavailable},
		{&ai.Error{Kind: ai.KindTransport, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{&ai.Error{Kind: ai.KindTransport}, http.StatusBadGateway},
		{&ai.Error{Kind: ai.KindProtocol}, http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := generationError(tt.err); got != tt.want {
			t.Errorf("generationError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
