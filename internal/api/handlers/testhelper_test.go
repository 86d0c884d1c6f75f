package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/config"
	"github.com/hoanghai1803/autoscribe/internal/feeds"
	"github.com/hoanghai1803/autoscribe/internal/generator"
	"github.com/hoanghai1803/autoscribe/internal/scheduler"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

// withURLParam attaches a chi route context carrying one URL parameter.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

const cannedResponse = `[TITLE]Scheduling Posts With Go[/TITLE]
[META]How a small scheduler keeps a blog publishing on time.[/META]
[EXCERPT]A short tour of a post scheduler.[/EXCERPT]
[CONTENT]<h2>Why schedule?</h2><p>Scheduling keeps a blog publishing on time.</p>[/CONTENT]`

type fakeProvider struct {
	err       error
	connected bool
}

func (f *fakeProvider) Generate(ctx context.Context, prompt, systemMessage string) (*ai.Completion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Content: cannedResponse, TokensUsed: 800, Model: "gpt-4o"}, nil
}

func (f *fakeProvider) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	return "", nil
}

func (f *fakeProvider) TestConnection(ctx context.Context) bool { return f.connected }
func (f *fakeProvider) Model() string                          { return "gpt-4o" }

func newTestGenerator(store *storage.Store, p ai.Provider) *generator.Generator {
	return generator.New(p, store, nil, config.Default().Generation)
}

func newTestRunner(store *storage.Store, p ai.Provider) *scheduler.Runner {
	cfg := config.Default().Scheduler
	return scheduler.NewRunner(store, newTestGenerator(store, p), cfg, time.Minute, "")
}

type fakeExtractor struct {
	article *feeds.Article
	err     error
	gotURL  string
}

func (f *fakeExtractor) ExtractArticle(ctx context.Context, articleURL string) (*feeds.Article, error) {
	f.gotURL = articleURL
	if f.err != nil {
		return nil, f.err
	}
	return f.article, nil
}
