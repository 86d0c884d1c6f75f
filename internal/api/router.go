// Package api exposes schedules, generation, analysis, the content tools
// and generation logs over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/analyzer"
	"github.com/hoanghai1803/autoscribe/internal/api/handlers"
	"github.com/hoanghai1803/autoscribe/internal/config"
	"github.com/hoanghai1803/autoscribe/internal/optimizer"
	"github.com/hoanghai1803/autoscribe/internal/ratelimit"
	"github.com/hoanghai1803/autoscribe/internal/scheduler"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

// Deps are the services the routes are served from.
type Deps struct {
	Store     *storage.Store
	Schedules *scheduler.Manager
	Runner    *scheduler.Runner
	Generator handlers.ArticleGenerator
	Analyzer  *analyzer.Analyzer
	Extractor handlers.ArticleExtractor
	Optimizer *optimizer.Optimizer
	Provider  ai.Provider
	Limiter   ratelimit.Limiter
	Config    *config.Config
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/schedules", handlers.ListSchedules(d.Schedules))
		api.Post("/schedules", handlers.CreateSchedule(d.Schedules))
		api.Get("/schedules/stats", handlers.ScheduleStats(d.Schedules))
		api.Get("/schedules/{id}", handlers.GetSchedule(d.Schedules))
		api.Delete("/schedules/{id}", handlers.DeleteSchedule(d.Schedules))
		api.Post("/schedules/{id}/toggle", handlers.ToggleSchedule(d.Schedules))
		api.Post("/schedules/{id}/reset", handlers.ResetSchedule(d.Schedules))
		api.Post("/scheduler/tick", handlers.RunTick(d.Runner))

		api.Post("/generate", handlers.GenerateArticle(d.Generator, d.Config.AI.InteractiveTimeout()))
		api.Post("/analyze", handlers.AnalyzeContent(d.Analyzer))
		api.Post("/analyze/url", handlers.AnalyzeURL(d.Analyzer, d.Extractor))

		interactive := d.Config.AI.InteractiveTimeout()
		api.Route("/optimize", func(o chi.Router) {
			o.Post("/alt-text", handlers.GenerateAltText(d.Optimizer, interactive))
			o.Post("/content", handlers.OptimizeContent(d.Optimizer, interactive))
			o.Post("/suggestions", handlers.ContentSuggestions(d.Optimizer, interactive))
			o.Post("/gaps", handlers.ContentGaps(d.Optimizer, interactive))
			o.Post("/competitors", handlers.CompetitorAnalysis(d.Optimizer, interactive))
			o.Post("/translate", handlers.TranslateContent(d.Optimizer, interactive))
			o.Post("/seo-suggestions", handlers.SEOSuggestions())
		})

		api.Get("/articles", handlers.ListArticles(d.Store))
		api.Get("/articles/{id}", handlers.GetArticle(d.Store))

		api.Get("/logs", handlers.ListLogs(d.Store))
		api.Get("/logs/stats", handlers.LogStats(d.Store))
		api.Get("/logs/export", handlers.ExportLogs(d.Store))
		api.Get("/logs/{id}", handlers.GetLog(d.Store))
		api.Delete("/logs", handlers.PurgeLogs(d.Store, d.Config.Logs.RetentionDays))

		api.Post("/test-connection", handlers.TestConnection(d.Provider, d.Config.AI.Provider))
		api.Get("/rate-limit", handlers.RateLimitStatus(d.Limiter))
	})

	return r
}
