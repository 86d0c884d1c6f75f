package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/analyzer"
	"github.com/hoanghai1803/autoscribe/internal/config"
	"github.com/hoanghai1803/autoscribe/internal/feeds"
	"github.com/hoanghai1803/autoscribe/internal/generator"
	"github.com/hoanghai1803/autoscribe/internal/logging"
	"github.com/hoanghai1803/autoscribe/internal/optimizer"
	"github.com/hoanghai1803/autoscribe/internal/ratelimit"
	"github.com/hoanghai1803/autoscribe/internal/scheduler"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

const (
	databaseFile = "autoscribe.db"
	tickLockFile = "tick.lock"
)

type commandContext struct {
	configFlag  *string
	dataDirFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, dataDirFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		dataDirFlag: dataDirFlag,
	}
}

// ensureConfig loads the config file once and installs the process logger.
func (c *commandContext) ensureConfig(logOut io.Writer) (*config.Config, error) {
	c.configOnce.Do(func() {
		path := "config.toml"
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		slog.SetDefault(logging.New(cfg.Logs.Level, cfg.Logs.Format, logOut))
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) dataDir() string {
	if c.dataDirFlag == nil || strings.TrimSpace(*c.dataDirFlag) == "" {
		return "./data"
	}
	return strings.TrimSpace(*c.dataDirFlag)
}

// app is the fully wired set of services a command works with.
type app struct {
	cfg       *config.Config
	db        *sql.DB
	store     *storage.Store
	provider  ai.Provider
	limiter   ratelimit.Limiter
	analyzer  *analyzer.Analyzer
	fetcher   *feeds.Fetcher
	generator *generator.Generator
	optimizer *optimizer.Optimizer
	manager   *scheduler.Manager
	runner    *scheduler.Runner

	closers []func() error
}

// openApp opens the database, runs migrations and wires every service.
func (c *commandContext) openApp(ctx context.Context) (*app, error) {
	cfg, err := c.ensureConfig(os.Stderr)
	if err != nil {
		return nil, err
	}

	dir := c.dataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := storage.OpenDatabase(filepath.Join(dir, databaseFile))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, db: db, closers: []func() error{db.Close}}

	if err := storage.RunMigrations(db); err != nil {
		a.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	a.store = storage.NewStore(db)

	a.limiter, err = newLimiter(ctx, cfg.RateLimit)
	if err != nil {
		a.Close()
		return nil, err
	}
	if r, ok := a.limiter.(*ratelimit.Redis); ok {
		a.closers = append(a.closers, r.Close)
	}

	provider, err := ai.NewProvider(ai.ProviderConfig{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		BaseURL:     cfg.AI.BaseURL,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     max(cfg.AI.Timeout(), cfg.AI.InteractiveTimeout()),
		MaxRetries:  cfg.AI.MaxRetries,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create AI provider: %w", err)
	}
	a.provider = ai.WithLimiter(provider, a.limiter)

	a.analyzer = analyzer.New(analyzer.Options{SiteURL: cfg.Generation.SiteURL})
	a.fetcher = feeds.NewFetcher()
	a.generator = generator.New(a.provider, a.store, a.analyzer, cfg.Generation)
	a.optimizer = optimizer.New(a.provider)
	a.manager = scheduler.NewManager(a.store)
	a.runner = scheduler.NewRunner(a.store, a.generator, cfg.Scheduler, cfg.AI.Timeout(), filepath.Join(dir, tickLockFile)).
		WithHeadlines(a.fetcher)

	return a, nil
}

// newLimiter returns the Redis-backed limiter when a URL is configured and
// the in-memory window otherwise.
func newLimiter(ctx context.Context, cfg config.RateLimitConfig) (ratelimit.Limiter, error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewWindow(cfg.Requests, cfg.Window()), nil
	}
	r, err := ratelimit.NewRedis(ctx, cfg.RedisURL, cfg.Requests, cfg.Window())
	if err != nil {
		return nil, fmt.Errorf("connect rate limit redis: %w", err)
	}
	slog.Info("rate limit shared through redis", "requests", cfg.Requests, "window", cfg.Window())
	return r, nil
}

// Close releases everything openApp acquired, newest first.
func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *commandContext) withApp(ctx context.Context, fn func(*app) error) error {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
