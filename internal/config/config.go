package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	AI         AIConfig         `toml:"ai"`
	Server     ServerConfig     `toml:"server"`
	Generation GenerationConfig `toml:"generation"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
	Logs       LogsConfig       `toml:"logs"`
}

// AIConfig holds generation API settings.
type AIConfig struct {
	Provider                  string  `toml:"provider"`
	APIKey                    string  `toml:"api_key"`
	Model                     string  `toml:"model"`
	BaseURL                   string  `toml:"base_url"`
	MaxTokens                 int     `toml:"max_tokens"`
	Temperature               float64 `toml:"temperature"`
	TimeoutSeconds            int     `toml:"timeout_seconds"`
	InteractiveTimeoutSeconds int     `toml:"interactive_timeout_seconds"`
	MaxRetries                int     `toml:"max_retries"`
}

// Timeout is the per-call deadline used by scheduled runs.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// InteractiveTimeout is the deadline for generations triggered by a user.
func (c AIConfig) InteractiveTimeout() time.Duration {
	return time.Duration(c.InteractiveTimeoutSeconds) * time.Second
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `toml:"port"`
	AutoOpenBrowser bool `toml:"auto_open_browser"`
}

// GenerationConfig holds defaults applied to every generated post.
type GenerationConfig struct {
	Language          string `toml:"language"`
	DefaultTone       string `toml:"default_tone"`
	DefaultLength     string `toml:"default_length"`
	DefaultPostStatus string `toml:"default_post_status"`
	IncludeImages     bool   `toml:"include_images"`
	ImageSize         string `toml:"image_size"`
	SEOMetadata       bool   `toml:"seo_metadata"`
	SiteURL           string `toml:"site_url"`
}

// SchedulerConfig controls the background runner.
type SchedulerConfig struct {
	Enabled                  bool `toml:"enabled"`
	TickIntervalMinutes      int  `toml:"tick_interval_minutes"`
	BatchSize                int  `toml:"batch_size"`
	Concurrency              int  `toml:"concurrency"`
	MaxFailures              int  `toml:"max_failures"`
	RateLimitCountsAsFailure bool `toml:"rate_limit_counts_as_failure"`
}

// TickInterval returns the configured tick period.
func (c SchedulerConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMinutes) * time.Minute
}

// RateLimitConfig bounds outbound generation requests.
type RateLimitConfig struct {
	Requests      int    `toml:"requests"`
	WindowSeconds int    `toml:"window_seconds"`
	RedisURL      string `toml:"redis_url"`
}

// Window returns the rate limit window length.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// LogsConfig covers generation log retention and process logging.
type LogsConfig struct {
	RetentionDays int    `toml:"retention_days"`
	Level         string `toml:"level"`
	Format        string `toml:"format"`
}

const defaultConfigContent = `[ai]
provider = "openai"               # "openai" or "anthropic"
api_key = ""                      # Your API key (or set AI_API_KEY env var)
model = "gpt-3.5-turbo"
max_tokens = 1500                 # 100 - 4000
temperature = 0.7                 # 0.0 - 2.0
timeout_seconds = 60
interactive_timeout_seconds = 180
max_retries = 3

[server]
port = 8080
auto_open_browser = false

[generation]
language = "en"                   # en, bg, es, fr, de, it, pt, ru
default_tone = "professional"     # professional, casual, technical, friendly
default_length = "medium"         # short, medium, long
default_post_status = "draft"     # draft, publish, private
include_images = false
image_size = "1024x1024"
seo_metadata = true
site_url = ""

[scheduler]
enabled = true
tick_interval_minutes = 60
batch_size = 5
concurrency = 1
max_failures = 3
rate_limit_counts_as_failure = false

[rate_limit]
requests = 60
window_seconds = 3600
redis_url = ""                    # empty keeps the counter in memory

[logs]
retention_days = 30
level = "info"
format = "text"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. A .env file in the
// working directory is loaded first so its values take part in the
// environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := seeded()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Explicit values are validated before defaults fill the gaps, so that
	// "port = 0" is an error rather than silently becoming 8080.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	clamp(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied and no file
// behind it.
func Default() *Config {
	cfg := seeded()
	applyDefaults(&cfg)
	clamp(&cfg)
	return &cfg
}

// seeded returns a Config holding the defaults that a zero value cannot
// express (true booleans, a non-zero temperature). Decoding on top of it
// keeps explicit false and 0 values intact.
func seeded() Config {
	return Config{
		AI:         AIConfig{Temperature: 0.7},
		Generation: GenerationConfig{SEOMetadata: true},
		Scheduler:  SchedulerConfig{Enabled: true},
	}
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("scheduler", "batch_size") && cfg.Scheduler.BatchSize < 1 {
		return fmt.Errorf("invalid scheduler.batch_size %d: must be >= 1", cfg.Scheduler.BatchSize)
	}
	if md.IsDefined("scheduler", "max_failures") && cfg.Scheduler.MaxFailures < 1 {
		return fmt.Errorf("invalid scheduler.max_failures %d: must be >= 1", cfg.Scheduler.MaxFailures)
	}
	if md.IsDefined("rate_limit", "requests") && cfg.RateLimit.Requests < 1 {
		return fmt.Errorf("invalid rate_limit.requests %d: must be >= 1", cfg.RateLimit.Requests)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-3.5-turbo"
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 1500
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.AI.InteractiveTimeoutSeconds == 0 {
		cfg.AI.InteractiveTimeoutSeconds = 180
	}
	if cfg.AI.MaxRetries == 0 {
		cfg.AI.MaxRetries = 3
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Generation.Language == "" {
		cfg.Generation.Language = "en"
	}
	switch cfg.Generation.DefaultTone {
	case "professional", "casual", "technical", "friendly":
	default:
		cfg.Generation.DefaultTone = "professional"
	}
	switch cfg.Generation.DefaultLength {
	case "short", "medium", "long":
	default:
		cfg.Generation.DefaultLength = "medium"
	}
	switch cfg.Generation.DefaultPostStatus {
	case "draft", "publish", "private":
	default:
		cfg.Generation.DefaultPostStatus = "draft"
	}
	if cfg.Generation.ImageSize == "" {
		cfg.Generation.ImageSize = "1024x1024"
	}

	if cfg.Scheduler.TickIntervalMinutes == 0 {
		cfg.Scheduler.TickIntervalMinutes = 60
	}
	if cfg.Scheduler.BatchSize == 0 {
		cfg.Scheduler.BatchSize = 5
	}
	if cfg.Scheduler.Concurrency == 0 {
		cfg.Scheduler.Concurrency = 1
	}
	if cfg.Scheduler.MaxFailures == 0 {
		cfg.Scheduler.MaxFailures = 3
	}

	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 60
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 3600
	}

	if cfg.Logs.RetentionDays == 0 {
		cfg.Logs.RetentionDays = 30
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Logs.Format == "" {
		cfg.Logs.Format = "text"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. OPENAI_API_KEY (when provider is "openai")
//  3. ANTHROPIC_API_KEY (when provider is "anthropic")
func applyEnvOverrides(cfg *Config) {
	switch cfg.AI.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}

	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RateLimit.RedisURL = v
	}
	if v := os.Getenv("AUTOSCRIBE_LOG_LEVEL"); v != "" {
		cfg.Logs.Level = v
	}
}

// clamp forces numeric settings into their supported ranges.
func clamp(cfg *Config) {
	cfg.AI.MaxTokens = clampInt(cfg.AI.MaxTokens, 100, 4000)
	cfg.AI.Temperature = min(max(cfg.AI.Temperature, 0), 2)
	cfg.Logs.RetentionDays = clampInt(cfg.Logs.RetentionDays, 1, 365)
	if cfg.RateLimit.WindowSeconds < 60 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.Scheduler.Concurrency < 1 {
		cfg.Scheduler.Concurrency = 1
	}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
		// valid
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"openai\" or \"anthropic\"", cfg.AI.Provider)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	switch cfg.Logs.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logs.format %q: must be \"text\" or \"json\"", cfg.Logs.Format)
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: set it in the config file or via AI_API_KEY environment variable")
	}

	return nil
}
