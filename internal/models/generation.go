package models

import "time"

// Generation log statuses.
const (
	LogCompleted = "completed"
	LogFailed    = "failed"
)

// GenerationLog is an append-only record of one generation attempt.
type GenerationLog struct {
	ID         int64     `json:"id"`
	ScheduleID *int64    `json:"schedule_id,omitempty"`
	PostID     *int64    `json:"post_id,omitempty"`
	PostTitle  string    `json:"post_title,omitempty"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	Model      string    `json:"model"`
	TokensUsed int       `json:"tokens_used"`
	Cost       float64   `json:"cost"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogPage is one page of generation logs, newest first.
type LogPage struct {
	Logs    []GenerationLog `json:"logs"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// LogStats aggregates generation logs over a trailing window.
type LogStats struct {
	Days              int     `json:"days"`
	TotalGenerations  int     `json:"total_generations"`
	TotalTokens       int     `json:"total_tokens"`
	TotalCost         float64 `json:"total_cost"`
	AverageTokens     int     `json:"average_tokens"`
	MostPopularModel  string  `json:"most_popular_model"`
	FailedGenerations int     `json:"failed_generations"`
}

// Article statuses.
const (
	ArticleDraft   = "draft"
	ArticlePublish = "publish"
	ArticlePrivate = "private"
)

// Article is a generated blog post.
type Article struct {
	ID               int64     `json:"id"`
	ScheduleID       *int64    `json:"schedule_id,omitempty"`
	Topic            string    `json:"topic"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	Excerpt          string    `json:"excerpt"`
	MetaDescription  string    `json:"meta_description"`
	FocusKeyword     string    `json:"focus_keyword"`
	Status           string    `json:"status"`
	Model            string    `json:"model"`
	TokensUsed       int       `json:"tokens_used"`
	Cost             float64   `json:"cost"`
	OverallScore     int       `json:"overall_score"`
	FeaturedImageURL string    `json:"featured_image_url,omitempty"`
	SEO              SEOMeta   `json:"seo"`
	CreatedAt        time.Time `json:"created_at"`
}

// SEOMeta holds the search metadata attached to an article.
type SEOMeta struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	FocusKeyword string `json:"focus_keyword,omitempty"`
}
