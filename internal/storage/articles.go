package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/models"
)

const articleColumns = `id, schedule_id, topic, title, content, excerpt, meta_description,
	focus_keyword, status, model, tokens_used, cost, overall_score, featured_image_url,
	seo_title, seo_description, seo_focus_keyword, created_at`

// InsertArticle stores a generated article and sets its ID and CreatedAt.
func (s *Store) InsertArticle(ctx context.Context, a *models.Article) error {
	if a.Status == "" {
		a.Status = models.ArticleDraft
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (schedule_id, topic, title, content, excerpt, meta_description,
			focus_keyword, status, model, tokens_used, cost, overall_score, featured_image_url,
			seo_title, seo_description, seo_focus_keyword, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ScheduleID, a.Topic, a.Title, a.Content, a.Excerpt, a.MetaDescription,
		a.FocusKeyword, a.Status, a.Model, a.TokensUsed, a.Cost, a.OverallScore,
		nullIfEmpty(a.FeaturedImageURL),
		nullIfEmpty(a.SEO.Title), nullIfEmpty(a.SEO.Description), nullIfEmpty(a.SEO.FocusKeyword),
		formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting article id: %w", err)
	}
	a.ID = id
	return nil
}

// GetArticle returns the article with the given ID, or ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting article %d: %w", id, err)
	}
	return a, nil
}

// ListArticles returns articles newest first, optionally restricted to one
// schedule. A non-positive limit returns all rows.
func (s *Store) ListArticles(ctx context.Context, scheduleID *int64, limit int) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	var args []any
	if scheduleID != nil {
		query += ` WHERE schedule_id = ?`
		args = append(args, *scheduleID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return articles, nil
}

// WriteSEOMetadata attaches search metadata to an article.
func (s *Store) WriteSEOMetadata(ctx context.Context, articleID int64, meta models.SEOMeta) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE articles SET seo_title = ?, seo_description = ?, seo_focus_keyword = ?
		 WHERE id = ?`,
		nullIfEmpty(meta.Title), nullIfEmpty(meta.Description), nullIfEmpty(meta.FocusKeyword),
		articleID,
	)
	if err != nil {
		return fmt.Errorf("writing seo metadata for article %d: %w", articleID, err)
	}
	return requireAffected(res)
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var (
		a          models.Article
		scheduleID sql.NullInt64
		image      sql.NullString
		seoTitle   sql.NullString
		seoDesc    sql.NullString
		seoKeyword sql.NullString
		createdAt  string
	)
	if err := row.Scan(
		&a.ID, &scheduleID, &a.Topic, &a.Title, &a.Content, &a.Excerpt, &a.MetaDescription,
		&a.FocusKeyword, &a.Status, &a.Model, &a.TokensUsed, &a.Cost, &a.OverallScore, &image,
		&seoTitle, &seoDesc, &seoKeyword, &createdAt,
	); err != nil {
		return nil, err
	}
	a.ScheduleID = nullInt64ToPtr(scheduleID)
	a.FeaturedImageURL = image.String
	a.SEO = models.SEOMeta{
		Title:        seoTitle.String,
		Description:  seoDesc.String,
		FocusKeyword: seoKeyword.String,
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
