package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/models"
)

// InsertLog appends a generation log entry and sets its ID and CreatedAt.
// Entries are never updated afterwards.
func (s *Store) InsertLog(ctx context.Context, l *models.GenerationLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_logs (schedule_id, post_id, prompt, response, model,
			tokens_used, cost, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ScheduleID, l.PostID, l.Prompt, l.Response, l.Model,
		l.TokensUsed, l.Cost, l.Status, nullIfEmpty(l.Error), formatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting generation log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting generation log id: %w", err)
	}
	l.ID = id
	return nil
}

const logSelect = `SELECT l.id, l.schedule_id, l.post_id, COALESCE(a.title, ''), l.prompt,
	l.response, l.model, l.tokens_used, l.cost, l.status, l.error, l.created_at
	FROM generation_logs l
	LEFT JOIN articles a ON a.id = l.post_id`

// GetLog returns a single log entry, or ErrNotFound.
func (s *Store) GetLog(ctx context.Context, id int64) (*models.GenerationLog, error) {
	l, err := scanLog(s.db.QueryRowContext(ctx, logSelect+` WHERE l.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting generation log %d: %w", id, err)
	}
	return l, nil
}

// ListLogs returns one page of log entries, newest first. Page numbers
// start at 1.
func (s *Store) ListLogs(ctx context.Context, page, perPage int) (*models.LogPage, error) {
	page = max(page, 1)
	if perPage <= 0 {
		perPage = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_logs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting generation logs: %w", err)
	}

	logs, err := s.queryLogs(ctx,
		logSelect+` ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, err
	}
	return &models.LogPage{Logs: logs, Total: total, Page: page, PerPage: perPage}, nil
}

// ExportLogs returns every log entry, newest first, with the title of the
// article it produced.
func (s *Store) ExportLogs(ctx context.Context) ([]models.GenerationLog, error) {
	return s.queryLogs(ctx, logSelect+` ORDER BY l.created_at DESC, l.id DESC`)
}

// PurgeLogsBefore deletes entries created strictly before cutoff and
// returns how many were removed.
func (s *Store) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM generation_logs WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purging generation logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking purged rows: %w", err)
	}
	return n, nil
}

// LogStats aggregates entries created at or after since. days is echoed
// back in the result.
func (s *Store) LogStats(ctx context.Context, since time.Time, days int) (*models.LogStats, error) {
	cutoff := formatTime(since)
	stats := models.LogStats{Days: days, MostPopularModel: "N/A"}

	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(tokens_used), 0),
			COALESCE(SUM(cost), 0),
			AVG(tokens_used),
			COALESCE(SUM(status = 'failed'), 0)
		 FROM generation_logs WHERE created_at >= ?`, cutoff,
	).Scan(&stats.TotalGenerations, &stats.TotalTokens, &stats.TotalCost, &avg, &stats.FailedGenerations)
	if err != nil {
		return nil, fmt.Errorf("computing log stats: %w", err)
	}
	if avg.Valid {
		stats.AverageTokens = int(math.Round(avg.Float64))
	}

	var model string
	err = s.db.QueryRowContext(ctx,
		`SELECT model FROM generation_logs
		 WHERE created_at >= ? AND model != ''
		 GROUP BY model ORDER BY COUNT(*) DESC, model ASC LIMIT 1`, cutoff,
	).Scan(&model)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("finding most popular model: %w", err)
	default:
		stats.MostPopularModel = model
	}
	return &stats, nil
}

func (s *Store) queryLogs(ctx context.Context, query string, args ...any) ([]models.GenerationLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying generation logs: %w", err)
	}
	defer rows.Close()

	logs := []models.GenerationLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning generation log: %w", err)
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generation logs: %w", err)
	}
	return logs, nil
}

func scanLog(row rowScanner) (*models.GenerationLog, error) {
	var (
		l          models.GenerationLog
		scheduleID sql.NullInt64
		postID     sql.NullInt64
		errText    sql.NullString
		createdAt  string
	)
	if err := row.Scan(
		&l.ID, &scheduleID, &postID, &l.PostTitle, &l.Prompt,
		&l.Response, &l.Model, &l.TokensUsed, &l.Cost, &l.Status, &errText, &createdAt,
	); err != nil {
		return nil, err
	}
	l.ScheduleID = nullInt64ToPtr(scheduleID)
	l.PostID = nullInt64ToPtr(postID)
	l.Error = errText.String
	l.CreatedAt = parseTime(createdAt)
	return &l, nil
}
