package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/models"
)

const scheduleColumns = `id, title, keywords, frequency, next_run, last_run, status,
	settings, failure_count, version, created_at`

// CreateSchedule inserts a new schedule and sets its ID, Version and
// CreatedAt. Status defaults to active.
func (s *Store) CreateSchedule(ctx context.Context, sch *models.Schedule) error {
	if sch.Status == "" {
		sch.Status = models.StatusActive
	}
	settings, err := encodeSettings(sch.Settings)
	if err != nil {
		return err
	}
	if sch.CreatedAt.IsZero() {
		sch.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO schedules (title, keywords, frequency, next_run, last_run, status,
			settings, failure_count, version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		sch.Title, joinKeywords(sch.Keywords), string(sch.Frequency),
		formatTime(sch.NextRun), formatTimePtr(sch.LastRun), string(sch.Status),
		settings, sch.FailureCount, formatTime(sch.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting schedule id: %w", err)
	}
	sch.ID = id
	sch.Version = 1
	return nil
}

// GetSchedule returns the schedule with the given ID, or ErrNotFound.
func (s *Store) GetSchedule(ctx context.Context, id int64) (*models.Schedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	sch, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting schedule %d: %w", id, err)
	}
	return sch, nil
}

// ListSchedules returns schedules ordered by next_run. An empty status
// returns every schedule.
func (s *Store) ListSchedules(ctx context.Context, status models.ScheduleStatus) ([]models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY next_run ASC, id ASC`
	return s.querySchedules(ctx, query, args...)
}

// ListDueSchedules returns at most limit active schedules whose next_run is
// at or before now, oldest-due first.
func (s *Store) ListDueSchedules(ctx context.Context, now time.Time, limit int) ([]models.Schedule, error) {
	return s.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE status = 'active' AND next_run <= ?
		 ORDER BY next_run ASC, id ASC
		 LIMIT ?`,
		formatTime(now), limit,
	)
}

func (s *Store) querySchedules(ctx context.Context, query string, args ...any) ([]models.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying schedules: %w", err)
	}
	defer rows.Close()

	schedules := []models.Schedule{}
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning schedule: %w", err)
		}
		schedules = append(schedules, *sch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}
	return schedules, nil
}

// SetScheduleStatus changes the status of a schedule read at version.
func (s *Store) SetScheduleStatus(ctx context.Context, id, version int64, status models.ScheduleStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET status = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(status), id, version,
	)
	if err != nil {
		return fmt.Errorf("updating schedule %d status: %w", id, err)
	}
	return s.checkCAS(ctx, res, id)
}

// ResetSchedule reactivates a schedule and clears its failure count.
func (s *Store) ResetSchedule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET status = 'active', failure_count = 0, version = version + 1
		 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("resetting schedule %d: %w", id, err)
	}
	return requireAffected(res)
}

// DeleteSchedule removes a schedule. Its articles and logs are kept with
// the schedule reference cleared.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting schedule %d: %w", id, err)
	}
	return requireAffected(res)
}

// RecordScheduleSuccess advances next_run and sets last_run. The failure
// count is left as it is.
func (s *Store) RecordScheduleSuccess(ctx context.Context, id, version int64, nextRun, lastRun time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET next_run = ?, last_run = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		formatTime(nextRun), formatTime(lastRun), id, version,
	)
	if err != nil {
		return fmt.Errorf("recording success for schedule %d: %w", id, err)
	}
	return s.checkCAS(ctx, res, id)
}

// RecordScheduleFailure increments the failure count and marks the schedule
// failed once it reaches maxFailures. next_run is not touched. It returns the
// new count and status.
func (s *Store) RecordScheduleFailure(ctx context.Context, id, version int64, maxFailures int) (int, models.ScheduleStatus, error) {
	var (
		count  int
		status string
	)
	err := s.db.QueryRowContext(ctx,
		`UPDATE schedules
		 SET failure_count = failure_count + 1,
		     status = CASE WHEN failure_count + 1 >= ? THEN 'failed' ELSE status END,
		     version = version + 1
		 WHERE id = ? AND version = ?
		 RETURNING failure_count, status`,
		maxFailures, id, version,
	).Scan(&count, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", s.missingOrConflict(ctx, id)
	}
	if err != nil {
		return 0, "", fmt.Errorf("recording failure for schedule %d: %w", id, err)
	}
	return count, models.ScheduleStatus(status), nil
}

// ScheduleStats counts schedules by status and reports the earliest
// next_run among active ones.
func (s *Store) ScheduleStats(ctx context.Context) (*models.ScheduleStats, error) {
	var (
		stats   models.ScheduleStats
		nextRun sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(status = 'active'), 0),
			COALESCE(SUM(status = 'paused'), 0),
			COALESCE(SUM(status = 'failed'), 0),
			MIN(CASE WHEN status = 'active' THEN next_run END)
		 FROM schedules`,
	).Scan(&stats.Total, &stats.Active, &stats.Paused, &stats.Failed, &nextRun)
	if err != nil {
		return nil, fmt.Errorf("computing schedule stats: %w", err)
	}
	stats.NextRun = parseTimePtr(nullStringToPtr(nextRun))
	return &stats, nil
}

// ScheduleArticleCount returns how many articles a schedule has produced.
func (s *Store) ScheduleArticleCount(ctx context.Context, id int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE schedule_id = ?`, id,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles for schedule %d: %w", id, err)
	}
	return n, nil
}

// checkCAS turns a zero-row conditional update into ErrNotFound or
// ErrConflict.
func (s *Store) checkCAS(ctx context.Context, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	return s.missingOrConflict(ctx, id)
}

func (s *Store) missingOrConflict(ctx context.Context, id int64) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM schedules WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking schedule %d: %w", id, err)
	}
	return ErrConflict
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var (
		sch       models.Schedule
		keywords  string
		frequency string
		nextRun   string
		lastRun   sql.NullString
		status    string
		settings  string
		createdAt string
	)
	if err := row.Scan(
		&sch.ID, &sch.Title, &keywords, &frequency, &nextRun, &lastRun, &status,
		&settings, &sch.FailureCount, &sch.Version, &createdAt,
	); err != nil {
		return nil, err
	}
	sch.Keywords = SplitKeywords(keywords)
	sch.Frequency = models.Frequency(frequency)
	sch.NextRun = parseTime(nextRun)
	sch.LastRun = parseTimePtr(nullStringToPtr(lastRun))
	sch.Status = models.ScheduleStatus(status)
	sch.CreatedAt = parseTime(createdAt)

	sch.Settings = map[string]any{}
	if settings != "" {
		if err := json.Unmarshal([]byte(settings), &sch.Settings); err != nil {
			return nil, fmt.Errorf("decoding settings for schedule %d: %w", sch.ID, err)
		}
	}
	return &sch, nil
}

func encodeSettings(settings map[string]any) (string, error) {
	if len(settings) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encoding schedule settings: %w", err)
	}
	return string(b), nil
}

func joinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

// SplitKeywords parses a comma-separated keyword list, trimming blanks.
func SplitKeywords(s string) []string {
	keywords := []string{}
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
