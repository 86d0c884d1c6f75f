package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hoanghai1803/autoscribe/internal/ai"
	"github.com/hoanghai1803/autoscribe/internal/config"
	"github.com/hoanghai1803/autoscribe/internal/generator"
	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

// ErrTickInProgress is returned when another tick holds the runner, in
// this process or another one sharing the lock file.
var ErrTickInProgress = errors.New("a scheduler tick is already running")

// maxHeadlines is how many feed titles are offered to the prompt.
const maxHeadlines = 5

// Store is the schedule persistence the runner needs.
type Store interface {
	ListDueSchedules(ctx context.Context, now time.Time, limit int) ([]models.Schedule, error)
	GetSchedule(ctx context.Context, id int64) (*models.Schedule, error)
	RecordScheduleSuccess(ctx context.Context, id, version int64, nextRun, lastRun time.Time) error
	RecordScheduleFailure(ctx context.Context, id, version int64, maxFailures int) (int, models.ScheduleStatus, error)
}

// Generator produces one article.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// HeadlineSource supplies recent titles from a feed.
type HeadlineSource interface {
	Headlines(ctx context.Context, feedURL string, limit int) ([]string, error)
}

// Outcome values reported per schedule.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeDeferred  = "deferred"
)

// ScheduleOutcome is what happened to one due schedule during a tick.
type ScheduleOutcome struct {
	ScheduleID   int64                 `json:"schedule_id"`
	Topic        string                `json:"topic"`
	Outcome      string                `json:"outcome"`
	ArticleID    int64                 `json:"post_id,omitempty"`
	Error        string                `json:"error,omitempty"`
	FailureCount int                   `json:"failure_count"`
	Status       models.ScheduleStatus `json:"status"`
}

// TickReport summarizes one tick.
type TickReport struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	Due       int               `json:"due"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Deferred  int               `json:"deferred"`
	Outcomes  []ScheduleOutcome `json:"outcomes"`
}

// Runner processes due schedules.
type Runner struct {
	store       Store
	gen         Generator
	headlines   HeadlineSource
	cfg         config.SchedulerConfig
	callTimeout time.Duration
	lock        *flock.Flock

	running atomic.Bool
	now     func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRunner creates a Runner. callTimeout bounds each generation; zero
// means no extra bound. When lockPath is non-empty, ticks also take an
// exclusive file lock there so separate processes never overlap.
func NewRunner(store Store, gen Generator, cfg config.SchedulerConfig, callTimeout time.Duration, lockPath string) *Runner {
	r := &Runner{
		store:       store,
		gen:         gen,
		cfg:         cfg,
		callTimeout: callTimeout,
		now:         time.Now,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
	if lockPath != "" {
		r.lock = flock.New(lockPath)
	}
	return r
}

// WithHeadlines enables feed headlines for schedules with a feed_url setting.
func (r *Runner) WithHeadlines(src HeadlineSource) *Runner {
	r.headlines = src
	return r
}

// WithClock replaces the time source.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// WithRand replaces the topic picker's random source.
func (r *Runner) WithRand(rng *rand.Rand) *Runner {
	r.rng = rng
	return r
}

// Tick processes up to batch_size due schedules, oldest-due first. A
// schedule's failure is recorded against that schedule only; Tick itself
// fails only when it cannot start or cannot load the batch.
func (r *Runner) Tick(ctx context.Context) (*TickReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrTickInProgress
	}
	defer r.running.Store(false)

	if r.lock != nil {
		ok, err := r.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire tick lock: %w", err)
		}
		if !ok {
			return nil, ErrTickInProgress
		}
		defer func() {
			if err := r.lock.Unlock(); err != nil {
				slog.Warn("failed to release tick lock", "error", err)
			}
		}()
	}

	started := r.now().UTC()
	report := &TickReport{RunID: uuid.NewString(), StartedAt: started}
	log := slog.With("run_id", report.RunID)

	due, err := r.store.ListDueSchedules(ctx, started, r.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("loading due schedules: %w", err)
	}
	report.Due = len(due)
	report.Outcomes = make([]ScheduleOutcome, len(due))
	if len(due) == 0 {
		log.Debug("no schedules due")
		return report, nil
	}
	log.Info("processing due schedules", "count", len(due))

	var g errgroup.Group
	g.SetLimit(max(r.cfg.Concurrency, 1))
	for i, sch := range due {
		g.Go(func() error {
			report.Outcomes[i] = r.process(ctx, log, sch, started)
			return nil // failures are per schedule
		})
	}
	_ = g.Wait()

	for _, o := range report.Outcomes {
		switch o.Outcome {
		case OutcomeSucceeded:
			report.Succeeded++
		case OutcomeFailed:
			report.Failed++
		case OutcomeDeferred:
			report.Deferred++
		}
	}
	report.Duration = r.now().UTC().Sub(started)
	log.Info("tick complete",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"deferred", report.Deferred,
		"duration", report.Duration,
	)
	return report, nil
}

func (r *Runner) process(ctx context.Context, log *slog.Logger, sch models.Schedule, now time.Time) ScheduleOutcome {
	log = log.With("schedule_id", sch.ID)
	settings := decodeSettings(sch.Settings)
	topic := r.pickTopic(sch.Title, sch.Keywords, now.Year())
	out := ScheduleOutcome{
		ScheduleID:   sch.ID,
		Topic:        topic,
		FailureCount: sch.FailureCount,
		Status:       sch.Status,
	}

	req := generator.Request{
		Topic:       topic,
		Keyword:     strings.Join(sch.Keywords, ", "),
		Tone:        settings.Tone,
		Length:      settings.Length,
		Language:    settings.Language,
		AutoPublish: settings.AutoPublish,
		ScheduleID:  &sch.ID,
	}
	if settings.FeedURL != "" && r.headlines != nil {
		headlines, err := r.headlines.Headlines(ctx, settings.FeedURL, maxHeadlines)
		if err != nil {
			log.Warn("feed headlines unavailable", "feed_url", settings.FeedURL, "error", err)
		}
		req.Headlines = headlines
	}

	callCtx := ctx
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	res, genErr := r.gen.Generate(callCtx, req)
	// State writes must land even while shutting down.
	writeCtx := context.WithoutCancel(ctx)

	if genErr == nil {
		out.ArticleID = res.ArticleID
		next := CalculateNextRun(sch.Frequency, sch.NextRun)
		if err := r.recordSuccess(writeCtx, sch, next, now); err != nil {
			log.Error("recording schedule success", "error", err)
			out.Outcome = OutcomeFailed
			out.Error = err.Error()
			return out
		}
		log.Info("scheduled article generated", "article_id", res.ArticleID, "topic", topic, "next_run", next)
		out.Outcome = OutcomeSucceeded
		return out
	}

	out.Error = genErr.Error()
	if reason := r.deferReason(ctx, genErr); reason != "" {
		log.Warn("schedule deferred", "reason", reason, "error", genErr)
		out.Outcome = OutcomeDeferred
		return out
	}

	count, status, err := r.recordFailure(writeCtx, sch)
	if err != nil {
		log.Error("recording schedule failure", "error", err)
	} else {
		out.FailureCount = count
		out.Status = status
	}
	log.Warn("scheduled generation failed",
		"error", genErr,
		"failure_count", out.FailureCount,
		"status", out.Status,
	)
	out.Outcome = OutcomeFailed
	return out
}

// deferReason reports why a failed attempt should not count against the
// schedule, or "" when it should.
func (r *Runner) deferReason(parent context.Context, err error) string {
	if parent.Err() != nil {
		return "shutdown"
	}
	if errors.Is(err, ai.ErrRateLimit) && !r.cfg.RateLimitCountsAsFailure {
		return "rate limited"
	}
	return ""
}

// recordSuccess advances the schedule. A concurrent toggle bumps the
// version; the advance is re-applied on top of it as long as next_run is
// still the one this run started from.
func (r *Runner) recordSuccess(ctx context.Context, sch models.Schedule, next, now time.Time) error {
	version := sch.Version
	for range casAttempts {
		err := r.store.RecordScheduleSuccess(ctx, sch.ID, version, next, now)
		if !errors.Is(err, storage.ErrConflict) {
			return err
		}
		cur, err := r.store.GetSchedule(ctx, sch.ID)
		if err != nil {
			return err
		}
		if !cur.NextRun.Equal(sch.NextRun) {
			return fmt.Errorf("schedule %d advanced concurrently: %w", sch.ID, storage.ErrConflict)
		}
		version = cur.Version
	}
	return fmt.Errorf("recording success for schedule %d: %w", sch.ID, storage.ErrConflict)
}

func (r *Runner) recordFailure(ctx context.Context, sch models.Schedule) (int, models.ScheduleStatus, error) {
	version := sch.Version
	for range casAttempts {
		count, status, err := r.store.RecordScheduleFailure(ctx, sch.ID, version, r.cfg.MaxFailures)
		if !errors.Is(err, storage.ErrConflict) {
			return count, status, err
		}
		cur, err := r.store.GetSchedule(ctx, sch.ID)
		if err != nil {
			return 0, "", err
		}
		version = cur.Version
	}
	return 0, "", fmt.Errorf("recording failure for schedule %d: %w", sch.ID, storage.ErrConflict)
}

func (r *Runner) pickTopic(title string, keywords []string, year int) string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return PickTopic(r.rng, title, keywords, year)
}

// Run ticks every interval until ctx is done. A tick that is still running
// when the next one is due is skipped.
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil {
				if errors.Is(err, ErrTickInProgress) {
					slog.Warn("skipping tick", "error", err)
					continue
				}
				slog.Error("scheduler tick failed", "error", err)
			}
		}
	}
}

// scheduleSettings are the per-schedule generation options.
type scheduleSettings struct {
	Tone        string
	Length      string
	Language    string
	AutoPublish bool
	FeedURL     string
}

// decodeSettings reads the known keys, ignoring values of the wrong type.
func decodeSettings(m map[string]any) scheduleSettings {
	s := scheduleSettings{Tone: "professional", Length: "medium"}
	if v, ok := m["tone"].(string); ok && v != "" {
		s.Tone = v
	}
	if v, ok := m["length"].(string); ok && v != "" {
		s.Length = v
	}
	if v, ok := m["language"].(string); ok {
		s.Language = v
	}
	if v, ok := m["feed_url"].(string); ok {
		s.FeedURL = v
	}
	switch v := m["auto_publish"].(type) {
	case bool:
		s.AutoPublish = v
	case string:
		s.AutoPublish = v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	case float64:
		s.AutoPublish = v != 0
	}
	return s
}
