// Package scheduler manages recurring generation schedules and runs the
// ones that are due.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

// ErrInvalidState is returned for a transition the schedule's status does
// not allow, such as toggling a failed schedule.
var ErrInvalidState = errors.New("invalid schedule state")

// ErrInvalidInput wraps validation failures of caller-supplied values.
var ErrInvalidInput = errors.New("invalid input")

// casAttempts bounds retries of a version-checked update that keeps losing
// to concurrent writers.
const casAttempts = 3

// Manager is the user-facing facade over stored schedules.
type Manager struct {
	store *storage.Store
	now   func() time.Time
}

// NewManager creates a Manager backed by store.
func NewManager(store *storage.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// WithClock replaces the time source used for new schedules.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// AddRequest describes a new schedule.
type AddRequest struct {
	Title     string           `json:"title" yaml:"title"`
	Keywords  []string         `json:"keywords" yaml:"keywords"`
	Frequency models.Frequency `json:"frequency" yaml:"frequency"`
	Settings  map[string]any   `json:"settings" yaml:"settings"`
	// Start is the first run. When nil the first run is one period from now.
	Start *time.Time `json:"start,omitempty" yaml:"start"`
}

// Add validates and stores a new active schedule.
func (m *Manager) Add(ctx context.Context, req AddRequest) (*models.Schedule, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if !req.Frequency.Valid() {
		return nil, fmt.Errorf("invalid frequency %q: %w", req.Frequency, ErrInvalidInput)
	}

	now := m.now().UTC()
	next := CalculateNextRun(req.Frequency, now)
	if req.Start != nil {
		next = req.Start.UTC()
	}

	var keywords []string
	for _, k := range req.Keywords {
		keywords = append(keywords, storage.SplitKeywords(k)...)
	}

	sch := &models.Schedule{
		Title:     title,
		Keywords:  keywords,
		Frequency: req.Frequency,
		NextRun:   next,
		Status:    models.StatusActive,
		Settings:  req.Settings,
		CreatedAt: now,
	}
	if err := m.store.CreateSchedule(ctx, sch); err != nil {
		return nil, err
	}
	slog.Info("schedule added", "id", sch.ID, "title", sch.Title, "next_run", sch.NextRun)
	return sch, nil
}

// Get returns a schedule and the number of articles it has produced.
func (m *Manager) Get(ctx context.Context, id int64) (*models.ScheduleDetails, error) {
	sch, err := m.store.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := m.store.ScheduleArticleCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ScheduleDetails{Schedule: *sch, GeneratedPosts: n}, nil
}

// List returns schedules with the given status, or all when status is empty.
func (m *Manager) List(ctx context.Context, status models.ScheduleStatus) ([]models.Schedule, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("invalid status %q: %w", status, ErrInvalidInput)
	}
	return m.store.ListSchedules(ctx, status)
}

// Stats summarizes all schedules.
func (m *Manager) Stats(ctx context.Context) (*models.ScheduleStats, error) {
	return m.store.ScheduleStats(ctx)
}

// Toggle flips an active schedule to paused and back. Failed schedules need
// Reset instead and yield ErrInvalidState.
func (m *Manager) Toggle(ctx context.Context, id int64) (models.ScheduleStatus, error) {
	for range casAttempts {
		sch, err := m.store.GetSchedule(ctx, id)
		if err != nil {
			return "", err
		}

		var next models.ScheduleStatus
		switch sch.Status {
		case models.StatusActive:
			next = models.StatusPaused
		case models.StatusPaused:
			next = models.StatusActive
		default:
			return "", fmt.Errorf("toggling %s schedule %d: %w", sch.Status, id, ErrInvalidState)
		}

		err = m.store.SetScheduleStatus(ctx, id, sch.Version, next)
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		slog.Info("schedule toggled", "id", id, "from", sch.Status, "to", next)
		return next, nil
	}
	return "", fmt.Errorf("toggling schedule %d: %w", id, storage.ErrConflict)
}

// Reset reactivates a schedule and clears its failure count.
func (m *Manager) Reset(ctx context.Context, id int64) error {
	if err := m.store.ResetSchedule(ctx, id); err != nil {
		return err
	}
	slog.Info("schedule reset", "id", id)
	return nil
}

// Delete removes a schedule.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if err := m.store.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	slog.Info("schedule deleted", "id", id)
	return nil
}

// importDocument is the YAML layout accepted by Import.
type importDocument struct {
	Schedules []importEntry `yaml:"schedules"`
}

type importEntry struct {
	Title     string         `yaml:"title"`
	Keywords  yamlKeywords   `yaml:"keywords"`
	Frequency string         `yaml:"frequency"`
	Settings  map[string]any `yaml:"settings"`
	Start     *time.Time     `yaml:"start"`
}

// yamlKeywords accepts either a list or a comma-separated string.
type yamlKeywords []string

func (k *yamlKeywords) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*k = storage.SplitKeywords(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*k = list
	return nil
}

// Import adds every schedule in a YAML document of the form
//
//	schedules:
//	  - title: Go tips
//	    keywords: [concurrency, testing]
//	    frequency: weekly
//	    settings: {tone: casual}
//
// Entries are validated before any is stored.
func (m *Manager) Import(ctx context.Context, r io.Reader) ([]models.Schedule, error) {
	var doc importDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Schedule{}, nil
		}
		return nil, fmt.Errorf("decoding schedules: %w: %w", ErrInvalidInput, err)
	}

	reqs := make([]AddRequest, 0, len(doc.Schedules))
	for i, e := range doc.Schedules {
		req := AddRequest{
			Title:     e.Title,
			Keywords:  e.Keywords,
			Frequency: models.Frequency(strings.ToLower(strings.TrimSpace(e.Frequency))),
			Settings:  e.Settings,
			Start:     e.Start,
		}
		if strings.TrimSpace(req.Title) == "" {
			return nil, fmt.Errorf("schedule %d: title is required: %w", i+1, ErrInvalidInput)
		}
		if !req.Frequency.Valid() {
			return nil, fmt.Errorf("schedule %d: invalid frequency %q: %w", i+1, e.Frequency, ErrInvalidInput)
		}
		reqs = append(reqs, req)
	}

	added := make([]models.Schedule, 0, len(reqs))
	for _, req := range reqs {
		sch, err := m.Add(ctx, req)
		if err != nil {
			return added, err
		}
		added = append(added, *sch)
	}
	return added, nil
}
