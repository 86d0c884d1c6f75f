package models

import "time"

// Frequency is how often a schedule produces a post.
type Frequency string

const (
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyHourly, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// ScheduleStatus is the lifecycle state of a schedule.
type ScheduleStatus string

const (
	StatusActive ScheduleStatus = "active"
	StatusPaused ScheduleStatus = "paused"
	StatusFailed ScheduleStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusFailed:
		return true
	}
	return false
}

// Schedule is a recurring content generation job.
type Schedule struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Keywords     []string       `json:"keywords"`
	Frequency    Frequency      `json:"frequency"`
	NextRun      time.Time      `json:"next_run"`
	LastRun      *time.Time     `json:"last_run,omitempty"`
	Status       ScheduleStatus `json:"status"`
	Settings     map[string]any `json:"settings"`
	FailureCount int            `json:"failure_count"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ScheduleDetails is a schedule plus the number of articles it has produced.
type ScheduleDetails struct {
	Schedule
	GeneratedPosts int `json:"generated_posts"`
}

// ScheduleStats summarizes all schedules.
type ScheduleStats struct {
	Total   int        `json:"total"`
	Active  int        `json:"active"`
	Paused  int        `json:"paused"`
	Failed  int        `json:"failed"`
	NextRun *time.Time `json:"next_run,omitempty"`
}
