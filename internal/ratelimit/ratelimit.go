// Package ratelimit caps outbound generation requests within a rolling
// window. The in-memory Window serves a single process; Redis shares the
// budget between processes.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Status describes the limiter after a call.
type Status struct {
	Allowed   bool      `json:"allowed"`
	Made      int       `json:"requests_made"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Limiter gates requests.
type Limiter interface {
	// Allow consumes one request if the window has room.
	Allow(ctx context.Context) (Status, error)
	// Status reports usage without consuming.
	Status(ctx context.Context) (Status, error)
}

// Window is an in-memory sliding log of request times.
type Window struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   []time.Time
}

// NewWindow allows limit requests per window.
func NewWindow(limit int, window time.Duration) *Window {
	return &Window{limit: max(limit, 1), window: window, now: time.Now}
}

// WithClock replaces the clock; tests use it.
func (w *Window) WithClock(now func() time.Time) *Window {
	w.now = now
	return w
}

// Allow records a request at the current time when fewer than limit
// requests happened within the trailing window.
func (w *Window) Allow(ctx context.Context) (Status, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	allowed := len(w.hits) < w.limit
	if allowed {
		w.hits = append(w.hits, now)
	}
	st := w.status(now)
	st.Allowed = allowed
	return st, nil
}

// Status reports the current usage.
func (w *Window) Status(ctx context.Context) (Status, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	st := w.status(now)
	st.Allowed = len(w.hits) < w.limit
	return st, nil
}

// prune drops hits that are at least one window old.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.hits) && !w.hits[i].After(cutoff) {
		i++
	}
	w.hits = w.hits[i:]
}

func (w *Window) status(now time.Time) Status {
	st := Status{
		Made:      len(w.hits),
		Limit:     w.limit,
		Remaining: max(w.limit-len(w.hits), 0),
		ResetAt:   now,
	}
	if len(w.hits) > 0 {
		st.ResetAt = w.hits[0].Add(w.window)
	}
	return st
}
