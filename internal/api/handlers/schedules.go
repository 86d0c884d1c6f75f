package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/scheduler"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

// ListSchedules handles GET /api/schedules. An optional ?status= filters by
// active, paused or failed.
func ListSchedules(m *scheduler.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.ScheduleStatus(r.URL.Query().Get("status"))

		schedules, err := m.List(r.Context(), status)
		if err != nil {
			if errors.Is(err, scheduler.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("failed to list schedules", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list schedules")
			return
		}
		if schedules == nil {
			schedules = []models.Schedule{}
		}

		writeJSON(w, http.StatusOK, schedules)
	}
}

// CreateSchedule handles POST /api/schedules.
func CreateSchedule(m *scheduler.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduler.AddRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		sch, err := m.Add(r.Context(), req)
		if err != nil {
			if errors.Is(err, scheduler.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("failed to create schedule", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create schedule")
			return
		}

		writeJSON(w, http.StatusCreated, sch)
	}
}

// GetSchedule handles GET /api/schedules/{id}. The response includes the
// number of articles the schedule has produced.
func GetSchedule(m *scheduler.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		details, err := m.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Schedule not found")
				return
			}
			slog.Error("failed to get schedule", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get schedule")
			return
		}

		writeJSON(w, http.StatusOK, details)
	}
}

// DeleteSchedule handles DELETE /api/schedules/{id}.
func DeleteSchedule(m *scheduler.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := m.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Schedule not found")
				return
			}
			slog.Error("failed to delete schedule", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to delete schedule")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ToggleSchedule handles POST /api/schedules/{id}/toggle. It pauses an
// active schedule or resumes a paused one; failed schedules answer 409 and
// must be reset instead.
func ToggleSchedule(m *scheduler.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		status, err := m.Toggle(r.Context(), id)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Schedule not found")
			return
		case errors.Is(err, scheduler.ErrInvalidState):
			writeError(w, http.StatusConflict, "Failed schedules must be reset before they can be toggled")
			return
		case errors.Is(err, storage.ErrConflict):
			writeError(w, http.StatusConflict, "Schedule was modified concurrently, try again")
			return
		default:
			slog.Error("failed to toggle schedule", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to toggle schedule")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
	}
}

// ResetSchedule handles POST /api/schedules/{id}/reset. The schedule becomes
// active with a zero failure count.
func ResetSchedule(m *scheduler.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := m.Reset(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Schedule not found")
				return
			}
			slog.Error("failed to reset schedule", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to reset schedule")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusActive)})
	}
}

// ScheduleStats handles GET /api/schedules/stats.
func ScheduleStats(m *scheduler.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := m.Stats(r.Context())
		if err != nil {
			slog.Error("failed to get schedule stats", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get schedule stats")
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

// RunTick handles POST /api/scheduler/tick. It processes due schedules
// synchronously and returns the tick report. A tick already in progress,
// here or in another process, answers 409.
func RunTick(runner *scheduler.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := runner.Tick(r.Context())
		if err != nil {
			if errors.Is(err, scheduler.ErrTickInProgress) {
				writeError(w, http.StatusConflict, "A scheduler tick is already running")
				return
			}
			slog.Error("scheduler tick failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Scheduler tick failed")
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
