package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/report"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

const (
	defaultLogsPerPage = 20
	defaultStatsDays   = 30
	maxDays            = 365
)

// ListLogs handles GET /api/logs?page=&per_page=.
func ListLogs(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page", 1)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		perPage, err := queryInt(r, "per_page", defaultLogsPerPage)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := store.ListLogs(r.Context(), page, min(perPage, 100))
		if err != nil {
			slog.Error("failed to list generation logs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list logs")
			return
		}
		if result.Logs == nil {
			result.Logs = []models.GenerationLog{}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// GetLog handles GET /api/logs/{id}.
func GetLog(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		entry, err := store.GetLog(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Log entry not found")
				return
			}
			slog.Error("failed to get generation log", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get log entry")
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

// LogStats handles GET /api/logs/stats?days=. The window defaults to 30 days
// and is capped at 365.
func LogStats(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := queryInt(r, "days", defaultStatsDays)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		days = min(days, maxDays)

		since := time.Now().AddDate(0, 0, -days)
		stats, err := store.LogStats(r.Context(), since, days)
		if err != nil {
			slog.Error("failed to compute log stats", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to compute log stats")
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

// ExportLogs handles GET /api/logs/export. It answers a CSV attachment, or
// 404 when there is nothing to export.
func ExportLogs(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := store.ExportLogs(r.Context())
		if err != nil {
			slog.Error("failed to export generation logs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to export logs")
			return
		}
		if len(logs) == 0 {
			writeError(w, http.StatusNotFound, "No logs to export")
			return
		}

		// Render fully before writing headers so a failure can still be a 500.
		var buf bytes.Buffer
		if err := report.WriteLogsCSV(&buf, logs); err != nil {
			slog.Error("failed to render log export", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to export logs")
			return
		}

		filename := report.ExportFilename(time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// PurgeLogs handles DELETE /api/logs?older_than_days=. Without the parameter
// the configured retention period is used.
func PurgeLogs(store *storage.Store, retentionDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := queryInt(r, "older_than_days", retentionDays)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		days = min(days, maxDays)

		cutoff := time.Now().AddDate(0, 0, -days)
		deleted, err := store.PurgeLogsBefore(r.Context(), cutoff)
		if err != nil {
			slog.Error("failed to purge generation logs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to purge logs")
			return
		}
		slog.Info("generation logs purged", "older_than_days", days, "deleted", deleted)

		writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted, "older_than_days": days})
	}
}
