package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

const defaultArticleLimit = 50

// ListArticles handles GET /api/articles. Optional ?schedule_id= restricts
// the list to one schedule's output and ?limit= caps it (default 50).
func ListArticles(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", defaultArticleLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var scheduleID *int64
		if r.URL.Query().Has("schedule_id") {
			id, err := queryInt(r, "schedule_id", 0)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			sid := int64(id)
			scheduleID = &sid
		}

		articles, err := store.ListArticles(r.Context(), scheduleID, limit)
		if err != nil {
			slog.Error("failed to list articles", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list articles")
			return
		}
		if articles == nil {
			articles = []models.Article{}
		}

		writeJSON(w, http.StatusOK, articles)
	}
}

// GetArticle handles GET /api/articles/{id}.
func GetArticle(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		article, err := store.GetArticle(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Article not found")
				return
			}
			slog.Error("failed to get article", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get article")
			return
		}

		writeJSON(w, http.StatusOK, article)
	}
}
