package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

func insertLog(t *testing.T, store *storage.Store, l models.GenerationLog) models.GenerationLog {
	t.Helper()
	if l.Status == "" {
		l.Status = models.LogCompleted
	}
	if err := store.InsertLog(context.Background(), &l); err != nil {
		t.Fatalf("InsertLog: %v", err)
	}
	return l
}

func TestListLogs(t *testing.T) {
	store := newTestStore(t)
	for i := range 3 {
		insertLog(t, store, models.GenerationLog{Model: "gpt-4o", TokensUsed: 100 * (i + 1)})
	}

	r := httptest.NewRequest(http.MethodGet, "/api/logs?page=2&per_page=2", nil)
	w := httptest.NewRecorder()
	ListLogs(store).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var page models.LogPage
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if page.Total != 3 || page.Page != 2 || page.PerPage != 2 || len(page.Logs) != 1 {
		t.Errorf("page = %+v", page)
	}

	w = httptest.NewRecorder()
	ListLogs(store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs?page=x", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad page: got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetLog(t *testing.T) {
	store := newTestStore(t)
	l := insertLog(t, store, models.GenerationLog{Model: "gpt-4o", Status: models.LogFailed, Error: "timeout"})

	id := strconv.FormatInt(l.ID, 10)
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/api/logs/"+id, nil), "id", id)
	w := httptest.NewRecorder()
	GetLog(store).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	var got models.GenerationLog
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Error != "timeout" || got.Status != models.LogFailed {
		t.Errorf("log = %+v", got)
	}

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/api/logs/404", nil), "id", "404")
	w = httptest.NewRecorder()
	GetLog(store).ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing log: got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestLogStats(t *testing.T) {
	store := newTestStore(t)
	insertLog(t, store, models.GenerationLog{Model: "gpt-4o", TokensUsed: 1000, Cost: 0.005})
	insertLog(t, store, models.GenerationLog{Model: "gpt-4o", Status: models.LogFailed})
	insertLog(t, store, models.GenerationLog{Model: "gpt-4", TokensUsed: 500, CreatedAt: time.Now().AddDate(0, 0, -10)})

	tests := []struct {
		query     string
		wantTotal int
		wantDays  int
	}{
		{"", 3, 30},
		{"?days=7", 2, 7},
		{"?days=1000", 3, 365},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		LogStats(store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs/stats"+tt.query, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: got status %d", tt.query, w.Code)
		}
		var stats models.LogStats
		if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if stats.TotalGenerations != tt.wantTotal || stats.Days != tt.wantDays {
			t.Errorf("%s: stats = %+v", tt.query, stats)
		}
		if stats.MostPopularModel != "gpt-4o" {
			t.Errorf("%s: most popular model = %q", tt.query, stats.MostPopularModel)
		}
	}
}

func TestExportLogs(t *testing.T) {
	store := newTestStore(t)

	w := httptest.NewRecorder()
	ExportLogs(store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs/export", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty export: got status %d, want %d", w.Code, http.StatusNotFound)
	}

	insertLog(t, store, models.GenerationLog{Model: "gpt-4o", TokensUsed: 1200, Cost: 0.006})

	w = httptest.NewRecorder()
	ExportLogs(store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "autoscribe-logs-") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][1] != "N/A" || rows[1][3] != "gpt-4o" || rows[1][4] != "1200" {
		t.Errorf("rows = %q", rows)
	}
}

func TestPurgeLogs(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	insertLog(t, store, models.GenerationLog{Model: "m", CreatedAt: now.AddDate(0, 0, -40)})
	insertLog(t, store, models.GenerationLog{Model: "m", CreatedAt: now.AddDate(0, 0, -10)})
	insertLog(t, store, models.GenerationLog{Model: "m", CreatedAt: now})

	purge := func(query string) map[string]float64 {
		t.Helper()
		w := httptest.NewRecorder()
		PurgeLogs(store, 30).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/logs"+query, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: got status %d; body: %s", query, w.Code, w.Body.String())
		}
		var got map[string]float64
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		return got
	}

	if got := purge(""); got["deleted"] != 1 || got["older_than_days"] != 30 {
		t.Errorf("default retention purge = %v", got)
	}
	if got := purge("?older_than_days=5"); got["deleted"] != 1 {
		t.Errorf("5-day purge = %v", got)
	}

	w := httptest.NewRecorder()
	PurgeLogs(store, 30).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/logs?older_than_days=0", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero days: got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}
