package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hoanghai1803/autoscribe/internal/models"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

const completionContent = `[TITLE]Five Go Testing Tips[/TITLE]
[META]Practical advice for testing Go code.[/META]
[EXCERPT]Tips for better Go tests.[/EXCERPT]
[CONTENT]<h2>Why test?</h2><p>Tests keep Go code honest.</p>[/CONTENT]`

type cliTestEnv struct {
	configPath string
	dataDir    string
	chatCalls  atomic.Int32
}

// newFakeOpenAI serves the subset of the OpenAI API the CLI touches.
func newFakeOpenAI(t *testing.T, env *cliTestEnv) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			fmt.Fprint(w, `{"data":[{"id":"gpt-4o"}]}`)
		case "/v1/chat/completions":
			env.chatCalls.Add(1)
			content, _ := json.Marshal(completionContent)
			fmt.Fprintf(w, `{"model":"gpt-4o","choices":[{"message":{"content":%s}}],"usage":{"total_tokens":900}}`, content)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		dataDir:    filepath.Join(base, "data"),
	}
	srv := newFakeOpenAI(t, env)

	t.Setenv("AI_API_KEY", "test-key")
	content := fmt.Sprintf(`[ai]
provider = "openai"
model = "gpt-4o"
base_url = %q
max_retries = 1

[logs]
level = "error"
`, srv.URL+"/v1")
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath, "--data-dir", env.dataDir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func listSchedulesJSON(t *testing.T, env *cliTestEnv) []models.Schedule {
	t.Helper()
	out, _, err := runCLI(t, env, "schedules", "list", "--json")
	if err != nil {
		t.Fatalf("schedules list: %v", err)
	}
	var schedules []models.Schedule
	if err := json.Unmarshal([]byte(out), &schedules); err != nil {
		t.Fatalf("decode schedules: %v\n%s", err, out)
	}
	return schedules
}

func TestCLISchedulesLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "schedules", "list")
	if err != nil {
		t.Fatalf("schedules list: %v", err)
	}
	requireContains(t, out, "No schedules")

	out, _, err = runCLI(t, env, "schedules", "add",
		"--title", "Go testing", "--keywords", "table tests,fuzzing", "--frequency", "weekly", "--tone", "casual")
	if err != nil {
		t.Fatalf("schedules add: %v", err)
	}
	requireContains(t, out, `Added schedule 1 "Go testing"`)

	schedules := listSchedulesJSON(t, env)
	if len(schedules) != 1 {
		t.Fatalf("got %d schedules, want 1", len(schedules))
	}
	if got := schedules[0].Keywords; len(got) != 2 || got[1] != "fuzzing" {
		t.Errorf("keywords = %v", got)
	}
	if schedules[0].Settings["tone"] != "casual" {
		t.Errorf("settings = %v", schedules[0].Settings)
	}

	out, _, err = runCLI(t, env, "schedules", "list")
	if err != nil {
		t.Fatalf("schedules list: %v", err)
	}
	requireContains(t, out, "Go testing")
	requireContains(t, out, "weekly")

	out, _, err = runCLI(t, env, "schedules", "toggle", "1")
	if err != nil {
		t.Fatalf("schedules toggle: %v", err)
	}
	requireContains(t, out, "now paused")

	out, _, err = runCLI(t, env, "schedules", "reset", "1")
	if err != nil {
		t.Fatalf("schedules reset: %v", err)
	}
	requireContains(t, out, "reset and active")

	if _, _, err := runCLI(t, env, "schedules", "delete", "1"); err != nil {
		t.Fatalf("schedules delete: %v", err)
	}
	if _, _, err := runCLI(t, env, "schedules", "delete", "1"); err == nil {
		t.Fatal("deleting a missing schedule should fail")
	}
	if _, _, err := runCLI(t, env, "schedules", "toggle", "abc"); err == nil {
		t.Fatal("non-numeric id should fail")
	}
}

func TestCLISchedulesImport(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(t.TempDir(), "schedules.yaml")
	doc := `schedules:
  - title: Go tips
    keywords: [concurrency]
    frequency: daily
  - title: Rust news
    keywords: "ownership, async"
    frequency: monthly
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write import file: %v", err)
	}

	out, _, err := runCLI(t, env, "schedules", "import", path)
	if err != nil {
		t.Fatalf("schedules import: %v", err)
	}
	requireContains(t, out, "Imported 2 schedules")

	if got := listSchedulesJSON(t, env); len(got) != 2 {
		t.Errorf("got %d schedules, want 2", len(got))
	}
}

func TestCLITickAndLogs(t *testing.T) {
	env := setupCLITestEnv(t)

	start := time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
	if _, _, err := runCLI(t, env, "schedules", "add", "--title", "Go testing", "--keywords", "fuzzing", "--start", start); err != nil {
		t.Fatalf("schedules add: %v", err)
	}

	out, _, err := runCLI(t, env, "tick")
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	requireContains(t, out, "1 due, 1 succeeded")
	if n := env.chatCalls.Load(); n != 1 {
		t.Errorf("chat calls = %d, want 1", n)
	}

	// The schedule moved a day ahead, so a second tick has nothing to do.
	out, _, err = runCLI(t, env, "tick", "--json")
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	requireContains(t, out, `"due": 0`)

	out, _, err = runCLI(t, env, "logs", "list")
	if err != nil {
		t.Fatalf("logs list: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "gpt-4o")

	out, _, err = runCLI(t, env, "logs", "stats", "--json")
	if err != nil {
		t.Fatalf("logs stats: %v", err)
	}
	var stats models.LogStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalGenerations != 1 || stats.TotalTokens != 900 {
		t.Errorf("stats = %+v", stats)
	}

	out, _, err = runCLI(t, env, "logs", "export")
	if err != nil {
		t.Fatalf("logs export: %v", err)
	}
	requireContains(t, out, "ID,Post ID,Post Title,Model,Tokens Used,Cost,Status,Created At")
	requireContains(t, out, "Five Go Testing Tips")

	out, _, err = runCLI(t, env, "logs", "purge", "--older-than-days", "1")
	if err != nil {
		t.Fatalf("logs purge: %v", err)
	}
	requireContains(t, out, "Deleted 0 log entries older than 1 days")

	if _, _, err := runCLI(t, env, "logs", "stats", "--days", "0"); err == nil {
		t.Fatal("--days 0 should fail")
	}
}

func TestCLIAnalyzeFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(t.TempDir(), "post.html")
	html := "<h2>What is a goroutine?</h2><p>A goroutine is a lightweight thread. Goroutines are cheap.</p>"
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatalf("write content: %v", err)
	}

	out, _, err := runCLI(t, env, "analyze", "--file", path, "--title", "Goroutines explained", "--keyword", "goroutine")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "Readability")
	requireContains(t, out, "AI overview compliance")

	out, _, err = runCLI(t, env, "analyze", "--file", path, "--keyword", "goroutine", "--json")
	if err != nil {
		t.Fatalf("analyze --json: %v", err)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if _, ok := result["aio_compliance"]; !ok {
		t.Errorf("analysis missing aio_compliance: %v", result)
	}

	if _, _, err := runCLI(t, env, "analyze"); err == nil {
		t.Fatal("analyze without input should fail")
	}
}

func TestCLITestConnection(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "test-connection")
	if err != nil {
		t.Fatalf("test-connection: %v", err)
	}
	requireContains(t, out, "Connected to openai")
}

func TestPurgeOldLogs(t *testing.T) {
	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	store := storage.NewStore(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, age := range []int{45, 31, 29} {
		l := &models.GenerationLog{Model: "gpt-4o", Status: models.LogCompleted, CreatedAt: now.AddDate(0, 0, -age)}
		if err := store.InsertLog(ctx, l); err != nil {
			t.Fatalf("insert log: %v", err)
		}
	}

	if n := purgeOldLogs(ctx, store, 30, now); n != 2 {
		t.Errorf("purged %d, want 2", n)
	}
	if n := purgeOldLogs(ctx, store, 30, now); n != 0 {
		t.Errorf("second purge removed %d, want 0", n)
	}
}
