package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestDB creates an in-memory SQLite database with migrations applied.
// The database is automatically closed when the test completes.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return db
}

// newTestStore creates an in-memory Store with migrations applied.
// The store is automatically closed when the test completes.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db := newTestDB(t)
	return NewStore(db)
}

func TestOpenDatabase_InMemory(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase(:memory:) error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpenDatabase_CreatesDirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "deep", "test.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase(%q) error: %v", dbPath, err)
	}
	defer db.Close()

	// Verify the file was created.
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created at %q: %v", dbPath, err)
	}
}

func TestRunMigrations_AppliesSchema(t *testing.T) {
	db := newTestDB(t)

	objects := []struct{ kind, name string }{
		{"table", "schedules"},
		{"table", "articles"},
		{"table", "generation_logs"},
		{"table", "schema_migrations"},
		{"index", "idx_schedules_due"},
		{"index", "idx_articles_schedule"},
		{"index", "idx_logs_created"},
		{"index", "idx_logs_schedule"},
	}
	for _, o := range objects {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = ? AND name = ?`, o.kind, o.name).Scan(&name)
		if err != nil {
			t.Errorf("%s %q not found: %v", o.kind, o.name, err)
		}
	}

	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	var recorded int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&recorded); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if recorded != len(migrations) {
		t.Errorf("recorded %d migrations, embedded %d", recorded, len(migrations))
	}
}

func TestRunMigrations_SecondRunIsNoop(t *testing.T) {
	db := newTestDB(t)
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if count != 2 {
		t.Fatalf("schema_migrations has %d rows, want 2", count)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations")
	}
	for i, m := range migrations {
		if m.version != i+1 {
			t.Errorf("migration %d (%s) has version %d, want contiguous versions from 1", i, m.name, m.version)
		}
		if m.body == "" {
			t.Errorf("migration %s is empty", m.name)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		filename string
		want     int
	}{
		{"001_initial_schema.sql", 1},
		{"012_add_column.sql", 12},
		{"initial.sql", 0},
		{"abc_schema.sql", 0},
	}
	for _, tt := range tests {
		if got := parseVersion(tt.filename); got != tt.want {
			t.Errorf("parseVersion(%q) = %d, want %d", tt.filename, got, tt.want)
		}
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`INSERT INTO generation_logs (schedule_id, prompt, response, model, status, created_at)
		VALUES (999, '', '', 'gpt-4o', 'failed', '2025-01-01 00:00:00')`)
	if err == nil {
		t.Fatal("insert referencing a missing schedule should fail with foreign keys on")
	}
}

func TestNewStore(t *testing.T) {
	db := newTestDB(t)
	if NewStore(db).DB() != db {
		t.Fatal("NewStore did not keep the provided *sql.DB")
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "stored layout", input: "2025-01-15 10:30:00"},
		{name: "RFC 3339", input: "2025-01-15T10:30:00Z"},
		{name: "no zone", input: "2025-01-15T10:30:00"},
		{name: "invalid", input: "next tuesday", zero: true},
		{name: "empty", input: "", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTime(tt.input)
			if tt.zero {
				if !got.IsZero() {
					t.Errorf("parseTime(%q) = %v, want zero", tt.input, got)
				}
				return
			}
			if !got.Equal(want) {
				t.Errorf("parseTime(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestParseTimePtr(t *testing.T) {
	empty, bad, valid := "", "garbage", "2025-01-15 10:30:00"
	if parseTimePtr(nil) != nil || parseTimePtr(&empty) != nil || parseTimePtr(&bad) != nil {
		t.Error("nil, empty and unparseable input should all give nil")
	}
	got := parseTimePtr(&valid)
	if got == nil || got.Format(timeLayout) != valid {
		t.Errorf("parseTimePtr(%q) = %v", valid, got)
	}
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	in := time.Date(2025, 3, 1, 17, 30, 0, 0, loc)
	if got := formatTime(in); got != "2025-03-01 10:30:00" {
		t.Errorf("formatTime = %q, want UTC rendering", got)
	}
	if formatTimePtr(nil) != nil {
		t.Error("formatTimePtr(nil) should be nil")
	}
}
