package storage

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openRawSQLite(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateRoundTripCompatibility(t *testing.T) {
	db := openRawSQLite(t, "migrate-roundtrip.db")
	ctx := t.Context()

	if err := MigrateUp(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateDown(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	applied, err := AppliedMigrations(ctx, db)
	if err != nil {
		t.Fatalf("applied after down: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no applied migrations after down, got %v", applied)
	}
	if err := MigrateUp(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLRepository(db, DriverSQLite)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if err := repo.CreateTask(ctx, Task{
		Name:          "Roundtrip task",
		Deadline:      now.AddDate(0, 0, 2),
		Tag:           "reading",
		EstimatedTime: 30,
		Priority:      15.25,
		CreatedAt:     now,
	}); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list after roundtrip failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Roundtrip task" {
		t.Fatalf("unexpected tasks after roundtrip: %#v", got)
	}
}

func TestMigrateUpRecordsEachVersionOnce(t *testing.T) {
	db := openRawSQLite(t, "repeat.db")

	for i := 0; i < 2; i++ {
		if err := MigrateUp(t.Context(), db, DriverSQLite); err != nil {
			t.Fatalf("migrate up #%d: %v", i+1, err)
		}
	}
	applied, err := AppliedMigrations(t.Context(), db)
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if want := []string{"0001_init"}; !reflect.DeepEqual(applied, want) {
		t.Fatalf("applied = %v, want %v", applied, want)
	}
}

func TestLoadMigrationsPairsScripts(t *testing.T) {
	all, err := loadMigrations()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("expected embedded migrations")
	}
	for _, m := range all {
		if m.up == "" || m.down == "" {
			t.Fatalf("migration %s is missing a script", m.version)
		}
	}
}
