package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dayplan-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(t.Context(), db, DriverSQLite); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLRepository(db, DriverSQLite)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestTaskCreateListDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")

	for i, name := range []string{"zeta", "alpha", "mid"} {
		task := Task{
			Name:          name,
			Deadline:      created.AddDate(0, 0, i+1),
			Tag:           "reading",
			EstimatedTime: 30 + i,
			Priority:      float64(i) + 0.5,
			CreatedAt:     created,
		}
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task %s: %v", name, err)
		}
	}

	tasks, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 3 || tasks[0].Name != "zeta" || tasks[2].Name != "mid" {
		t.Fatalf("tasks not in insertion order: %#v", tasks)
	}
	if tasks[1].Priority != 1.5 || tasks[1].Sections != 1 || tasks[1].ID == "" {
		t.Fatalf("unexpected stored task: %#v", tasks[1])
	}
	if !tasks[0].Deadline.Equal(created.AddDate(0, 0, 1)) {
		t.Fatalf("deadline mismatch: %v", tasks[0].Deadline)
	}

	page, err := repo.ListTasks(ctx, TaskListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].Name != "alpha" {
		t.Fatalf("unexpected page: %#v", page)
	}

	if err := repo.DeleteTask(ctx, "alpha"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := repo.DeleteTask(ctx, "alpha"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateTaskNameRejected(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := Task{Name: "quiz", Deadline: time.Now(), Tag: "reading", EstimatedTime: 20, CreatedAt: time.Now()}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateTask(ctx, task); err == nil {
		t.Fatalf("expected unique constraint error")
	}
}

func TestClassesAndWorkingHours(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.CreateClass(ctx, Class{
		Name:      "Algorithms",
		Days:      []string{"Monday", "Wednesday"},
		StartTime: "10:00",
		EndTime:   "11:15",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("create class: %v", err)
	}
	classes, err := repo.ListClasses(ctx)
	if err != nil {
		t.Fatalf("list classes: %v", err)
	}
	if len(classes) != 1 || !reflect.DeepEqual(classes[0].Days, []string{"Monday", "Wednesday"}) {
		t.Fatalf("unexpected classes: %#v", classes)
	}

	if err := repo.UpsertWorkingHours(ctx, WorkingHours{Day: "Monday", StartTime: "09:00", EndTime: "12:00"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertWorkingHours(ctx, WorkingHours{Day: "Monday", StartTime: "13:00", EndTime: "17:00"}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	hours, err := repo.ListWorkingHours(ctx)
	if err != nil {
		t.Fatalf("list hours: %v", err)
	}
	if len(hours) != 1 || hours[0].StartTime != "13:00" {
		t.Fatalf("expected last write to win: %#v", hours)
	}
}

func TestHistoryFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	deadline := parseRFC3339(t, "2026-02-12T00:00:00Z")

	for _, day := range []string{"2026-02-08", "2026-02-09", "2026-02-11", "2026-02-16"} {
		if err := repo.AppendHistory(ctx, HistoryEntry{
			Name:          "task-" + day,
			Deadline:      deadline,
			Tag:           "reading",
			EstimatedTime: 30,
			ActualTime:    25,
			CompletedDate: day,
			CompletedAt:   "09:30",
		}); err != nil {
			t.Fatalf("append %s: %v", day, err)
		}
	}

	week, err := repo.ListHistory(ctx, HistoryFilter{From: "2026-02-09", To: "2026-02-15"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(week) != 2 || week[0].CompletedDate != "2026-02-09" || week[1].CompletedDate != "2026-02-11" {
		t.Fatalf("unexpected week: %#v", week)
	}

	all, err := repo.ListHistory(ctx, HistoryFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
}

func TestCompleteTaskIsAtomic(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := parseRFC3339(t, "2026-02-09T14:00:00Z")

	if err := repo.CreateTask(ctx, Task{Name: "quiz", Deadline: now, Tag: "reading", EstimatedTime: 30, CreatedAt: now}); err != nil {
		t.Fatalf("create: %v", err)
	}
	state := LearnerState{
		Values:               []QValue{{State: "1_low", Low: 0.1}, {State: "0_medium"}},
		LastAdaptation:       "2026-02-09",
		DefaultEstimatedTime: 60,
	}
	entry := HistoryEntry{Name: "quiz", Deadline: now, Tag: "reading", EstimatedTime: 30, ActualTime: 25, CompletedDate: "2026-02-09", CompletedAt: "08:00"}
	if err := repo.CompleteTask(ctx, "quiz", entry, state); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tasks, _ := repo.ListTasks(ctx, TaskListFilter{})
	history, _ := repo.ListHistory(ctx, HistoryFilter{})
	if len(tasks) != 0 || len(history) != 1 {
		t.Fatalf("unexpected state after complete: tasks=%d history=%d", len(tasks), len(history))
	}

	if err := repo.CompleteTask(ctx, "quiz", entry, state); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	history, _ = repo.ListHistory(ctx, HistoryFilter{})
	if len(history) != 1 {
		t.Fatalf("failed completion must not append history, got %d", len(history))
	}
}

func TestLearnerStateRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	empty, err := repo.LoadLearnerState(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(empty.Values) != 0 || empty.LastAdaptation != "" {
		t.Fatalf("expected empty state, got %#v", empty)
	}

	want := LearnerState{
		Values: []QValue{
			{State: "3_high", Low: -0.1, Medium: 0, High: 0.2},
			{State: "2_medium", Low: 0, Medium: 0.095, High: 0},
		},
		LastAdaptation:       "2026-02-16",
		DefaultEstimatedTime: 120,
	}
	if err := repo.SaveLearnerState(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	want.Values = want.Values[:1]
	if err := repo.SaveLearnerState(ctx, want); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := repo.LoadLearnerState(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("learner state mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestRebind(t *testing.T) {
	query := `INSERT INTO t (a, b) VALUES (?, ?)`
	if got := rebind(DriverSQLite, query); got != query {
		t.Fatalf("sqlite query changed: %q", got)
	}
	if got := rebind(DriverPostgres, query); got != `INSERT INTO t (a, b) VALUES ($1, $2)` {
		t.Fatalf("unexpected postgres query: %q", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestOpenMigratesSQLite(t *testing.T) {
	repo, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()
	if _, err := repo.ListTasks(context.Background(), TaskListFilter{}); err != nil {
		t.Fatalf("list after open: %v", err)
	}
}
