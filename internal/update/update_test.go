package update

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/app"
	"github.com/sandeepkv93/dayplan/internal/config"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/storage"
)

func newTestModel(t *testing.T) (Model, *app.Container) {
	t.Helper()
	cfg := config.DefaultRuntimeConfig()
	cfg.Learner.Seed = 1
	cfg.Learner.Epsilon = 0
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	repo, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "dayplan.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	clock := model.NewFixedClock(time.Date(2026, 2, 9, 8, 0, 0, 0, loc))
	c, err := app.New(context.Background(), cfg, app.Deps{Repo: repo, Clock: clock})
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	return NewModel(context.Background(), c, Options{}), c
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return next
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runCommand(t *testing.T, m Model, line string) Model {
	t.Helper()
	m = press(t, m, runes("/"))
	if !m.Palette.Active {
		t.Fatalf("expected palette to open")
	}
	m = press(t, m, runes(line))
	return press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t)
	if m.CurrentView != ViewSchedule {
		t.Fatalf("expected default view %q, got %q", ViewSchedule, m.CurrentView)
	}
	if got := m.Date.String(); got != "2026-02-09" {
		t.Fatalf("expected date 2026-02-09, got %s", got)
	}
	if got := m.WeekStart.String(); got != "2026-02-09" {
		t.Fatalf("expected week start 2026-02-09, got %s", got)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t)
	for key, want := range map[string]View{"2": ViewNext, "3": ViewSummary, "4": ViewWeek, "1": ViewSchedule} {
		m = press(t, m, runes(key))
		if m.CurrentView != want {
			t.Fatalf("key %s: expected %q, got %q", key, want, m.CurrentView)
		}
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, SwitchViewMsg{View: ViewWeek})
	if m.CurrentView != ViewWeek {
		t.Fatalf("expected week view, got %q", m.CurrentView)
	}
	m = press(t, m, SwitchViewMsg{View: View("Unknown")})
	if m.CurrentView != ViewWeek {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status %+v", m.Status)
	}
	m = press(t, m, AppErrorMsg{Err: errors.New("boom")})
	if !m.Status.IsError || m.LastError == nil {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	m = press(t, m, ClearStatusMsg{})
	if m.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", m.Status)
	}
}

func TestPaletteBuildsDayAndCompletesTask(t *testing.T) {
	m, c := newTestModel(t)

	m = runCommand(t, m, "work monday 09:00 17:00")
	if m.Status.IsError {
		t.Fatalf("work: %s", m.Status.Text)
	}
	m = runCommand(t, m, "class math days:mon start:08:00 end:09:00")
	if m.Status.IsError {
		t.Fatalf("class: %s", m.Status.Text)
	}
	m = runCommand(t, m, "task essay draft due:2026-02-12 est:60")
	if m.Status.IsError {
		t.Fatalf("task: %s", m.Status.Text)
	}
	if len(c.Tasks()) != 1 || c.Tasks()[0].Name != "essay draft" {
		t.Fatalf("expected registered task, got %+v", c.Tasks())
	}

	if len(m.Schedule) != 2 {
		t.Fatalf("expected class and working block, got %d entries", len(m.Schedule))
	}
	if tasks := m.Schedule[1].Tasks; len(tasks) != 1 || tasks[0].Name != "essay draft" {
		t.Fatalf("expected packed task, got %+v", tasks)
	}
	if !strings.Contains(m.View(), "essay draft") {
		t.Fatalf("expected schedule view to show the task")
	}

	m = runCommand(t, m, "done essay draft 45")
	if m.Status.IsError {
		t.Fatalf("done: %s", m.Status.Text)
	}
	if m.Daily.CompletedTasks != 1 || m.Daily.TotalStudyTime != 45 {
		t.Fatalf("unexpected daily summary %+v", m.Daily)
	}
	if m.Weekly.TotalStudyTime != 45 {
		t.Fatalf("unexpected weekly total %d", m.Weekly.TotalStudyTime)
	}
}

func TestPaletteErrorsShowInStatus(t *testing.T) {
	m, _ := newTestModel(t)
	m = runCommand(t, m, "bogus")
	if !m.Status.IsError {
		t.Fatalf("expected parse error, got %+v", m.Status)
	}
	m = runCommand(t, m, "done ghost 10")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "not found") {
		t.Fatalf("expected not found error, got %+v", m.Status)
	}
	if m.Palette.Active {
		t.Fatalf("expected palette to close after a command")
	}
}

func TestPaletteEscapeCloses(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("/"))
	m = press(t, m, runes("next"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Palette.Input != "" {
		t.Fatalf("expected closed empty palette, got %+v", m.Palette)
	}
}

func TestNextViewCyclesEnergy(t *testing.T) {
	m, _ := newTestModel(t)
	m = runCommand(t, m, "task quick due:2026-02-10 est:20")
	m = press(t, m, runes("2"))
	if !m.Next.Suggested {
		t.Fatalf("expected auto energy by default")
	}

	m = press(t, m, runes("e"))
	if m.Next.Energy != model.EnergyLow || m.Next.Suggested {
		t.Fatalf("expected low energy, got %+v", m.Next)
	}
	if !m.Next.Found || m.Next.Task.Name != "quick" {
		t.Fatalf("expected quick task at low energy, got %+v", m.Next)
	}

	for range model.EnergyTiers {
		m = press(t, m, runes("e"))
	}
	if m.Next.Energy != "" {
		t.Fatalf("expected cycle back to auto, got %q", m.Next.Energy)
	}
}

func TestScheduleNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("l"))
	if got := m.Date.String(); got != "2026-02-10" {
		t.Fatalf("expected next day, got %s", got)
	}
	m = press(t, m, runes("t"))
	if got := m.Date.String(); got != "2026-02-09" {
		t.Fatalf("expected today, got %s", got)
	}
	m = press(t, m, runes("4"))
	m = press(t, m, runes("h"))
	if got := m.WeekStart.String(); got != "2026-02-02" {
		t.Fatalf("expected previous week, got %s", got)
	}
}

func TestAdaptTickReschedules(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(AdaptTickMsg{})
	if cmd == nil {
		t.Fatalf("expected the next adapt tick to be scheduled")
	}
	if next := updated.(Model); next.Status.IsError {
		t.Fatalf("unexpected error %s", next.Status.Text)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(runes("q"))
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatalf("expected quit")
	}
}
