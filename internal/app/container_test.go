package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/dayplan/internal/config"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cfg   config.RuntimeConfig
	repo  *storage.SQLRepository
	clock *model.FixedClock
	loc   *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultRuntimeConfig()
	cfg.Learner.Seed = 1
	cfg.Learner.Epsilon = 0
	loc, err := cfg.Location()
	require.NoError(t, err)

	repo, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "dayplan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return &fixture{
		cfg:   cfg,
		repo:  repo,
		clock: model.NewFixedClock(time.Date(2026, 2, 9, 8, 0, 0, 0, loc)),
		loc:   loc,
	}
}

func (f *fixture) open(t *testing.T) *Container {
	t.Helper()
	c, err := New(context.Background(), f.cfg, Deps{Repo: f.repo, Clock: f.clock})
	require.NoError(t, err)
	return c
}

func (f *fixture) clockTime(t *testing.T, raw string) model.ClockTime {
	t.Helper()
	c, err := model.ParseClockTime(raw)
	require.NoError(t, err)
	return c
}

// Deadlines come back from storage in an equal instant but a distinct *time.Location.
func taskKeys(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, fmt.Sprintf("%s|%s|%s|%d|%d|%v", t.Name, t.Deadline.UTC().Format(time.RFC3339), t.Tag, t.EstimatedTime, t.Sections, t.Priority))
	}
	return out
}

func historyKeys(history []model.HistoryEntry) []string {
	out := make([]string, 0, len(history))
	for _, h := range history {
		out = append(out, fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s", h.Name, h.Deadline.UTC().Format(time.RFC3339), h.Tag, h.EstimatedTime, h.ActualTime, h.CompletedDate, h.CompletedAt))
	}
	return out
}

func TestContainer_StateSurvivesReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	monday := model.NewDate(2026, 2, 9)

	c := f.open(t)
	_, err := c.AddTask(ctx, "essay", monday.AddDays(1).In(f.loc), "writing", 90, 2)
	require.NoError(t, err)
	_, err = c.AddTask(ctx, "quiz", monday.AddDays(3).In(f.loc), "reading", 30, 0)
	require.NoError(t, err)
	_, err = c.AddClass(ctx, "Algorithms", []string{"mon", "wed"}, f.clockTime(t, "10:00"), f.clockTime(t, "11:00"))
	require.NoError(t, err)
	_, err = c.SetWorkingHours(ctx, "monday", f.clockTime(t, "09:00"), f.clockTime(t, "13:00"))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	entry, err := c.CompleteTask(ctx, "quiz", 25)
	require.NoError(t, err)
	assert.Equal(t, "09:00", entry.CompletedAt.String())

	reopened := f.open(t)
	assert.Equal(t, taskKeys(c.Engine().Tasks()), taskKeys(reopened.Engine().Tasks()))
	assert.Equal(t, c.Engine().Classes(), reopened.Engine().Classes())
	assert.Equal(t, historyKeys(c.Engine().History()), historyKeys(reopened.Engine().History()))
	assert.Equal(t, c.Engine().WorkingHours(), reopened.Engine().WorkingHours())
	assert.Equal(t, c.Engine().LearnerState(), reopened.Engine().LearnerState())

	prefs := c.Preferences("", 0, 0)
	assert.Equal(t, c.Schedule(monday, prefs), reopened.Schedule(monday, prefs))
}

func TestContainer_DuplicateTaskIsNotPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.open(t)

	deadline := model.NewDate(2026, 2, 12).In(f.loc)
	_, err := c.AddTask(ctx, "quiz", deadline, "reading", 30, 1)
	require.NoError(t, err)
	_, err = c.AddTask(ctx, "quiz", deadline, "reading", 30, 1)
	require.ErrorIs(t, err, scheduler.ErrDuplicateTask)

	stored, err := f.repo.ListTasks(ctx, storage.TaskListFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestContainer_InvalidClassIsNotPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.open(t)

	_, err := c.AddClass(ctx, "Lab", []string{"friday"}, f.clockTime(t, "15:00"), f.clockTime(t, "14:00"))
	require.ErrorIs(t, err, model.ErrInvalidInterval)

	stored, err := f.repo.ListClasses(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestContainer_RemoveTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.open(t)

	_, err := c.AddTask(ctx, "quiz", model.NewDate(2026, 2, 12).In(f.loc), "reading", 30, 1)
	require.NoError(t, err)
	require.NoError(t, c.RemoveTask(ctx, "quiz"))
	require.ErrorIs(t, c.RemoveTask(ctx, "quiz"), scheduler.ErrTaskNotFound)

	assert.Empty(t, f.open(t).Engine().Tasks())
}

func TestContainer_AdaptationIsPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.open(t)

	_, err := c.AddTask(ctx, "quiz", model.NewDate(2026, 2, 12).In(f.loc), "reading", 30, 1)
	require.NoError(t, err)
	_, err = c.CompleteTask(ctx, "quiz", 20)
	require.NoError(t, err)

	adapted, err := c.MaybeAdapt(ctx)
	require.NoError(t, err)
	assert.False(t, adapted)

	f.clock.Advance(7 * 24 * time.Hour)
	adapted, err = c.MaybeAdapt(ctx)
	require.NoError(t, err)
	assert.True(t, adapted)
	assert.Equal(t, 30, c.Engine().Defaults().EstimatedTime)
	assert.Equal(t, 30, c.Preferences("", 0, 0).EstimatedTime)
	assert.Equal(t, 45, c.Preferences("", 0, 45).EstimatedTime)

	reopened := f.open(t)
	assert.Equal(t, 30, reopened.Engine().Defaults().EstimatedTime)
	assert.Equal(t, 30, reopened.Preferences("", 0, 0).EstimatedTime)
	assert.Equal(t, model.NewDate(2026, 2, 16), reopened.Engine().LearnerState().LastAdaptation)
}

func TestContainer_Preferences(t *testing.T) {
	f := newFixture(t)
	c := f.open(t)

	assert.Equal(t, model.Preferences{Tag: "homework", Priority: 1, EstimatedTime: 180}, c.Preferences("", 0, 0))
	assert.Equal(t, model.Preferences{Tag: "reading", Priority: 2, EstimatedTime: 45}, c.Preferences("reading", 2, 45))
}

func TestContainer_NextTaskWithSuggestedEnergy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.open(t)

	_, err := c.AddTask(ctx, "quiz", model.NewDate(2026, 2, 12).In(f.loc), "reading", 20, 1)
	require.NoError(t, err)
	_, err = c.AddTask(ctx, "thesis", model.NewDate(2026, 2, 10).In(f.loc), "project", 240, 1)
	require.NoError(t, err)

	task, ok, err := c.NextTask(c.Preferences("", 0, 0), "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "quiz", task.Name)
}

var errDiskFull = errors.New("disk full")

// failingRepo fails the writes whose flag is set and passes everything else through.
type failingRepo struct {
	*storage.SQLRepository
	failComplete bool
	failLearner  bool
}

func (r *failingRepo) CompleteTask(ctx context.Context, name string, entry storage.HistoryEntry, state storage.LearnerState) error {
	if r.failComplete {
		return errDiskFull
	}
	return r.SQLRepository.CompleteTask(ctx, name, entry, state)
}

func (r *failingRepo) SaveLearnerState(ctx context.Context, in storage.LearnerState) error {
	if r.failLearner {
		return errDiskFull
	}
	return r.SQLRepository.SaveLearnerState(ctx, in)
}

func TestContainer_FailedCompletionSaveRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := &failingRepo{SQLRepository: f.repo, failComplete: true}
	c, err := New(ctx, f.cfg, Deps{Repo: repo, Clock: f.clock})
	require.NoError(t, err)

	_, err = c.AddTask(ctx, "quiz", model.NewDate(2026, 2, 12).In(f.loc), "reading", 30, 1)
	require.NoError(t, err)
	learnerBefore := c.Engine().LearnerState()

	_, err = c.CompleteTask(ctx, "quiz", 20)
	require.ErrorIs(t, err, errDiskFull)
	require.Len(t, c.Engine().Tasks(), 1)
	assert.Empty(t, c.Engine().History())
	assert.Equal(t, learnerBefore, c.Engine().LearnerState())

	repo.failComplete = false
	entry, err := c.CompleteTask(ctx, "quiz", 20)
	require.NoError(t, err)
	assert.Equal(t, "quiz", entry.Name)

	reopened := f.open(t)
	assert.Empty(t, reopened.Engine().Tasks())
	assert.Equal(t, historyKeys(c.Engine().History()), historyKeys(reopened.Engine().History()))
	assert.Equal(t, c.Engine().LearnerState(), reopened.Engine().LearnerState())
}

func TestContainer_FailedAdaptationSaveRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := &failingRepo{SQLRepository: f.repo}
	c, err := New(ctx, f.cfg, Deps{Repo: repo, Clock: f.clock})
	require.NoError(t, err)

	_, err = c.AddTask(ctx, "quiz", model.NewDate(2026, 2, 12).In(f.loc), "reading", 30, 1)
	require.NoError(t, err)
	_, err = c.CompleteTask(ctx, "quiz", 20)
	require.NoError(t, err)

	f.clock.Advance(7 * 24 * time.Hour)
	repo.failLearner = true
	adapted, err := c.MaybeAdapt(ctx)
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, adapted)
	assert.Equal(t, 180, c.Engine().Defaults().EstimatedTime)

	repo.failLearner = false
	adapted, err = c.MaybeAdapt(ctx)
	require.NoError(t, err)
	assert.True(t, adapted)
	assert.Equal(t, 30, c.Engine().Defaults().EstimatedTime)
}

func TestContainer_CreatedAtUsesInjectedClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.open(t)

	_, err := c.AddTask(ctx, "quiz", model.NewDate(2026, 2, 12).In(f.loc), "reading", 30, 1)
	require.NoError(t, err)
	_, err = c.AddClass(ctx, "Algorithms", []string{"mon"}, f.clockTime(t, "10:00"), f.clockTime(t, "11:00"))
	require.NoError(t, err)

	want := f.clock.Now().UTC()
	tasks, err := f.repo.ListTasks(ctx, storage.TaskListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].CreatedAt.Equal(want), "task created_at %s", tasks[0].CreatedAt)

	classes, err := f.repo.ListClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.True(t, classes[0].CreatedAt.Equal(want), "class created_at %s", classes[0].CreatedAt)
}
