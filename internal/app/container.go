// Package app wires configuration, logging, storage and the scheduling engine
// into the single instance every host talks to.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sandeepkv93/dayplan/internal/config"
	"github.com/sandeepkv93/dayplan/internal/learner"
	"github.com/sandeepkv93/dayplan/internal/logging"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/sandeepkv93/dayplan/internal/summary"
)

// Container owns the one scheduler engine and keeps the repository in step
// with it. Mutations go to both under mu.
type Container struct {
	mu      sync.Mutex
	cfg     config.RuntimeConfig
	loc     *time.Location
	logger  *slog.Logger
	repo    storage.Repository
	clock   model.Clock
	engine  *scheduler.Engine
	closers []io.Closer
}

type Deps struct {
	Repo   storage.Repository
	Logger *slog.Logger
	Clock  model.Clock
}

// Open builds the logger and repository from cfg, then restores saved state.
func Open(ctx context.Context, cfg config.RuntimeConfig) (*Container, error) {
	logger, logCloser, err := logging.Open(cfg.Log.File, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	repo, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	c, err := New(ctx, cfg, Deps{Repo: repo, Logger: logger})
	if err != nil {
		_ = repo.Close()
		_ = logCloser.Close()
		return nil, err
	}
	c.closers = append(c.closers, repo, logCloser)
	return c, nil
}

// New wires an engine around deps.Repo and loads whatever it already holds.
func New(ctx context.Context, cfg config.RuntimeConfig, deps Deps) (*Container, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q", config.ErrInvalidConfig, cfg.Timezone)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clock := deps.Clock
	if clock == nil {
		clock = model.SystemClock{}
	}

	lcfg := learner.Config{
		Epsilon:        cfg.Learner.Epsilon,
		LearningRate:   cfg.Learner.LearningRate,
		DiscountFactor: cfg.Learner.DiscountFactor,
		AdaptEveryDays: cfg.Learner.AdaptEveryDays,
	}
	if cfg.Learner.Seed != 0 {
		lcfg.Rand = rand.New(rand.NewSource(cfg.Learner.Seed))
	}

	c := &Container{
		cfg:    cfg,
		loc:    loc,
		logger: logger,
		repo:   deps.Repo,
		clock:  clock,
		engine: scheduler.NewEngine(scheduler.Options{
			Clock:    clock,
			Location: loc,
			Learner:  lcfg,
			Logger:   logger,
		}),
	}
	if err := c.restore(ctx); err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}
	return c, nil
}

func (c *Container) Close() error {
	var lastErr error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			lastErr = err
		}
	}
	c.closers = nil
	return lastErr
}

func (c *Container) Engine() *scheduler.Engine {
	return c.engine
}

func (c *Container) Config() config.RuntimeConfig {
	return c.cfg
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

func (c *Container) Location() *time.Location {
	return c.loc
}

// Preferences fills the fields a host request left empty. Tag and priority come
// from config; the estimate is the engine's default, which the learner moves.
func (c *Container) Preferences(tag string, priority float64, estimatedTime int) model.Preferences {
	p := model.Preferences{Tag: tag, Priority: priority, EstimatedTime: estimatedTime}
	if p.Tag == "" {
		p.Tag = c.cfg.Defaults.Tag
	}
	if p.Priority == 0 {
		p.Priority = c.cfg.Defaults.Priority
	}
	if p.EstimatedTime == 0 {
		p.EstimatedTime = c.engine.Defaults().EstimatedTime
	}
	return p
}

func (c *Container) AddTask(ctx context.Context, name string, deadline time.Time, tag string, estimatedTime, sections int) (model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, err := c.engine.RegisterTask(name, deadline, tag, estimatedTime, sections)
	if err != nil {
		return model.Task{}, err
	}
	if err := c.repo.CreateTask(ctx, storage.Task{
		Name:          task.Name,
		Deadline:      task.Deadline,
		Tag:           task.Tag,
		EstimatedTime: task.EstimatedTime,
		Sections:      task.Sections,
		Priority:      task.Priority,
		CreatedAt:     c.clock.Now().UTC(),
	}); err != nil {
		_ = c.engine.RemoveTask(task.Name)
		return model.Task{}, fmt.Errorf("persist task: %w", err)
	}
	return task, nil
}

func (c *Container) RemoveTask(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.engine.RemoveTask(name); err != nil {
		return err
	}
	if err := c.repo.DeleteTask(ctx, name); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (c *Container) AddClass(ctx context.Context, name string, days []string, start, end model.ClockTime) (model.ClassSchedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	class, err := model.NewClassSchedule(name, days, start, end)
	if err != nil {
		return model.ClassSchedule{}, err
	}
	if err := c.repo.CreateClass(ctx, storage.Class{
		Name:      class.Name,
		Days:      class.DayNames(),
		StartTime: class.Start.String(),
		EndTime:   class.End.String(),
		CreatedAt: c.clock.Now().UTC(),
	}); err != nil {
		return model.ClassSchedule{}, fmt.Errorf("persist class: %w", err)
	}
	return c.engine.RegisterClass(class.Name, class.DayNames(), class.Start, class.End)
}

func (c *Container) SetWorkingHours(ctx context.Context, day string, start, end model.ClockTime) (model.WorkingHours, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wh, err := model.NewWorkingHours(day, start, end)
	if err != nil {
		return model.WorkingHours{}, err
	}
	if err := c.repo.UpsertWorkingHours(ctx, storage.WorkingHours{
		Day:       wh.Day.String(),
		StartTime: wh.Start.String(),
		EndTime:   wh.End.String(),
	}); err != nil {
		return model.WorkingHours{}, fmt.Errorf("persist working hours: %w", err)
	}
	return c.engine.SetWorkingHours(wh.Day.String(), wh.Start, wh.End)
}

// CompleteTask records the completion in the engine, then persists it. A failed
// save rolls the engine back so the task stays active and can be retried.
func (c *Container) CompleteTask(ctx context.Context, name string, actualTime int) (model.HistoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.engine.Snapshot()
	entry, err := c.engine.CompleteTask(name, actualTime)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	if err := c.repo.CompleteTask(ctx, entry.Name, historyToStorage(entry), c.learnerToStorage()); err != nil {
		c.engine.Restore(before)
		c.logger.Error("persist completion failed", "name", entry.Name, "err", err)
		return model.HistoryEntry{}, fmt.Errorf("persist completion: %w", err)
	}
	return entry, nil
}

// MaybeAdapt runs a due adaptation and saves the learner when it did.
func (c *Container) MaybeAdapt(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.engine.Snapshot()
	if !c.engine.MaybeAdapt() {
		return false, nil
	}
	if err := c.repo.SaveLearnerState(ctx, c.learnerToStorage()); err != nil {
		c.engine.Restore(before)
		return false, fmt.Errorf("persist learner: %w", err)
	}
	return true, nil
}

func (c *Container) Schedule(date model.Date, prefs model.Preferences) []scheduler.Entry {
	return c.engine.ScheduleFor(date, prefs)
}

// NextTask resolves an empty energy to the learner's suggestion.
func (c *Container) NextTask(prefs model.Preferences, energy model.EnergyTier) (model.Task, bool, error) {
	if energy == "" {
		energy = c.engine.SuggestEnergy()
	}
	return c.engine.NextTask(prefs, energy)
}

func (c *Container) SuggestEnergy() model.EnergyTier {
	return c.engine.SuggestEnergy()
}

func (c *Container) DailySummary(date model.Date) summary.Daily {
	return c.engine.DailySummary(date)
}

func (c *Container) WeeklySummary(start model.Date) summary.Weekly {
	return c.engine.WeeklySummary(start)
}

func (c *Container) Today() model.Date {
	return c.engine.Today()
}

func (c *Container) learnerToStorage() storage.LearnerState {
	state := c.engine.LearnerState()
	out := storage.LearnerState{
		Values:               make([]storage.QValue, 0, len(state.Entries)),
		LastAdaptation:       state.LastAdaptation.String(),
		DefaultEstimatedTime: c.engine.Defaults().EstimatedTime,
	}
	for _, e := range state.Entries {
		out.Values = append(out.Values, storage.QValue{
			State:  e.State,
			Low:    e.Values[0],
			Medium: e.Values[1],
			High:   e.Values[2],
		})
	}
	return out
}

func (c *Container) TasksForDate(date model.Date) []model.Task {
	return c.engine.TasksForDate(date)
}

func (c *Container) ClassesForDay(day time.Weekday) []model.ClassSchedule {
	return c.engine.ClassesForDay(day)
}

func (c *Container) Tasks() []model.Task {
	return c.engine.Tasks()
}

func (c *Container) Classes() []model.ClassSchedule {
	return c.engine.Classes()
}

func (c *Container) WorkingHours() []model.WorkingHours {
	return c.engine.WorkingHours()
}

// TaskDefaults are the tag and estimate used when a new task leaves them out.
func (c *Container) TaskDefaults() (string, int) {
	return c.cfg.Defaults.Tag, c.cfg.Defaults.EstimatedTime
}
