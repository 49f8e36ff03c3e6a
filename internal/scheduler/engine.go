// Package scheduler owns a person's tasks, fixed commitments and completion
// history, and answers schedule, next-task and summary queries over them.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/dayplan/internal/learner"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/recommend"
	"github.com/sandeepkv93/dayplan/internal/summary"
)

var (
	ErrTaskNotFound  = errors.New("scheduler: task not found")
	ErrDuplicateTask = errors.New("scheduler: task already active")
)

var defaultInitialTags = []string{"reading", "writing", "project"}

type Options struct {
	Clock    model.Clock
	Location *time.Location
	// Learner zero value means learner.DefaultConfig().
	Learner     learner.Config
	Logger      *slog.Logger
	InitialTags []string
}

// Engine serializes every operation on one mutex. Nothing it returns aliases
// its internal slices.
type Engine struct {
	mu           sync.Mutex
	clock        model.Clock
	loc          *time.Location
	tasks        []model.Task
	classes      []model.ClassSchedule
	workingHours map[time.Weekday]model.Interval
	history      []model.HistoryEntry
	recommender  *recommend.Engine
	learner      *learner.Learner
	logger       *slog.Logger
}

func NewEngine(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = model.SystemClock{}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tags := opts.InitialTags
	if tags == nil {
		tags = defaultInitialTags
	}
	cfg := opts.Learner
	if cfg == (learner.Config{}) {
		cfg = learner.DefaultConfig()
	}

	e := &Engine{
		clock:        clock,
		loc:          loc,
		workingHours: make(map[time.Weekday]model.Interval),
		recommender:  recommend.NewEngine(clock, loc, tags...),
		logger:       logger,
	}
	e.learner = learner.New(cfg, e.today())
	return e
}

func (e *Engine) now() time.Time {
	return e.clock.Now().In(e.loc)
}

func (e *Engine) today() model.Date {
	return model.DateOf(e.now())
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Today is the current calendar day in the engine's reference zone.
func (e *Engine) Today() model.Date {
	return e.today()
}

func (e *Engine) RegisterTask(name string, deadline time.Time, tag string, estimatedTime, sections int) (model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := model.NewTask(name, deadline, tag, estimatedTime, sections, e.now(), e.loc)
	if err != nil {
		return model.Task{}, err
	}
	if e.indexOf(task.Name) >= 0 {
		return model.Task{}, fmt.Errorf("%w: %q", ErrDuplicateTask, task.Name)
	}
	e.tasks = append(e.tasks, task)
	e.recommender.Tags().Observe(task.Tag)
	e.logger.Debug("task registered", "name", task.Name, "priority", task.Priority, "energy", task.Energy())
	return task, nil
}

func (e *Engine) RegisterClass(name string, days []string, start, end model.ClockTime) (model.ClassSchedule, error) {
	class, err := model.NewClassSchedule(name, days, start, end)
	if err != nil {
		return model.ClassSchedule{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes = append(e.classes, class)
	return class, nil
}

// SetWorkingHours replaces any block already set for that weekday.
func (e *Engine) SetWorkingHours(day string, start, end model.ClockTime) (model.WorkingHours, error) {
	wh, err := model.NewWorkingHours(day, start, end)
	if err != nil {
		return model.WorkingHours{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.workingHours[wh.Day] = wh.Interval
	return wh, nil
}

// RemoveTask drops an active task without recording it in history.
func (e *Engine) RemoveTask(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexOf(strings.TrimSpace(name))
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	e.tasks = slices.Delete(e.tasks, idx, idx+1)
	return nil
}

// CompleteTask moves the named active task into history and scores the outcome.
func (e *Engine) CompleteTask(name string, actualTime int) (model.HistoryEntry, error) {
	if actualTime < 0 {
		return model.HistoryEntry{}, fmt.Errorf("%w: %d", model.ErrInvalidActualTime, actualTime)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(strings.TrimSpace(name))
	if idx < 0 {
		return model.HistoryEntry{}, fmt.Errorf("%w: %q", ErrTaskNotFound, name)
	}
	task := e.tasks[idx]
	task.MarkFinished(actualTime)

	entry := model.NewHistoryEntry(task, e.now())
	e.history = append(e.history, entry)

	remaining := len(e.tasks)
	tier := task.Energy()
	reward := learner.Reward(actualTime, task.EstimatedTime)
	e.learner.Observe(
		learner.StateKey(remaining, tier),
		tier,
		reward,
		learner.StateKey(remaining-1, currentEnergy()),
	)
	e.tasks = slices.Delete(e.tasks, idx, idx+1)

	e.logger.Info("task completed",
		"name", task.Name,
		"actual_time", actualTime,
		"estimated_time", task.EstimatedTime,
		"reward", reward,
	)
	e.maybeAdapt()
	return entry, nil
}

// MaybeAdapt runs preference adaptation if it is due.
func (e *Engine) MaybeAdapt() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maybeAdapt()
}

func (e *Engine) maybeAdapt() bool {
	today := e.today()
	if !e.learner.MaybeAdapt(today, e.recommender) {
		return false
	}
	e.logger.Debug("preferences adapted",
		"date", today.String(),
		"states", len(e.learner.States()),
		"default_estimated_time", e.recommender.Defaults().EstimatedTime,
	)
	return true
}

func (e *Engine) DailySummary(date model.Date) summary.Daily {
	e.mu.Lock()
	defer e.mu.Unlock()
	return summary.ForDay(date, e.history, e.tasks, e.loc)
}

// WeeklySummary covers seven days from start. A zero start means the most recent Monday.
func (e *Engine) WeeklySummary(start model.Date) summary.Weekly {
	e.mu.Lock()
	defer e.mu.Unlock()
	if start.IsZero() {
		start = model.MostRecentMonday(e.today())
	}
	return summary.ForWeek(start, e.history, e.classes)
}

// TasksForDate lists unfinished active tasks due on date.
func (e *Engine) TasksForDate(date model.Date) []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Task, 0)
	for _, t := range e.tasks {
		if !t.Finished && t.DeadlineDate(e.loc) == date {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) ClassesForDay(day time.Weekday) []model.ClassSchedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return classesOn(e.classes, day)
}

func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.tasks)
}

func (e *Engine) Classes() []model.ClassSchedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.classes)
}

func (e *Engine) History() []model.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.history)
}

// WorkingHours lists the configured blocks Monday first.
func (e *Engine) WorkingHours() []model.WorkingHours {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workingHoursLocked()
}

func (e *Engine) workingHoursLocked() []model.WorkingHours {
	out := make([]model.WorkingHours, 0, len(e.workingHours))
	for i := 1; i <= 7; i++ {
		day := time.Weekday(i % 7)
		if iv, ok := e.workingHours[day]; ok {
			out = append(out, model.WorkingHours{Day: day, Interval: iv})
		}
	}
	return out
}

func (e *Engine) Defaults() model.Preferences {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recommender.Defaults()
}

func (e *Engine) LearnerState() learner.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.learner.Snapshot()
}

func (e *Engine) indexOf(name string) int {
	for i, t := range e.tasks {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func classesOn(classes []model.ClassSchedule, day time.Weekday) []model.ClassSchedule {
	out := make([]model.ClassSchedule, 0)
	for _, c := range classes {
		if c.MeetsOn(day) {
			out = append(out, c)
		}
	}
	return out
}
