package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTask       = errors.New("model: invalid task")
	ErrInvalidEstimate   = errors.New("model: invalid estimated time")
	ErrInvalidActualTime = errors.New("model: invalid actual time")
)

type Task struct {
	Name          string
	Deadline      time.Time
	Tag           string
	EstimatedTime int
	// Sections is advisory; scheduling ignores it.
	Sections int
	// Priority is fixed at construction and never recomputed.
	Priority   float64
	Finished   bool
	ActualTime int
}

// NewTask validates the inputs and computes the task's priority as of now.
func NewTask(name string, deadline time.Time, tag string, estimatedTime, sections int, now time.Time, loc *time.Location) (Task, error) {
	if sections == 0 {
		sections = 1
	}
	t := Task{
		Name:          strings.TrimSpace(name),
		Deadline:      deadline,
		Tag:           strings.TrimSpace(tag),
		EstimatedTime: estimatedTime,
		Sections:      sections,
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	t.Priority = Priority(deadline, estimatedTime, now, loc)
	return t, nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTask)
	}
	if t.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline is required", ErrInvalidTask)
	}
	if t.EstimatedTime <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidEstimate, t.EstimatedTime)
	}
	if t.Sections < 1 {
		return fmt.Errorf("%w: sections must be at least 1, got %d", ErrInvalidTask, t.Sections)
	}
	if t.Finished && t.ActualTime < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidActualTime, t.ActualTime)
	}
	return nil
}

func (t *Task) MarkFinished(actualTime int) {
	t.Finished = true
	t.ActualTime = actualTime
}

func (t Task) Energy() EnergyTier {
	return TierFor(t.EstimatedTime)
}

// Duration is the time a task occupies in a block: what it took if finished, else the estimate.
func (t Task) Duration() int {
	if t.Finished {
		return t.ActualTime
	}
	return t.EstimatedTime
}

func (t Task) DeadlineDate(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(t.Deadline.In(loc))
}

// HistoryEntry is the append-only record of a finished task.
type HistoryEntry struct {
	Name          string
	Deadline      time.Time
	Tag           string
	EstimatedTime int
	ActualTime    int
	CompletedDate Date
	CompletedAt   ClockTime
}

// NewHistoryEntry stamps t with completedAt, which should already be in the reference zone.
func NewHistoryEntry(t Task, completedAt time.Time) HistoryEntry {
	return HistoryEntry{
		Name:          t.Name,
		Deadline:      t.Deadline,
		Tag:           t.Tag,
		EstimatedTime: t.EstimatedTime,
		ActualTime:    t.ActualTime,
		CompletedDate: DateOf(completedAt),
		CompletedAt:   ClockTimeOf(completedAt),
	}
}

// Task rebuilds a finished task from the entry. Its priority is computed afresh as of now.
func (h HistoryEntry) Task(now time.Time, loc *time.Location) Task {
	t := Task{
		Name:          h.Name,
		Deadline:      h.Deadline,
		Tag:           h.Tag,
		EstimatedTime: h.EstimatedTime,
		Sections:      1,
		Priority:      Priority(h.Deadline, h.EstimatedTime, now, loc),
	}
	t.MarkFinished(h.ActualTime)
	return t
}
