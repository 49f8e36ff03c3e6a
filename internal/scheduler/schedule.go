package scheduler

import (
	"math"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/recommend"
)

type EntryKind string

const (
	KindClass        EntryKind = "class"
	KindWorkingHours EntryKind = "working_hours"
)

type ScheduledTask struct {
	Name          string     `json:"name"`
	Deadline      model.Date `json:"deadline"`
	EstimatedTime int        `json:"estimated_time"`
	ActualTime    *int       `json:"actual_time"`
	Score         float64    `json:"score"`
	Finished      bool       `json:"finished"`
}

// Entry is one block of a day. Only working-hours entries carry tasks.
type Entry struct {
	Kind     EntryKind       `json:"type"`
	Name     string          `json:"name,omitempty"`
	Start    model.ClockTime `json:"start_time"`
	End      model.ClockTime `json:"end_time"`
	Duration int             `json:"duration"`
	Tasks    []ScheduledTask `json:"tasks,omitempty"`
}

// ScheduleFor lays out date's classes and working block, then greedily packs
// the ranked active tasks, plus anything finished that day, into the block.
func (e *Engine) ScheduleFor(date model.Date, prefs model.Preferences) []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.fixedBlocks(date)
	workIdx := -1
	for i := range entries {
		if entries[i].Kind == KindWorkingHours {
			workIdx = i
		}
	}
	if workIdx < 0 || (len(e.tasks) == 0 && len(e.history) == 0) {
		return entries
	}

	candidates := make([]model.Task, 0, len(e.tasks))
	candidates = append(candidates, e.tasks...)
	now := e.now()
	for _, h := range e.history {
		if h.CompletedDate == date {
			candidates = append(candidates, h.Task(now, e.loc))
		}
	}
	ranked := e.recommender.Rank(candidates, prefs)

	work := &entries[workIdx]
	available := availableMinutes(model.Interval{Start: work.Start, End: work.End}, entries)
	packed, skipped := pack(ranked, available, e.loc)
	work.Tasks = packed
	if len(skipped) > 0 {
		e.logger.Debug("tasks left out of working block", "date", date.String(), "skipped", skipped)
	}
	return entries
}

func (e *Engine) fixedBlocks(date model.Date) []Entry {
	day := date.Weekday()
	out := make([]Entry, 0)
	for _, c := range classesOn(e.classes, day) {
		out = append(out, Entry{
			Kind:     KindClass,
			Name:     c.Name,
			Start:    c.Start,
			End:      c.End,
			Duration: c.Minutes(),
		})
	}
	if iv, ok := e.workingHours[day]; ok {
		out = append(out, Entry{
			Kind:     KindWorkingHours,
			Start:    iv.Start,
			End:      iv.End,
			Duration: iv.Minutes(),
			Tasks:    []ScheduledTask{},
		})
	}
	return out
}

// availableMinutes clips the block's start past each overlapping class in turn.
// Only the start moves, so a class that ends inside the block wins over any
// earlier clip, and a class after a gap still pushes the start forward.
func availableMinutes(work model.Interval, blocks []Entry) int {
	start := work.Start
	for _, b := range blocks {
		if b.Kind != KindClass {
			continue
		}
		if b.Start < work.End && b.End > start {
			start = b.End
		}
	}
	if start >= work.End {
		return 0
	}
	return int(work.End - start)
}

// pack takes ranked tasks in order while they fit; a task that does not fit is
// skipped, not retried.
func pack(ranked []recommend.Ranked, available int, loc *time.Location) ([]ScheduledTask, []string) {
	packed := make([]ScheduledTask, 0)
	skipped := make([]string, 0)
	for _, r := range ranked {
		need := r.Task.Duration()
		if need > available {
			skipped = append(skipped, r.Task.Name)
			continue
		}
		st := ScheduledTask{
			Name:          r.Task.Name,
			Deadline:      r.Task.DeadlineDate(loc),
			EstimatedTime: r.Task.EstimatedTime,
			Score:         roundScore(r.Score),
			Finished:      r.Task.Finished,
		}
		if r.Task.Finished {
			actual := r.Task.ActualTime
			st.ActualTime = &actual
		}
		packed = append(packed, st)
		available -= need
	}
	return packed, skipped
}

func roundScore(score float64) float64 {
	return math.RoundToEven(score*100) / 100
}
