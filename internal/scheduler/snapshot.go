package scheduler

import (
	"slices"
	"time"

	"github.com/sandeepkv93/dayplan/internal/learner"
	"github.com/sandeepkv93/dayplan/internal/model"
)

// Snapshot is everything an Engine owns, in a form hosts can persist.
type Snapshot struct {
	Tasks        []model.Task
	Classes      []model.ClassSchedule
	WorkingHours []model.WorkingHours
	History      []model.HistoryEntry
	Learner      learner.State
	Defaults     model.Preferences
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Tasks:        slices.Clone(e.tasks),
		Classes:      slices.Clone(e.classes),
		WorkingHours: e.workingHoursLocked(),
		History:      slices.Clone(e.history),
		Learner:      e.learner.Snapshot(),
		Defaults:     e.recommender.Defaults(),
	}
}

// Restore replaces the engine's state with s. Task priorities are taken as stored.
func (e *Engine) Restore(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tasks = slices.Clone(s.Tasks)
	e.classes = slices.Clone(s.Classes)
	e.history = slices.Clone(s.History)
	e.workingHours = make(map[time.Weekday]model.Interval, len(s.WorkingHours))
	for _, wh := range s.WorkingHours {
		e.workingHours[wh.Day] = wh.Interval
	}
	for _, t := range e.tasks {
		e.recommender.Tags().Observe(t.Tag)
	}
	e.recommender.SetDefaults(s.Defaults)
	e.learner.Restore(s.Learner)
}
