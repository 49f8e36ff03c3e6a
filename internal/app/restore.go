package app

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/dayplan/internal/learner"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
)

func (c *Container) restore(ctx context.Context) error {
	if c.repo == nil {
		return fmt.Errorf("app: nil repository")
	}
	tasks, err := c.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	classes, err := c.repo.ListClasses(ctx)
	if err != nil {
		return fmt.Errorf("list classes: %w", err)
	}
	hours, err := c.repo.ListWorkingHours(ctx)
	if err != nil {
		return fmt.Errorf("list working hours: %w", err)
	}
	history, err := c.repo.ListHistory(ctx, storage.HistoryFilter{})
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	state, err := c.repo.LoadLearnerState(ctx)
	if err != nil {
		return fmt.Errorf("load learner: %w", err)
	}

	// Until the learner has saved one, the default estimate is the configured one.
	defaultEstimate := state.DefaultEstimatedTime
	if defaultEstimate <= 0 {
		defaultEstimate = c.cfg.Defaults.EstimatedTime
	}
	snap := scheduler.Snapshot{
		Tasks:        make([]model.Task, 0, len(tasks)),
		Classes:      make([]model.ClassSchedule, 0, len(classes)),
		WorkingHours: make([]model.WorkingHours, 0, len(hours)),
		History:      make([]model.HistoryEntry, 0, len(history)),
		Defaults:     model.Preferences{EstimatedTime: defaultEstimate},
	}
	for _, t := range tasks {
		snap.Tasks = append(snap.Tasks, model.Task{
			Name:          t.Name,
			Deadline:      t.Deadline.In(c.loc),
			Tag:           t.Tag,
			EstimatedTime: t.EstimatedTime,
			Sections:      t.Sections,
			Priority:      t.Priority,
		})
	}
	for _, cl := range classes {
		parsed, err := classFromStorage(cl)
		if err != nil {
			return fmt.Errorf("class %q: %w", cl.Name, err)
		}
		snap.Classes = append(snap.Classes, parsed)
	}
	for _, wh := range hours {
		parsed, err := workingHoursFromStorage(wh)
		if err != nil {
			return fmt.Errorf("working hours %q: %w", wh.Day, err)
		}
		snap.WorkingHours = append(snap.WorkingHours, parsed)
	}
	for _, h := range history {
		parsed, err := c.historyFromStorage(h)
		if err != nil {
			return fmt.Errorf("history %q: %w", h.Name, err)
		}
		snap.History = append(snap.History, parsed)
	}
	if snap.Learner, err = learnerFromStorage(state); err != nil {
		return err
	}

	c.engine.Restore(snap)
	c.logger.Debug("state restored",
		"tasks", len(snap.Tasks),
		"classes", len(snap.Classes),
		"history", len(snap.History),
		"states", len(snap.Learner.Entries),
	)
	return nil
}

func classFromStorage(in storage.Class) (model.ClassSchedule, error) {
	start, err := model.ParseClockTime(in.StartTime)
	if err != nil {
		return model.ClassSchedule{}, err
	}
	end, err := model.ParseClockTime(in.EndTime)
	if err != nil {
		return model.ClassSchedule{}, err
	}
	return model.NewClassSchedule(in.Name, in.Days, start, end)
}

func workingHoursFromStorage(in storage.WorkingHours) (model.WorkingHours, error) {
	start, err := model.ParseClockTime(in.StartTime)
	if err != nil {
		return model.WorkingHours{}, err
	}
	end, err := model.ParseClockTime(in.EndTime)
	if err != nil {
		return model.WorkingHours{}, err
	}
	return model.NewWorkingHours(in.Day, start, end)
}

func (c *Container) historyFromStorage(in storage.HistoryEntry) (model.HistoryEntry, error) {
	date, err := model.ParseDate(in.CompletedDate)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	at, err := model.ParseClockTime(in.CompletedAt)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	return model.HistoryEntry{
		Name:          in.Name,
		Deadline:      in.Deadline.In(c.loc),
		Tag:           in.Tag,
		EstimatedTime: in.EstimatedTime,
		ActualTime:    in.ActualTime,
		CompletedDate: date,
		CompletedAt:   at,
	}, nil
}

func historyToStorage(in model.HistoryEntry) storage.HistoryEntry {
	return storage.HistoryEntry{
		Name:          in.Name,
		Deadline:      in.Deadline,
		Tag:           in.Tag,
		EstimatedTime: in.EstimatedTime,
		ActualTime:    in.ActualTime,
		CompletedDate: in.CompletedDate.String(),
		CompletedAt:   in.CompletedAt.String(),
	}
}

func learnerFromStorage(in storage.LearnerState) (learner.State, error) {
	out := learner.State{Entries: make([]learner.StateValues, 0, len(in.Values))}
	for _, v := range in.Values {
		out.Entries = append(out.Entries, learner.StateValues{
			State:  v.State,
			Values: learner.Values{v.Low, v.Medium, v.High},
		})
	}
	if in.LastAdaptation != "" {
		date, err := model.ParseDate(in.LastAdaptation)
		if err != nil {
			return learner.State{}, fmt.Errorf("last adaptation: %w", err)
		}
		out.LastAdaptation = date
	}
	return out, nil
}
