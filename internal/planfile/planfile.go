// Package planfile imports a week's fixed commitments and tasks from YAML.
//
//	classes:
//	  - name: Algorithms
//	    days: [mon, wed]
//	    start: "10:00"
//	    end: "11:15"
//	working_hours:
//	  - day: monday
//	    start: "09:00"
//	    end: "17:00"
//	tasks:
//	  - name: read chapter 4
//	    due: 2026-02-12
//	    tag: reading
//	    estimated_time: 45
package planfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type ClassSpec struct {
	Name  string   `yaml:"name"`
	Days  []string `yaml:"days"`
	Start string   `yaml:"start"`
	End   string   `yaml:"end"`
}

type WorkSpec struct {
	Day   string `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type TaskSpec struct {
	Name          string `yaml:"name"`
	Due           string `yaml:"due"`
	Tag           string `yaml:"tag"`
	EstimatedTime int    `yaml:"estimated_time"`
	Sections      int    `yaml:"sections"`
}

type Plan struct {
	Classes      []ClassSpec `yaml:"classes"`
	WorkingHours []WorkSpec  `yaml:"working_hours"`
	Tasks        []TaskSpec  `yaml:"tasks"`
}

// Registrar is the subset of app.Container a plan is applied through.
type Registrar interface {
	AddClass(ctx context.Context, name string, days []string, start, end model.ClockTime) (model.ClassSchedule, error)
	SetWorkingHours(ctx context.Context, day string, start, end model.ClockTime) (model.WorkingHours, error)
	AddTask(ctx context.Context, name string, deadline time.Time, tag string, estimatedTime, sections int) (model.Task, error)
}

// Defaults fill task fields a plan leaves out.
type Defaults struct {
	Tag           string
	EstimatedTime int
}

type Report struct {
	Classes      int
	WorkingHours int
	Tasks        int
}

func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("planfile: decode: %w", err)
	}
	return plan, nil
}

// Apply registers classes, then working hours, then tasks, stopping at the
// first rejected entry. The report counts what was registered before that.
func Apply(ctx context.Context, plan Plan, r Registrar, loc *time.Location, defaults Defaults) (Report, error) {
	var report Report
	for i, c := range plan.Classes {
		start, end, err := parseSpan(c.Start, c.End)
		if err != nil {
			return report, fmt.Errorf("planfile: classes[%d] %q: %w", i, c.Name, err)
		}
		if _, err := r.AddClass(ctx, c.Name, c.Days, start, end); err != nil {
			return report, fmt.Errorf("planfile: classes[%d] %q: %w", i, c.Name, err)
		}
		report.Classes++
	}
	for i, w := range plan.WorkingHours {
		start, end, err := parseSpan(w.Start, w.End)
		if err != nil {
			return report, fmt.Errorf("planfile: working_hours[%d] %q: %w", i, w.Day, err)
		}
		if _, err := r.SetWorkingHours(ctx, w.Day, start, end); err != nil {
			return report, fmt.Errorf("planfile: working_hours[%d] %q: %w", i, w.Day, err)
		}
		report.WorkingHours++
	}
	for i, t := range plan.Tasks {
		due, err := model.ParseDate(t.Due)
		if err != nil {
			return report, fmt.Errorf("planfile: tasks[%d] %q: %w", i, t.Name, err)
		}
		tag := t.Tag
		if tag == "" {
			tag = defaults.Tag
		}
		estimate := t.EstimatedTime
		if estimate == 0 {
			estimate = defaults.EstimatedTime
		}
		if _, err := r.AddTask(ctx, t.Name, due.In(loc), tag, estimate, t.Sections); err != nil {
			return report, fmt.Errorf("planfile: tasks[%d] %q: %w", i, t.Name, err)
		}
		report.Tasks++
	}
	return report, nil
}

func parseSpan(start, end string) (model.ClockTime, model.ClockTime, error) {
	s, err := model.ParseClockTime(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := model.ParseClockTime(end)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}
