package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInterval = errors.New("model: invalid interval")
	ErrInvalidClass    = errors.New("model: invalid class")
)

// Interval is a same-day span; End must be after Start.
type Interval struct {
	Start ClockTime
	End   ClockTime
}

func (i Interval) Validate() error {
	if i.End <= i.Start {
		return fmt.Errorf("%w: %s-%s", ErrInvalidInterval, i.Start, i.End)
	}
	return nil
}

func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

func (i Interval) Overlaps(o Interval) bool {
	return o.Start < i.End && o.End > i.Start
}

type ClassSchedule struct {
	Name string
	Days []time.Weekday
	Interval
}

func NewClassSchedule(name string, days []string, start, end ClockTime) (ClassSchedule, error) {
	parsed, err := ParseWeekdays(days)
	if err != nil {
		return ClassSchedule{}, err
	}
	c := ClassSchedule{
		Name:     strings.TrimSpace(name),
		Days:     parsed,
		Interval: Interval{Start: start, End: end},
	}
	if err := c.Validate(); err != nil {
		return ClassSchedule{}, err
	}
	return c, nil
}

func (c ClassSchedule) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidClass)
	}
	if len(c.Days) == 0 {
		return fmt.Errorf("%w: needs at least one day", ErrInvalidClass)
	}
	return c.Interval.Validate()
}

func (c ClassSchedule) MeetsOn(day time.Weekday) bool {
	return containsWeekday(c.Days, day)
}

func (c ClassSchedule) DayNames() []string {
	out := make([]string, 0, len(c.Days))
	for _, d := range c.Days {
		out = append(out, d.String())
	}
	return out
}

// WorkingHours is the single task-eligible block for one weekday.
type WorkingHours struct {
	Day time.Weekday
	Interval
}

func NewWorkingHours(day string, start, end ClockTime) (WorkingHours, error) {
	weekday, err := ParseWeekday(day)
	if err != nil {
		return WorkingHours{}, err
	}
	w := WorkingHours{Day: weekday, Interval: Interval{Start: start, End: end}}
	if err := w.Validate(); err != nil {
		return WorkingHours{}, err
	}
	return w, nil
}

func (w WorkingHours) Validate() error {
	return w.Interval.Validate()
}
