package model

import "time"

// DefaultTimezone is the reference zone both sides of a days-left count are normalized to.
const DefaultTimezone = "America/Chicago"

// PriorityEpsilon replaces a non-positive days-left count so that due-today and
// overdue tasks get a very large but finite urgency term.
const PriorityEpsilon = 0.000000001

// DaysLeft counts calendar days from now to deadline, both seen in loc.
func DaysLeft(deadline, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(deadline.In(loc)).DaysSince(DateOf(now.In(loc)))
}

// Priority blends deadline urgency and effort. The estimate term dominates for long tasks.
func Priority(deadline time.Time, estimatedTime int, now time.Time, loc *time.Location) float64 {
	days := float64(DaysLeft(deadline, now, loc))
	if days <= 0 {
		days = PriorityEpsilon
	}
	return (1/days)*0.5 + float64(estimatedTime)*0.5
}
