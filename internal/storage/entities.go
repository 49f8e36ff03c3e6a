package storage

import "time"

// Task is an active task row. Priority is stored as computed at registration.
type Task struct {
	ID            string
	Name          string
	Deadline      time.Time
	Tag           string
	EstimatedTime int
	Sections      int
	Priority      float64
	CreatedAt     time.Time
}

// Class times are HH:MM strings; Days holds weekday names.
type Class struct {
	ID        string
	Name      string
	Days      []string
	StartTime string
	EndTime   string
	CreatedAt time.Time
}

type WorkingHours struct {
	Day       string
	StartTime string
	EndTime   string
}

type HistoryEntry struct {
	ID            string
	Name          string
	Deadline      time.Time
	Tag           string
	EstimatedTime int
	ActualTime    int
	// CompletedDate is YYYY-MM-DD and CompletedAt is HH:MM, both in the scheduler's zone.
	CompletedDate string
	CompletedAt   string
}

type QValue struct {
	State  string
	Low    float64
	Medium float64
	High   float64
}

type LearnerState struct {
	Values []QValue
	// LastAdaptation is YYYY-MM-DD; empty when nothing has been saved.
	LastAdaptation       string
	DefaultEstimatedTime int
}

type TaskListFilter struct {
	Limit  int
	Offset int
}

// HistoryFilter bounds are inclusive YYYY-MM-DD dates; empty means open.
type HistoryFilter struct {
	From   string
	To     string
	Limit  int
	Offset int
}
