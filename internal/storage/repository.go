package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("storage: not found")
	ErrUnsupportedDriver = errors.New("storage: unsupported driver")
)

type Repository interface {
	CreateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, name string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)

	CreateClass(ctx context.Context, in Class) error
	ListClasses(ctx context.Context) ([]Class, error)

	UpsertWorkingHours(ctx context.Context, in WorkingHours) error
	ListWorkingHours(ctx context.Context) ([]WorkingHours, error)

	AppendHistory(ctx context.Context, in HistoryEntry) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)

	// CompleteTask removes the active task, appends its history entry and saves
	// the learner state in one transaction.
	CompleteTask(ctx context.Context, name string, entry HistoryEntry, state LearnerState) error

	SaveLearnerState(ctx context.Context, in LearnerState) error
	LoadLearnerState(ctx context.Context) (LearnerState, error)

	Close() error
}
