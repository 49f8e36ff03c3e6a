package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const (
	metaLastAdaptation       = "last_adaptation"
	metaDefaultEstimatedTime = "default_estimated_time"
)

// SQLRepository speaks the sqlite3 and postgres dialects. Queries are written
// with ? placeholders and rebound for postgres.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func NewSQLRepository(db *sql.DB, driver string) (*SQLRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	switch driver {
	case DriverSQLite:
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return &SQLRepository{db: db, driver: driver}, nil
}

// Open connects, applies migrations and returns a ready repository.
func Open(driver, dsn string) (*SQLRepository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	repo, err := NewSQLRepository(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := MigrateUp(context.Background(), db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) exec(ctx context.Context, ex execer, query string, args ...any) (sql.Result, error) {
	return ex.ExecContext(ctx, rebind(r.driver, query), args...)
}

func (r *SQLRepository) CreateTask(ctx context.Context, in Task) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Sections == 0 {
		in.Sections = 1
	}
	_, err := r.exec(ctx, r.db, `
		INSERT INTO tasks (id, seq, name, deadline, tag, estimated_time, sections, priority, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tasks), ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, mustTime(in.Deadline), in.Tag, in.EstimatedTime, in.Sections, in.Priority, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLRepository) DeleteTask(ctx context.Context, name string) error {
	return r.deleteTask(ctx, r.db, name)
}

func (r *SQLRepository) deleteTask(ctx context.Context, ex execer, name string) error {
	res, err := r.exec(ctx, ex, `DELETE FROM tasks WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT id, name, deadline, tag, estimated_time, sections, priority, created_at FROM tasks ORDER BY seq ASC`
	args := make([]any, 0, 2)
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateClass(ctx context.Context, in Class) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, r.db, `
		INSERT INTO classes (id, seq, name, days, start_time, end_time, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM classes), ?, ?, ?, ?, ?)`,
		in.ID, in.Name, strings.Join(in.Days, ","), in.StartTime, in.EndTime, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLRepository) ListClasses(ctx context.Context) ([]Class, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, days, start_time, end_time, created_at FROM classes ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Class, 0)
	for rows.Next() {
		class, scanErr := scanClass(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, class)
	}
	return out, rows.Err()
}

func (r *SQLRepository) UpsertWorkingHours(ctx context.Context, in WorkingHours) error {
	_, err := r.exec(ctx, r.db, `
		INSERT INTO working_hours (day, start_time, end_time) VALUES (?, ?, ?)
		ON CONFLICT (day) DO UPDATE SET start_time = excluded.start_time, end_time = excluded.end_time`,
		in.Day, in.StartTime, in.EndTime,
	)
	return err
}

func (r *SQLRepository) ListWorkingHours(ctx context.Context) ([]WorkingHours, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT day, start_time, end_time FROM working_hours ORDER BY day ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]WorkingHours, 0)
	for rows.Next() {
		var wh WorkingHours
		if err := rows.Scan(&wh.Day, &wh.StartTime, &wh.EndTime); err != nil {
			return nil, err
		}
		out = append(out, wh)
	}
	return out, rows.Err()
}

func (r *SQLRepository) AppendHistory(ctx context.Context, in HistoryEntry) error {
	return r.appendHistory(ctx, r.db, in)
}

func (r *SQLRepository) appendHistory(ctx context.Context, ex execer, in HistoryEntry) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := r.exec(ctx, ex, `
		INSERT INTO task_history (id, seq, name, deadline, tag, estimated_time, actual_time, completed_date, completed_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM task_history), ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, mustTime(in.Deadline), in.Tag, in.EstimatedTime, in.ActualTime, in.CompletedDate, in.CompletedAt,
	)
	return err
}

func (r *SQLRepository) ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error) {
	query := `SELECT id, name, deadline, tag, estimated_time, actual_time, completed_date, completed_at FROM task_history`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.From != "" {
		clauses = append(clauses, "completed_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, "completed_date <= ?")
		args = append(args, filter.To)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY seq ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0)
	for rows.Next() {
		entry, scanErr := scanHistory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CompleteTask(ctx context.Context, name string, entry HistoryEntry, state LearnerState) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := r.deleteTask(ctx, tx, name); err != nil {
			return err
		}
		if err := r.appendHistory(ctx, tx, entry); err != nil {
			return err
		}
		return r.saveLearnerState(ctx, tx, state)
	})
}

func (r *SQLRepository) SaveLearnerState(ctx context.Context, in LearnerState) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return r.saveLearnerState(ctx, tx, in)
	})
}

func (r *SQLRepository) saveLearnerState(ctx context.Context, ex execer, in LearnerState) error {
	if _, err := r.exec(ctx, ex, `DELETE FROM q_values`); err != nil {
		return err
	}
	for i, v := range in.Values {
		if _, err := r.exec(ctx, ex, `
			INSERT INTO q_values (state, seq, low, medium, high) VALUES (?, ?, ?, ?, ?)`,
			v.State, i+1, v.Low, v.Medium, v.High,
		); err != nil {
			return err
		}
	}
	if err := r.putMeta(ctx, ex, metaLastAdaptation, in.LastAdaptation); err != nil {
		return err
	}
	return r.putMeta(ctx, ex, metaDefaultEstimatedTime, strconv.Itoa(in.DefaultEstimatedTime))
}

func (r *SQLRepository) putMeta(ctx context.Context, ex execer, key, value string) error {
	_, err := r.exec(ctx, ex, `
		INSERT INTO learner_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// LoadLearnerState returns a zero state when nothing has been saved yet.
func (r *SQLRepository) LoadLearnerState(ctx context.Context) (LearnerState, error) {
	var out LearnerState
	rows, err := r.db.QueryContext(ctx, `SELECT state, low, medium, high FROM q_values ORDER BY seq ASC`)
	if err != nil {
		return LearnerState{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var v QValue
		if err := rows.Scan(&v.State, &v.Low, &v.Medium, &v.High); err != nil {
			return LearnerState{}, err
		}
		out.Values = append(out.Values, v)
	}
	if err := rows.Err(); err != nil {
		return LearnerState{}, err
	}

	metaRows, err := r.db.QueryContext(ctx, `SELECT key, value FROM learner_meta`)
	if err != nil {
		return LearnerState{}, err
	}
	defer metaRows.Close()
	for metaRows.Next() {
		var key, value string
		if err := metaRows.Scan(&key, &value); err != nil {
			return LearnerState{}, err
		}
		switch key {
		case metaLastAdaptation:
			out.LastAdaptation = value
		case metaDefaultEstimatedTime:
			minutes, convErr := strconv.Atoi(value)
			if convErr != nil {
				return LearnerState{}, fmt.Errorf("storage: bad %s %q: %w", key, value, convErr)
			}
			out.DefaultEstimatedTime = minutes
		}
	}
	return out, metaRows.Err()
}

func (r *SQLRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var deadline, created string
	if err := s.Scan(&out.ID, &out.Name, &deadline, &out.Tag, &out.EstimatedTime, &out.Sections, &out.Priority, &created); err != nil {
		return Task{}, err
	}
	deadlineAt, err := parseRequiredTime(deadline)
	if err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	out.Deadline = deadlineAt
	out.CreatedAt = createdAt
	return out, nil
}

func scanClass(s scanner) (Class, error) {
	var out Class
	var days, created string
	if err := s.Scan(&out.ID, &out.Name, &days, &out.StartTime, &out.EndTime, &created); err != nil {
		return Class{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Class{}, err
	}
	out.Days = strings.Split(days, ",")
	out.CreatedAt = createdAt
	return out, nil
}

func scanHistory(s scanner) (HistoryEntry, error) {
	var out HistoryEntry
	var deadline string
	if err := s.Scan(&out.ID, &out.Name, &deadline, &out.Tag, &out.EstimatedTime, &out.ActualTime, &out.CompletedDate, &out.CompletedAt); err != nil {
		return HistoryEntry{}, err
	}
	deadlineAt, err := parseRequiredTime(deadline)
	if err != nil {
		return HistoryEntry{}, err
	}
	out.Deadline = deadlineAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
