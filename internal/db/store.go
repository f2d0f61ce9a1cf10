package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/metalagman/taskcli/internal/task"
)

const nextIDKey = "next_id"

// Store persists task state in SQLite. It implements task.Backend.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a task backend over an open database.
func NewStore(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every task ordered by id together with the id high-water mark.
func (s *Store) Load(ctx context.Context) (task.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, description, status, created_at, updated_at FROM tasks ORDER BY id`)
	if err != nil {
		return task.State{}, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var st task.State
	for rows.Next() {
		var (
			t                    task.Task
			status               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&t.ID, &t.Description, &status, &createdAt, &updatedAt); err != nil {
			return task.State{}, fmt.Errorf("scan task: %w", err)
		}
		t.Status = task.Status(status)
		if !t.Status.Valid() {
			return task.State{}, fmt.Errorf("%w: task %d has invalid status %q", task.ErrCorrupt, t.ID, status)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return task.State{}, fmt.Errorf("%w: task %d created_at: %v", task.ErrCorrupt, t.ID, err)
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return task.State{}, fmt.Errorf("%w: task %d updated_at: %v", task.ErrCorrupt, t.ID, err)
		}
		st.Tasks = append(st.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return task.State{}, fmt.Errorf("iterate tasks: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, nextIDKey)
	if err := row.Scan(&st.NextID); err != nil {
		if err != sql.ErrNoRows {
			return task.State{}, fmt.Errorf("read next id: %w", err)
		}
	}
	st.NextID = max(st.NextID, task.NextID(st.Tasks))
	return st, nil
}

// Save replaces the stored tasks and the id high-water mark in one transaction.
func (s *Store) Save(ctx context.Context, st task.State) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear tasks: %w", err)
	}
	for _, t := range st.Tasks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id, description, status, created_at, updated_at) VALUES(?, ?, ?, ?, ?)`,
			t.ID, t.Description, string(t.Status), formatTime(t.CreatedAt), formatTime(t.UpdatedAt)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, nextIDKey, st.NextID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update next id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tasks: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
