package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/veranemoloko/task-workflow/internal/domain"
	errpkg "github.com/veranemoloko/task-workflow/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	assigner_id TEXT NOT NULL,
	assignee_id TEXT NOT NULL,
	status      TEXT NOT NULL,
	due_at      TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	CHECK (assigner_id <> assignee_id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_assigner ON tasks(assigner_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);

CREATE TABLE IF NOT EXISTS status_changes (
	id          TEXT PRIMARY KEY,
	task_id     TEXT NOT NULL REFERENCES tasks(id),
	from_status TEXT NOT NULL,
	to_status   TEXT NOT NULL,
	actor_id    TEXT NOT NULL,
	role        TEXT NOT NULL,
	comment     TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_status_changes_task ON status_changes(task_id, created_at);
`

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `id, title, description, assigner_id, assignee_id, status, due_at, created_at, updated_at`

// SQLiteStorage stores tasks and their audit log in a SQLite database.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at dbPath and ensures the schema exists.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer keeps the compare-and-swap free of SQLITE_BUSY retries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("SQLite repository initialized", "db_path", dbPath)
	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CreateTask inserts a new task.
func (s *SQLiteStorage) CreateTask(ctx context.Context, task *domain.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID.String(), task.Title, task.Description, task.AssignerID, task.AssigneeID,
		string(task.Status), formatNullTime(task.DueAt), formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	slog.Debug("Task created and saved", "task_id", task.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStorage) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id.String())
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errpkg.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListTasks returns the tasks matching filter, oldest first.
func (s *SQLiteStorage) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.ParticipantID != "" {
		where = append(where, "(assigner_id = ? OR assignee_id = ?)")
		args = append(args, filter.ParticipantID, filter.ParticipantID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// TransitionStatus swaps the task status and inserts the audit entry in one transaction.
func (s *SQLiteStorage) TransitionStatus(ctx context.Context, change *domain.StatusChange) (*domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(change.To), formatTime(change.CreatedAt), change.TaskID.String(), string(change.From),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, change.TaskID.String()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errpkg.ErrTaskNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check task: %w", err)
		}
		return nil, errpkg.ErrStatusConflict
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO status_changes (id, task_id, from_status, to_status, actor_id, role, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		change.ID.String(), change.TaskID.String(), string(change.From), string(change.To),
		change.ActorID, string(change.Role), change.Comment, formatTime(change.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert status change: %w", err)
	}

	task, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, change.TaskID.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	slog.Debug("Task status changed and saved", "task_id", change.TaskID, "from", change.From, "to", change.To)
	return task, nil
}

// ListStatusChanges returns the audit log of a task, oldest first.
func (s *SQLiteStorage) ListStatusChanges(ctx context.Context, taskID uuid.UUID) ([]*domain.StatusChange, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, from_status, to_status, actor_id, role, comment, created_at
		 FROM status_changes WHERE task_id = ? ORDER BY created_at, rowid`,
		taskID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}
	defer rows.Close()

	changes := []*domain.StatusChange{}
	for rows.Next() {
		var (
			c                       domain.StatusChange
			id, tid, from, to, role string
			createdAt               string
		)
		if err := rows.Scan(&id, &tid, &from, &to, &c.ActorID, &role, &c.Comment, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid status change id %q: %w", id, err)
		}
		if c.TaskID, err = uuid.Parse(tid); err != nil {
			return nil, fmt.Errorf("invalid task id %q: %w", tid, err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		c.From = domain.TaskStatus(from)
		c.To = domain.TaskStatus(to)
		c.Role = domain.Role(role)
		changes = append(changes, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status changes: %w", err)
	}
	return changes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                 domain.Task
		id, status           string
		dueAt                sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &task.Title, &task.Description, &task.AssignerID, &task.AssigneeID,
		&status, &dueAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if task.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", id, err)
	}
	task.Status = domain.TaskStatus(status)
	if dueAt.Valid {
		due, err := parseTime(dueAt.String)
		if err != nil {
			return nil, err
		}
		task.DueAt = &due
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &task, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
