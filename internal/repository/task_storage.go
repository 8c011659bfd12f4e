package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/veranemoloko/task-workflow/internal/domain"
	errpkg "github.com/veranemoloko/task-workflow/internal/errors"
)

type state struct {
	Tasks         []*domain.Task         `json:"tasks"`
	StatusChanges []*domain.StatusChange `json:"status_changes"`
}

// TaskStorage provides in-memory storage for tasks backed by a JSON state file.
// Every write rewrites the whole file through a temporary file and a rename.
type TaskStorage struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]*domain.Task
	changes map[uuid.UUID][]*domain.StatusChange
	file    string
}

// NewTaskStorage creates a new TaskStorage and loads tasks from the file if it exists.
func NewTaskStorage(filePath string) (*TaskStorage, error) {
	repo := &TaskStorage{
		tasks:   make(map[uuid.UUID]*domain.Task),
		changes: make(map[uuid.UUID][]*domain.StatusChange),
		file:    filepath.Clean(filePath),
	}

	if err := repo.restoreState(); err != nil {
		return nil, fmt.Errorf("failed to load state from file: %w", err)
	}

	slog.Info("File repository initialized", "file_path", repo.file, "tasks_count", len(repo.tasks))
	return repo, nil
}

func (r *TaskStorage) restoreState() error {
	if isFileNotExist(r.file) {
		slog.Info("State file does not exist, starting with empty state", "file_path", r.file)
		return nil
	}

	data, err := os.ReadFile(r.file)
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	if len(data) == 0 {
		slog.Warn("State file is empty")
		return nil
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to unmarshal state file: %w", err)
	}

	for _, task := range st.Tasks {
		r.tasks[task.ID] = task
	}
	for _, change := range st.StatusChanges {
		r.changes[change.TaskID] = append(r.changes[change.TaskID], change)
	}

	slog.Info("State loaded from file", "tasks_count", len(st.Tasks), "file_path", r.file)
	return nil
}

func isFileNotExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return os.IsNotExist(err)
}

// persistState must be called with r.mu held for writing.
func (r *TaskStorage) persistState() error {
	st := state{
		Tasks:         make([]*domain.Task, 0, len(r.tasks)),
		StatusChanges: []*domain.StatusChange{},
	}
	for _, task := range r.tasks {
		st.Tasks = append(st.Tasks, task)
	}
	sort.Slice(st.Tasks, func(i, j int) bool {
		return st.Tasks[i].CreatedAt.Before(st.Tasks[j].CreatedAt)
	})
	for _, task := range st.Tasks {
		st.StatusChanges = append(st.StatusChanges, r.changes[task.ID]...)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tempFile := r.file + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, r.file); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	slog.Debug("State saved to file", "tasks_count", len(st.Tasks), "file_path", r.file)
	return nil
}

// CreateTask adds a new task and persists it to the file.
func (r *TaskStorage) CreateTask(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *task

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = &stored
	if err := r.persistState(); err != nil {
		delete(r.tasks, task.ID)
		return fmt.Errorf("failed to save state after creating task: %w", err)
	}

	slog.Debug("Task created and saved", "task_id", task.ID)
	return nil
}

// GetTask retrieves a copy of the task by ID.
func (r *TaskStorage) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	task, exists := r.tasks[id]
	r.mu.RUnlock()

	if !exists {
		return nil, errpkg.ErrTaskNotFound
	}
	found := *task
	return &found, nil
}

// ListTasks returns copies of the tasks matching filter, oldest first.
func (r *TaskStorage) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	filtered := []*domain.Task{}
	for _, task := range r.tasks {
		if filter.Matches(task) {
			found := *task
			filtered = append(filtered, &found)
		}
	}
	r.mu.RUnlock()

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// TransitionStatus swaps the task status and appends the audit entry.
func (r *TaskStorage) TransitionStatus(ctx context.Context, change *domain.StatusChange) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[change.TaskID]
	if !exists {
		return nil, errpkg.ErrTaskNotFound
	}
	if task.Status != change.From {
		return nil, errpkg.ErrStatusConflict
	}

	previous := *task
	task.Status = change.To
	task.UpdatedAt = change.CreatedAt
	entry := *change
	r.changes[task.ID] = append(r.changes[task.ID], &entry)

	if err := r.persistState(); err != nil {
		*task = previous
		r.changes[task.ID] = r.changes[task.ID][:len(r.changes[task.ID])-1]
		return nil, fmt.Errorf("failed to save state after status change: %w", err)
	}

	slog.Debug("Task status changed and saved", "task_id", task.ID, "from", change.From, "to", change.To)
	updated := *task
	return &updated, nil
}

// ListStatusChanges returns the audit log of a task, oldest first.
func (r *TaskStorage) ListStatusChanges(ctx context.Context, taskID uuid.UUID) ([]*domain.StatusChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.tasks[taskID]; !exists {
		return nil, errpkg.ErrTaskNotFound
	}

	changes := make([]*domain.StatusChange, 0, len(r.changes[taskID]))
	for _, c := range r.changes[taskID] {
		entry := *c
		changes = append(changes, &entry)
	}
	return changes, nil
}

// Close is a no-op; every write is already on disk.
func (r *TaskStorage) Close() error {
	return nil
}
