package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/task-workflow/internal/domain"
	errpkg "github.com/veranemoloko/task-workflow/internal/errors"
)

func newTask(assigner, assignee string, createdAt time.Time) *domain.Task {
	return &domain.Task{
		ID:         uuid.New(),
		Title:      "task",
		AssignerID: assigner,
		AssigneeID: assignee,
		Status:     domain.TaskStatusAssigned,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func newChange(taskID uuid.UUID, from, to domain.TaskStatus, actor string, role domain.Role) *domain.StatusChange {
	return &domain.StatusChange{
		ID:        uuid.New(),
		TaskID:    taskID,
		From:      from,
		To:        to,
		ActorID:   actor,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

type repoFactory func(t *testing.T) TaskRepo

func repoFactories() map[string]repoFactory {
	return map[string]repoFactory{
		"file": func(t *testing.T) TaskRepo {
			repo, err := NewTaskStorage(filepath.Join(t.TempDir(), "state.json"))
			require.NoError(t, err)
			return repo
		},
		"sqlite": func(t *testing.T) TaskRepo {
			repo, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tasks.db"))
			require.NoError(t, err)
			t.Cleanup(func() { repo.Close() })
			return repo
		},
	}
}

func TestTaskRepo_CRUD(t *testing.T) {
	for name, factory := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			due := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
			task := newTask("alice", "bob", time.Now().UTC())
			task.Description = "quarterly numbers"
			task.DueAt = &due

			require.NoError(t, repo.CreateTask(ctx, task))

			got, err := repo.GetTask(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, task.ID, got.ID)
			assert.Equal(t, "quarterly numbers", got.Description)
			assert.Equal(t, domain.TaskStatusAssigned, got.Status)
			require.NotNil(t, got.DueAt)
			assert.True(t, due.Equal(*got.DueAt))

			_, err = repo.GetTask(ctx, uuid.New())
			assert.ErrorIs(t, err, errpkg.ErrTaskNotFound)
		})
	}
}

func TestTaskRepo_ListTasks(t *testing.T) {
	for name, factory := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			base := time.Now().UTC()
			t1 := newTask("alice", "bob", base)
			t2 := newTask("carol", "alice", base.Add(time.Second))
			t3 := newTask("carol", "dave", base.Add(2*time.Second))
			for _, task := range []*domain.Task{t1, t2, t3} {
				require.NoError(t, repo.CreateTask(ctx, task))
			}

			_, err := repo.TransitionStatus(ctx, newChange(t2.ID, domain.TaskStatusAssigned, domain.TaskStatusInProgress, "alice", domain.RoleAssignee))
			require.NoError(t, err)

			all, err := repo.ListTasks(ctx, domain.TaskFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 3)

			mine, err := repo.ListTasks(ctx, domain.TaskFilter{ParticipantID: "alice"})
			require.NoError(t, err)
			require.Len(t, mine, 2)
			assert.Equal(t, t1.ID, mine[0].ID)
			assert.Equal(t, t2.ID, mine[1].ID)

			inProgress := domain.TaskStatusInProgress
			filtered, err := repo.ListTasks(ctx, domain.TaskFilter{ParticipantID: "alice", Status: &inProgress})
			require.NoError(t, err)
			require.Len(t, filtered, 1)
			assert.Equal(t, t2.ID, filtered[0].ID)

			none, err := repo.ListTasks(ctx, domain.TaskFilter{ParticipantID: "nobody"})
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestTaskRepo_TransitionStatus(t *testing.T) {
	for name, factory := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			task := newTask("alice", "bob", time.Now().UTC())
			require.NoError(t, repo.CreateTask(ctx, task))

			start := newChange(task.ID, domain.TaskStatusAssigned, domain.TaskStatusInProgress, "bob", domain.RoleAssignee)
			start.Comment = "on it"
			updated, err := repo.TransitionStatus(ctx, start)
			require.NoError(t, err)
			assert.Equal(t, domain.TaskStatusInProgress, updated.Status)

			// stale expected status
			_, err = repo.TransitionStatus(ctx, newChange(task.ID, domain.TaskStatusAssigned, domain.TaskStatusInProgress, "bob", domain.RoleAssignee))
			assert.ErrorIs(t, err, errpkg.ErrStatusConflict)

			_, err = repo.TransitionStatus(ctx, newChange(uuid.New(), domain.TaskStatusAssigned, domain.TaskStatusInProgress, "bob", domain.RoleAssignee))
			assert.ErrorIs(t, err, errpkg.ErrTaskNotFound)

			_, err = repo.TransitionStatus(ctx, newChange(task.ID, domain.TaskStatusInProgress, domain.TaskStatusWaitingConfirm, "bob", domain.RoleAssignee))
			require.NoError(t, err)

			history, err := repo.ListStatusChanges(ctx, task.ID)
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, start.ID, history[0].ID)
			assert.Equal(t, "on it", history[0].Comment)
			assert.Equal(t, domain.RoleAssignee, history[0].Role)
			assert.Equal(t, domain.TaskStatusWaitingConfirm, history[1].To)

			got, err := repo.GetTask(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.TaskStatusWaitingConfirm, got.Status)

			_, err = repo.ListStatusChanges(ctx, uuid.New())
			assert.ErrorIs(t, err, errpkg.ErrTaskNotFound)
		})
	}
}

func TestTaskRepo_ConcurrentTransitions(t *testing.T) {
	for name, factory := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			task := newTask("alice", "bob", time.Now().UTC())
			require.NoError(t, repo.CreateTask(ctx, task))

			const attempts = 8
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				conflicts int
			)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.TransitionStatus(ctx, newChange(task.ID, domain.TaskStatusAssigned, domain.TaskStatusInProgress, "bob", domain.RoleAssignee))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case errors.Is(err, errpkg.ErrStatusConflict):
						conflicts++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, succeeded)
			assert.Equal(t, attempts-1, conflicts)

			history, err := repo.ListStatusChanges(ctx, task.ID)
			require.NoError(t, err)
			assert.Len(t, history, 1)
		})
	}
}

func TestTaskRepo_CanceledContext(t *testing.T) {
	for name, factory := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := repo.CreateTask(ctx, newTask("alice", "bob", time.Now()))
			assert.Error(t, err)
		})
	}
}

func TestTaskStorage_RestoresFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	repo, err := NewTaskStorage(file)
	require.NoError(t, err)

	task := newTask("alice", "bob", time.Now().UTC())
	require.NoError(t, repo.CreateTask(ctx, task))
	_, err = repo.TransitionStatus(ctx, newChange(task.ID, domain.TaskStatusAssigned, domain.TaskStatusInProgress, "bob", domain.RoleAssignee))
	require.NoError(t, err)

	reopened, err := NewTaskStorage(file)
	require.NoError(t, err)

	got, err := reopened.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status)

	history, err := reopened.ListStatusChanges(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTaskStorage_EmptyAndCorruptFile(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err := NewTaskStorage(empty)
	assert.NoError(t, err)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0644))
	_, err = NewTaskStorage(corrupt)
	assert.Error(t, err)
}

func TestTaskStorage_ReturnsCopies(t *testing.T) {
	repo, err := NewTaskStorage(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	ctx := context.Background()

	task := newTask("alice", "bob", time.Now())
	require.NoError(t, repo.CreateTask(ctx, task))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	got.Status = domain.TaskStatusApproved

	again, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusAssigned, again.Status)
}
