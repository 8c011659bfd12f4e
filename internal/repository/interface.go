package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/veranemoloko/task-workflow/internal/domain"
)

// TaskRepo defines the interface for task storage operations.
type TaskRepo interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	// TransitionStatus replaces the task status with change.To only if it still
	// equals change.From, and records change in the audit log in the same step.
	// It returns errors.ErrStatusConflict when the stored status differs.
	TransitionStatus(ctx context.Context, change *domain.StatusChange) (*domain.Task, error)
	ListStatusChanges(ctx context.Context, taskID uuid.UUID) ([]*domain.StatusChange, error)
	Close() error
}
