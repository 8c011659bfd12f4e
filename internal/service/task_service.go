package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veranemoloko/task-workflow/internal/domain"
	errpkg "github.com/veranemoloko/task-workflow/internal/errors"
	"github.com/veranemoloko/task-workflow/internal/metrics"
	repo "github.com/veranemoloko/task-workflow/internal/repository"
	"github.com/veranemoloko/task-workflow/internal/workflow"
)

// TaskService creates tasks and moves them through the status workflow.
type TaskService struct {
	taskRepo repo.TaskRepo
	logger   *slog.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService on top of the given repository.
func NewTaskService(taskRepo repo.TaskRepo, logger *slog.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTask creates a task assigned by callerID to req.AssigneeID, starting in ASSIGNED.
func (s *TaskService) CreateTask(ctx context.Context, callerID string, req *domain.CreateTaskRequest) (*domain.Task, error) {
	if callerID == "" {
		return nil, errpkg.ErrUnauthorizedCaller
	}
	title := strings.TrimSpace(req.Title)
	assigneeID := strings.TrimSpace(req.AssigneeID)
	if title == "" || assigneeID == "" {
		return nil, errpkg.ErrInvalidTaskInput
	}
	if assigneeID == callerID {
		return nil, errpkg.ErrSelfAssignment
	}

	now := s.now().UTC()
	task := &domain.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: req.Description,
		AssignerID:  callerID,
		AssigneeID:  assigneeID,
		Status:      domain.TaskStatusAssigned,
		DueAt:       req.DueAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	metrics.TasksCreated.Inc()
	s.logger.Info("task created",
		"task_id", task.ID,
		"assigner_id", task.AssignerID,
		"assignee_id", task.AssigneeID,
	)
	return task, nil
}

// GetTask returns a task the caller participates in.
func (s *TaskService) GetTask(ctx context.Context, callerID string, id uuid.UUID) (*domain.Task, error) {
	task, _, err := s.loadForCaller(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns the tasks where the caller is assigner or assignee.
func (s *TaskService) ListTasks(ctx context.Context, callerID string, status *domain.TaskStatus) ([]*domain.Task, error) {
	if callerID == "" {
		return nil, errpkg.ErrUnauthorizedCaller
	}

	tasks, err := s.taskRepo.ListTasks(ctx, domain.TaskFilter{ParticipantID: callerID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ChangeStatus validates and applies a status change requested by callerID.
//
// Checks run in a fixed order: the target must be a known status, the task
// must exist, the caller must be its assigner or assignee, the target must
// differ from the current status, the transition table must allow it, and
// the caller's role must be allowed to make it. The write is a single
// compare-and-swap, so a concurrent change yields ErrStatusConflict.
func (s *TaskService) ChangeStatus(ctx context.Context, callerID string, id uuid.UUID, req *domain.UpdateStatusRequest) (*domain.Task, error) {
	task, err := s.changeStatus(ctx, callerID, id, req)
	if err != nil {
		reason := errpkg.Reason(err)
		metrics.TransitionsRejected.WithLabelValues(reason).Inc()
		if reason == "internal" {
			s.logger.Error("status change failed", "task_id", id, "caller_id", callerID, "error", err)
		} else {
			s.logger.Warn("status change rejected", "task_id", id, "caller_id", callerID, "reason", reason, "error", err)
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) changeStatus(ctx context.Context, callerID string, id uuid.UUID, req *domain.UpdateStatusRequest) (*domain.Task, error) {
	proposed, err := domain.ParseTaskStatus(string(req.Status))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errpkg.ErrInvalidStatus, err)
	}

	task, role, err := s.loadForCaller(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	current := task.Status
	if current == proposed {
		return nil, errpkg.NewTransitionError(errpkg.ErrNoOpTransition, fmt.Sprintf("task is already in status %s", current))
	}
	if !workflow.IsValidStatusTransition(current, proposed) {
		return nil, errpkg.NewTransitionError(errpkg.ErrInvalidTransition, workflow.StatusTransitionErrorMessage(current, proposed, ""))
	}
	if !workflow.CanUserChangeStatus(role, current, proposed) {
		return nil, errpkg.NewTransitionError(errpkg.ErrRoleNotPermitted, workflow.StatusTransitionErrorMessage(current, proposed, role))
	}

	change := &domain.StatusChange{
		ID:        uuid.New(),
		TaskID:    task.ID,
		From:      current,
		To:        proposed,
		ActorID:   callerID,
		Role:      role,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: s.now().UTC(),
	}

	updated, err := s.taskRepo.TransitionStatus(ctx, change)
	if err != nil {
		if errors.Is(err, errpkg.ErrStatusConflict) || errors.Is(err, errpkg.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	metrics.TransitionsApplied.WithLabelValues(string(current), string(proposed)).Inc()
	s.logger.Info("task status changed",
		"task_id", task.ID,
		"from", current,
		"to", proposed,
		"actor_id", callerID,
		"role", role,
	)
	return updated, nil
}

// AvailableTransitions returns the status changes the caller may make right now.
func (s *TaskService) AvailableTransitions(ctx context.Context, callerID string, id uuid.UUID) (*domain.TransitionsResponse, error) {
	task, role, err := s.loadForCaller(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	return &domain.TransitionsResponse{
		TaskID:  task.ID,
		Status:  task.Status,
		Role:    role,
		Options: workflow.AvailableTransitions(role, task.Status),
	}, nil
}

// History returns the audit log of a task, oldest first.
func (s *TaskService) History(ctx context.Context, callerID string, id uuid.UUID) ([]*domain.StatusChange, error) {
	if _, _, err := s.loadForCaller(ctx, callerID, id); err != nil {
		return nil, err
	}

	changes, err := s.taskRepo.ListStatusChanges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}
	return changes, nil
}

func (s *TaskService) loadForCaller(ctx context.Context, callerID string, id uuid.UUID) (*domain.Task, domain.Role, error) {
	task, err := s.taskRepo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to get task: %w", err)
	}

	role, ok := workflow.RoleFor(callerID, task)
	if !ok {
		return nil, "", errpkg.ErrUnauthorizedCaller
	}
	return task, role, nil
}
