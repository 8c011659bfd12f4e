package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/veranemoloko/task-workflow/internal/domain"
	errpkg "github.com/veranemoloko/task-workflow/internal/errors"
	"github.com/veranemoloko/task-workflow/internal/validation"
)

// TaskServiceI defines the interface for task-related business logic.
type TaskServiceI interface {
	CreateTask(ctx context.Context, callerID string, req *domain.CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, callerID string, id uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, callerID string, status *domain.TaskStatus) ([]*domain.Task, error)
	ChangeStatus(ctx context.Context, callerID string, id uuid.UUID, req *domain.UpdateStatusRequest) (*domain.Task, error)
	AvailableTransitions(ctx context.Context, callerID string, id uuid.UUID) (*domain.TransitionsResponse, error)
	History(ctx context.Context, callerID string, id uuid.UUID) ([]*domain.StatusChange, error)
}

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	taskService TaskServiceI
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the provided service and logger.
func NewTaskHandler(taskService TaskServiceI, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(ctx, CallerID(ctx), &req)
	if err != nil {
		h.handleServiceError(w, "failed to create task", err)
		return
	}

	writeJSON(w, http.StatusCreated, domain.NewTaskResponse(task))
}

// ListTasks handles GET /tasks with an optional ?status= filter.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var status *domain.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		if err := validation.ValidateStatus(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s := domain.TaskStatus(raw)
		status = &s
	}

	tasks, err := h.taskService.ListTasks(ctx, CallerID(ctx), status)
	if err != nil {
		h.handleServiceError(w, "failed to list tasks", err)
		return
	}

	response := make([]domain.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, domain.NewTaskResponse(task))
	}
	writeJSON(w, http.StatusOK, response)
}

// GetTask handles GET /tasks/{taskID}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(ctx, CallerID(ctx), taskID)
	if err != nil {
		h.handleServiceError(w, "failed to get task", err)
		return
	}

	writeJSON(w, http.StatusOK, domain.NewTaskResponse(task))
}

// ChangeStatus handles PATCH /tasks/{taskID}/status.
func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.ChangeStatus(ctx, CallerID(ctx), taskID, &req)
	if err != nil {
		h.handleServiceError(w, "failed to change task status", err)
		return
	}

	writeJSON(w, http.StatusOK, domain.NewTaskResponse(task))
}

// Transitions handles GET /tasks/{taskID}/transitions.
func (h *TaskHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	options, err := h.taskService.AvailableTransitions(ctx, CallerID(ctx), taskID)
	if err != nil {
		h.handleServiceError(w, "failed to get transitions", err)
		return
	}

	writeJSON(w, http.StatusOK, options)
}

// History handles GET /tasks/{taskID}/history.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	changes, err := h.taskService.History(ctx, CallerID(ctx), taskID)
	if err != nil {
		h.handleServiceError(w, "failed to get task history", err)
		return
	}

	writeJSON(w, http.StatusOK, changes)
}

func parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return uuid.Nil, false
	}
	return taskID, true
}

func (h *TaskHandler) handleServiceError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errpkg.ErrInvalidStatus), errors.Is(err, errpkg.ErrSelfAssignment),
		errors.Is(err, errpkg.ErrInvalidTaskInput):
		return http.StatusBadRequest
	case errors.Is(err, errpkg.ErrUnauthorizedCaller), errors.Is(err, errpkg.ErrRoleNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, errpkg.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, errpkg.ErrNoOpTransition), errors.Is(err, errpkg.ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, errpkg.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
