package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a new Task.
// The caller becomes the task's assigner.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	AssigneeID  string     `json:"assignee_id" validate:"required,notblank,max=128"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

// UpdateStatusRequest represents the request body for changing a task's status.
type UpdateStatusRequest struct {
	Status  TaskStatus `json:"status" validate:"required,task_status"`
	Comment string     `json:"comment" validate:"max=1000"`
}

// TaskResponse represents the response returned for a Task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"task_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignerID  string     `json:"assigner_id"`
	AssigneeID  string     `json:"assignee_id"`
	Status      TaskStatus `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskResponse builds the API view of a task.
func NewTaskResponse(task *Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		AssignerID:  task.AssignerID,
		AssigneeID:  task.AssigneeID,
		Status:      task.Status,
		DueAt:       task.DueAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// TransitionOption is a status change the caller may offer as an action.
type TransitionOption struct {
	To          TaskStatus `json:"to" yaml:"to"`
	Prompt      string     `json:"prompt" yaml:"prompt"`
	Description string     `json:"description" yaml:"description"`
}

// TransitionsResponse lists what the caller can do with a task right now.
type TransitionsResponse struct {
	TaskID  uuid.UUID          `json:"task_id"`
	Status  TaskStatus         `json:"status"`
	Role    Role               `json:"role"`
	Options []TransitionOption `json:"options"`
}
