package domain

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignerID  string     `json:"assigner_id"`
	AssigneeID  string     `json:"assignee_id"`
	Status      TaskStatus `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StatusChange is one entry of a task's audit log. Entries are written together
// with the status replace they describe.
type StatusChange struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	From      TaskStatus `json:"from"`
	To        TaskStatus `json:"to"`
	ActorID   string     `json:"actor_id"`
	Role      Role       `json:"role"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type TaskFilter struct {
	// ParticipantID limits results to tasks where the user is assigner or assignee.
	ParticipantID string
	Status        *TaskStatus
}

// Matches reports whether task satisfies every set field of the filter.
func (f TaskFilter) Matches(task *Task) bool {
	if f.ParticipantID != "" && task.AssignerID != f.ParticipantID && task.AssigneeID != f.ParticipantID {
		return false
	}
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	return true
}
