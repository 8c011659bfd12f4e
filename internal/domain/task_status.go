package domain

import (
	"fmt"
	"strings"
)

// TaskStatus represents the current state of a Task.
type TaskStatus string

const (
	TaskStatusAssigned       TaskStatus = "ASSIGNED"
	TaskStatusInProgress     TaskStatus = "IN_PROGRESS"
	TaskStatusWaitingConfirm TaskStatus = "WAITING_CONFIRM"
	TaskStatusApproved       TaskStatus = "APPROVED"
	TaskStatusRejected       TaskStatus = "REJECTED"
)

// AllStatuses lists every TaskStatus in workflow order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusAssigned,
		TaskStatusInProgress,
		TaskStatusWaitingConfirm,
		TaskStatusApproved,
		TaskStatusRejected,
	}
}

func (s TaskStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusAssigned, TaskStatusInProgress, TaskStatusWaitingConfirm, TaskStatusApproved, TaskStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further status change is possible from s.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusApproved || s == TaskStatusRejected
}

// ParseTaskStatus converts user input into a TaskStatus. Matching ignores case
// and surrounding whitespace.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", raw)
	}
	return s, nil
}

// Role is the relationship of a caller to a task for a single status change.
type Role string

const (
	RoleAssigner Role = "assigner"
	RoleAssignee Role = "assignee"
)

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is a role with transition rights.
func (r Role) Valid() bool {
	return r == RoleAssigner || r == RoleAssignee
}

// ParseRole converts user input into a Role.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return r, nil
}
