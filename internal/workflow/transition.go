// Package workflow decides which task status changes are legal and for whom.
//
// The base table says which statuses may follow which. Role rules narrow the
// table further for the assigner and the assignee; they never permit a change
// the table forbids. Everything here is pure and safe for concurrent use.
package workflow

import (
	"fmt"

	"github.com/veranemoloko/task-workflow/internal/domain"
)

type transition struct {
	from domain.TaskStatus
	to   domain.TaskStatus
}

// allowedTransitions is read-only after init.
var allowedTransitions = map[domain.TaskStatus]map[domain.TaskStatus]struct{}{
	domain.TaskStatusAssigned: {
		domain.TaskStatusInProgress: {},
	},
	domain.TaskStatusInProgress: {
		domain.TaskStatusWaitingConfirm: {},
	},
	domain.TaskStatusWaitingConfirm: {
		domain.TaskStatusApproved: {},
		domain.TaskStatusRejected: {},
	},
	domain.TaskStatusApproved: {},
	domain.TaskStatusRejected: {},
}

// roleTransitions is an allow-list; anything missing is denied.
var roleTransitions = map[domain.Role]map[transition]struct{}{
	domain.RoleAssignee: {
		{domain.TaskStatusAssigned, domain.TaskStatusInProgress}:       {},
		{domain.TaskStatusInProgress, domain.TaskStatusWaitingConfirm}: {},
	},
	domain.RoleAssigner: {
		{domain.TaskStatusWaitingConfirm, domain.TaskStatusApproved}: {},
		{domain.TaskStatusWaitingConfirm, domain.TaskStatusRejected}: {},
	},
}

// IsValidStatusTransition reports whether the table allows moving from current
// to proposed. A status never transitions to itself.
func IsValidStatusTransition(current, proposed domain.TaskStatus) bool {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	_, ok = allowed[proposed]
	return ok
}

// CanUserChangeStatus reports whether a caller acting in role may move a task
// from current to proposed.
func CanUserChangeStatus(role domain.Role, current, proposed domain.TaskStatus) bool {
	if !IsValidStatusTransition(current, proposed) {
		return false
	}
	_, ok := roleTransitions[role][transition{from: current, to: proposed}]
	return ok
}

// StatusTransitionErrorMessage explains why a change is refused. The role
// check is skipped when role is empty. The result is never empty.
func StatusTransitionErrorMessage(current, proposed domain.TaskStatus, role domain.Role) string {
	if !IsValidStatusTransition(current, proposed) {
		return fmt.Sprintf("status change from %s to %s is not permitted", current, proposed)
	}
	if role != "" && !CanUserChangeStatus(role, current, proposed) {
		return fmt.Sprintf("the %s cannot change the status from %s to %s", role, current, proposed)
	}
	return "status change is not permitted"
}

// Table returns a copy of the transition table with targets in workflow order.
func Table() map[domain.TaskStatus][]domain.TaskStatus {
	table := make(map[domain.TaskStatus][]domain.TaskStatus, len(allowedTransitions))
	for _, from := range domain.AllStatuses() {
		targets := []domain.TaskStatus{}
		for _, to := range domain.AllStatuses() {
			if IsValidStatusTransition(from, to) {
				targets = append(targets, to)
			}
		}
		table[from] = targets
	}
	return table
}
