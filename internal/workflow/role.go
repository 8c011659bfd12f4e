package workflow

import "github.com/veranemoloko/task-workflow/internal/domain"

// ClassifyRole returns the caller's role relative to a task. The second result
// is false when the caller is neither assigner nor assignee.
func ClassifyRole(callerID, assignerID, assigneeID string) (domain.Role, bool) {
	switch {
	case callerID == "":
		return "", false
	case callerID == assignerID:
		return domain.RoleAssigner, true
	case callerID == assigneeID:
		return domain.RoleAssignee, true
	}
	return "", false
}

// RoleFor is ClassifyRole applied to a stored task.
func RoleFor(callerID string, task *domain.Task) (domain.Role, bool) {
	return ClassifyRole(callerID, task.AssignerID, task.AssigneeID)
}
