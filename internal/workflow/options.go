package workflow

import "github.com/veranemoloko/task-workflow/internal/domain"

type prompt struct {
	question    string
	description string
}

var prompts = map[transition]prompt{
	{domain.TaskStatusAssigned, domain.TaskStatusInProgress}: {
		question:    "Start work?",
		description: "Mark the task as in progress.",
	},
	{domain.TaskStatusInProgress, domain.TaskStatusWaitingConfirm}: {
		question:    "Request confirmation?",
		description: "Submit the finished work to the assigner for review.",
	},
	{domain.TaskStatusWaitingConfirm, domain.TaskStatusApproved}: {
		question:    "Approve?",
		description: "Accept the submitted work and close the task.",
	},
	{domain.TaskStatusWaitingConfirm, domain.TaskStatusRejected}: {
		question:    "Reject?",
		description: "Decline the submitted work and close the task.",
	},
}

// AvailableTransitions lists the status changes role may make from current,
// in workflow order. Terminal statuses yield an empty list.
func AvailableTransitions(role domain.Role, current domain.TaskStatus) []domain.TransitionOption {
	options := []domain.TransitionOption{}
	for _, to := range domain.AllStatuses() {
		if !CanUserChangeStatus(role, current, to) {
			continue
		}
		p := prompts[transition{from: current, to: to}]
		options = append(options, domain.TransitionOption{
			To:          to,
			Prompt:      p.question,
			Description: p.description,
		})
	}
	return options
}
