package errors

import "errors"

var (
	ErrConfigNotFound     = errors.New("configuration file not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRoleNotPermitted   = errors.New("role not permitted to change status")
	ErrNoOpTransition     = errors.New("task is already in this status")
	ErrUnauthorizedCaller = errors.New("caller is not a participant of the task")
	ErrSelfAssignment     = errors.New("assigner and assignee must be different users")
	ErrInvalidTaskInput   = errors.New("task title and assignee must not be blank")
	ErrStatusConflict     = errors.New("task status was changed concurrently")
)

// TransitionError is a refused status change. Error returns the human-readable
// message; errors.Is matches the Kind sentinel.
type TransitionError struct {
	Kind    error
	Message string
}

func (e *TransitionError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *TransitionError) Unwrap() error {
	return e.Kind
}

// NewTransitionError builds a TransitionError of the given kind.
func NewTransitionError(kind error, message string) *TransitionError {
	return &TransitionError{Kind: kind, Message: message}
}

// Reason returns a short label for a rejection, used for metrics and logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrRoleNotPermitted):
		return "role_not_permitted"
	case errors.Is(err, ErrNoOpTransition):
		return "noop"
	case errors.Is(err, ErrUnauthorizedCaller):
		return "unauthorized_caller"
	case errors.Is(err, ErrTaskNotFound):
		return "not_found"
	case errors.Is(err, ErrStatusConflict):
		return "conflict"
	}
	return "internal"
}
