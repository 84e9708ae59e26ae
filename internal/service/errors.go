package service

import (
	"errors"
	"fmt"

	"roadside-service/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	From model.RequestStatus
	To   model.RequestStatus
	Role model.Role
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move request from %s to %s as %s", e.From, e.To, e.Role)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflict(detail string) error {
	return fmt.Errorf("%w: %s", ErrConflict, detail)
}
