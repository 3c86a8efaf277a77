package models

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Every typed error below reports one of these through Is, so
// callers can branch with errors.Is without knowing the concrete type.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// Credentials errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	ID       int64
	IDs      []int64
}

func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) > 0 {
		return fmt.Sprintf("%s not found: %s", e.Resource, joinIDs(e.IDs))
	}
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a valid request that violates current state.
// TicketIDs lists the tickets responsible, when known.
type ConflictError struct {
	Message   string
	TicketIDs []int64
}

func NewConflictError(message string, ticketIDs ...int64) *ConflictError {
	return &ConflictError{Message: message, TicketIDs: ticketIDs}
}

func (e *ConflictError) Error() string {
	if len(e.TicketIDs) > 0 {
		return fmt.Sprintf("%s (boletos: %s)", e.Message, joinIDs(e.TicketIDs))
	}
	return e.Message
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// InvalidTransitionError is a conflict raised for an edge that does not
// exist in the order state machine.
type InvalidTransitionError struct {
	From OrderState
	To   OrderState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order state transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrConflict }

// ForbiddenError reports an authenticated actor acting outside their rights.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
