package scheduling

import (
	"errors"
	"fmt"
)

var (
	ErrSlotNotFound        = errors.New("slot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrSlotTaken is returned when a slot claim loses the race or the slot
	// is already held.
	ErrSlotTaken = errors.New("slot is not available")
	// ErrCancelCompleted guards the ledger: completed appointments are
	// immutable history.
	ErrCancelCompleted = errors.New("completed appointments cannot be cancelled")
	// ErrCancelConflict reports a cancel that lost to a concurrent status
	// change. The caller should re-read and retry.
	ErrCancelConflict = errors.New("appointment changed while cancelling")
	ErrForbidden      = errors.New("actor may not perform this operation")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func invalidField(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// InvalidTransitionError is returned when an action does not apply to the
// appointment's current status, including when a concurrent transition moved
// the status first. It carries what the caller needs to see: the status that
// was observed and the action that was attempted.
type InvalidTransitionError struct {
	Status Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s appointment in status %s", e.Action, e.Status)
}
