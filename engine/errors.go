package engine

import "fmt"

// ValidationError rejects a malformed or out-of-range input to a recording
// operation. The subject record is left untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a referenced subject id absent from the supplied
// collection.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InconsistentStateError reports a child whose mother id does not resolve to
// a patient record. The alert scan skips the child and reports this instead
// of failing.
type InconsistentStateError struct {
	ChildID  string
	MotherID string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("child %s references missing mother %s", e.ChildID, e.MotherID)
}
