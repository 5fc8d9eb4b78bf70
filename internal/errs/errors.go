package errs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	// ErrInvalid is used for malformed input rejected before it reaches a ledger.
	ErrInvalid = errors.New("invalid")
	// ErrReferential indicates an identifier that does not resolve to an existing entity.
	ErrReferential = errors.New("referential")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Invalid is shorthand for a ValidationError.
func Invalid(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ReferentialError reports an id of the given kind (client, transaction, ...) that
// does not exist in the state it was checked against.
type ReferentialError struct {
	Kind string
	ID   uuid.UUID
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("invalid %s id: %s", e.Kind, e.ID)
}

func (e *ReferentialError) Unwrap() error { return ErrReferential }

// ConflictError reports a transaction or document already referenced by an expense.
type ConflictError struct {
	Kind      string
	ID        uuid.UUID
	ExpenseID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is already expensed (expense %s)", e.Kind, e.ID, e.ExpenseID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ExistsError reports a creation whose pinned id is already taken.
type ExistsError struct {
	Kind string
	ID   uuid.UUID
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.ID)
}

func (e *ExistsError) Unwrap() error { return ErrConflict }

// NotFoundError reports a lookup by identifier that matched nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
