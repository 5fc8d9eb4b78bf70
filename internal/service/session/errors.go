package session

import (
	"errors"
	"fmt"

	"github.com/tinoosan/accta/internal/action"
	"github.com/tinoosan/accta/internal/errs"
)

// ReplayError names the remaining action that stopped a Remove.
// It unwraps to the action's own error.
type ReplayError struct {
	ActionID string
	Kind     action.Kind
	Err      error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("action %s no longer applies: %v", e.ActionID, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }

// outcome labels a failed action for metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, errs.ErrReferential):
		return "referential"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	case errors.Is(err, errs.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}
