package v1

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/action"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// actionResponse is a recorded action in its envelope form.
type actionResponse struct {
	ID   string          `json:"id"`
	Kind action.Kind     `json:"kind"`
	Args json.RawMessage `json:"args"`
}

type appendResponse struct {
	ActionID string      `json:"action_id"`
	Kind     action.Kind `json:"kind"`
	EntityID uuid.UUID   `json:"entity_id"`
}

// listResponse wraps collections so an empty one encodes as [] rather than null.
type listResponse[T any] struct {
	Items []T `json:"items"`
}

func items[T any](xs []T) listResponse[T] {
	if xs == nil {
		xs = []T{}
	}
	return listResponse[T]{Items: xs}
}
