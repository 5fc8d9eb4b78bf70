package v1

import (
	"context"

	"github.com/tinoosan/accta/internal/events"
	"github.com/tinoosan/accta/internal/service/session"
)

// Sessions opens, serializes access to, and closes session ledgers.
type Sessions interface {
	Create() string
	// Do runs fn with exclusive access to the ledger of session id.
	Do(id string, fn func(l *session.Ledger) error) error
	Exists(id string) bool
	Delete(id string) error
}

// Events hands out per-session event subscriptions.
type Events interface {
	Subscribe(sessionID string) *events.Subscription
	Unsubscribe(s *events.Subscription)
}

// ReadyChecker is optionally implemented by seeding backends to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
