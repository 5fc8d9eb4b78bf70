package v1

import (
	"github.com/tinoosan/accta/internal/events"
	"github.com/tinoosan/accta/internal/service/session"
	"github.com/tinoosan/accta/internal/storage/postgres"
)

// Compile-time interface assertions for the collaborators the server is wired with.
var (
	_ Sessions     = (*session.Manager)(nil)
	_ Events       = (*events.Broker)(nil)
	_ ReadyChecker = (*postgres.Store)(nil)
)
