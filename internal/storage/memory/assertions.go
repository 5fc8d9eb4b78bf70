package memory

import "github.com/tinoosan/accta/internal/state"

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ state.Reader = (*Store)(nil)
	_ state.Writer = (*Store)(nil)
	_ state.State  = (*Store)(nil)
)
