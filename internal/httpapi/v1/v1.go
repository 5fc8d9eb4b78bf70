// Package v1 serves session ledgers over HTTP: sessions, their actions,
// merged-state queries and a live event stream.
package v1

import (
	"log/slog"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/accta/internal/action"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	sessions  Sessions
	events    Events
	validator action.Validator
	ready     ReadyChecker
	origins   []string
	keepAlive time.Duration
	log       *slog.Logger
	rt        *chi.Mux
}

type Option func(*Server)

// WithReadiness makes /readyz report the checker's state.
func WithReadiness(rc ReadyChecker) Option { return func(s *Server) { s.ready = rc } }

// WithAllowedOrigins enables CORS for the given browser origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithValidator sets the validator used to decode posted actions.
func WithValidator(v action.Validator) Option { return func(s *Server) { s.validator = v } }

// WithKeepAlive sets how often an idle event stream sends a comment line.
func WithKeepAlive(d time.Duration) Option { return func(s *Server) { s.keepAlive = d } }
