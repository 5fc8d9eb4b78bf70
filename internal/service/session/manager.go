package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/state"
)

type handle struct {
	mu       sync.Mutex
	ledger   *Ledger
	lastUsed atomic.Int64
}

func (h *handle) touch(t time.Time) { h.lastUsed.Store(t.UnixNano()) }

// Manager owns the ledgers of every open session. All ledgers share one base
// store, and calls into one session run one at a time.
type Manager struct {
	mu       sync.Mutex
	base     state.Reader
	sessions map[string]*handle
	opts     []Option
	idleTTL  time.Duration
	now      func() time.Time
	logger   *slog.Logger
	onClose  []func(id string)
}

type ManagerOption func(*Manager)

// WithLedgerOptions applies opts to every ledger the manager creates.
func WithLedgerOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.opts = append(m.opts, opts...) }
}

// WithIdleTTL makes Reap drop sessions unused for longer than ttl. Zero keeps sessions forever.
func WithIdleTTL(ttl time.Duration) ManagerOption { return func(m *Manager) { m.idleTTL = ttl } }

// WithOnClose registers fn to run after a session is deleted or reaped.
func WithOnClose(fn func(id string)) ManagerOption {
	return func(m *Manager) { m.onClose = append(m.onClose, fn) }
}

func WithClock(now func() time.Time) ManagerOption { return func(m *Manager) { m.now = now } }

func WithManagerLogger(l *slog.Logger) ManagerOption { return func(m *Manager) { m.logger = l } }

func NewManager(base state.Reader, opts ...ManagerOption) *Manager {
	m := &Manager{
		base:     base,
		sessions: make(map[string]*handle),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a new session and returns its id.
func (m *Manager) Create() string {
	id := uuid.NewString()
	opts := append([]Option{WithLogger(m.logger)}, m.opts...)
	opts = append(opts, WithID(id))
	h := &handle{ledger: New(m.base, opts...)}
	h.touch(m.now())

	m.mu.Lock()
	m.sessions[id] = h
	m.mu.Unlock()
	sessionsActive.Inc()
	m.logger.Debug("session created", "session_id", id)
	return id
}

// Do runs fn with exclusive access to the session's ledger.
func (m *Manager) Do(id string, fn func(l *Ledger) error) error {
	m.mu.Lock()
	h, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return &errs.NotFoundError{Kind: "session", ID: id}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.touch(m.now())
	return fn(h.ledger)
}

// Exists reports whether id names an open session.
func (m *Manager) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Delete closes the session. Its ledger is discarded.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return &errs.NotFoundError{Kind: "session", ID: id}
	}
	sessionsActive.Dec()
	m.logger.Debug("session deleted", "session_id", id)
	m.closed(id)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap closes sessions idle for longer than the idle TTL and returns how many it closed.
func (m *Manager) Reap() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL).UnixNano()
	var expired []string
	m.mu.Lock()
	for id, h := range m.sessions {
		if h.lastUsed.Load() < cutoff {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()
	for _, id := range expired {
		sessionsActive.Dec()
		m.logger.Info("session expired", "session_id", id)
		m.closed(id)
	}
	return len(expired)
}

func (m *Manager) closed(id string) {
	for _, fn := range m.onClose {
		fn(id)
	}
}

// Run reaps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.idleTTL <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Reap()
		}
	}
}
