// Package session implements the per-conversation transaction ledger: an
// ordered list of actions replayed over a read-only base store, and the
// manager that hands ledgers out by session id.
package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"github.com/tinoosan/accta/internal/action"
	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/events"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/state"
	"github.com/tinoosan/accta/internal/storage/overlay"
)

// Notifier receives an event after every successful append, remove and clear.
type Notifier interface {
	Notify(ev events.Event) error
}

// Entry is an action recorded in a ledger, already prepared.
type Entry struct {
	ID     string
	Action action.Action
}

// Result reports a successful append.
type Result struct {
	ActionID string
	Kind     action.Kind
	EntityID uuid.UUID
}

// Ledger is not safe for concurrent use; Manager serializes access to it.
type Ledger struct {
	id       string
	base     state.Reader
	live     *overlay.Overlay
	entries  []Entry
	seq      int
	env      action.Env
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Ledger)

// WithID sets the session id stamped on events.
func WithID(id string) Option { return func(l *Ledger) { l.id = id } }

func WithNotifier(n Notifier) Option { return func(l *Ledger) { l.notifier = n } }

func WithLogger(lg *slog.Logger) Option { return func(l *Ledger) { l.logger = lg } }

// WithEnv sets the clock and id source used to prepare appended actions.
func WithEnv(env action.Env) Option {
	return func(l *Ledger) {
		l.env = env
		if env.Now != nil {
			l.now = env.Now
		}
	}
}

// New returns an empty ledger over base. base must not change while the ledger is in use.
func New(base state.Reader, opts ...Option) *Ledger {
	l := &Ledger{
		base:   base,
		live:   overlay.New(base),
		env:    action.DefaultEnv(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) ID() string { return l.id }

// Append applies a to the live overlay and records it. The sequence number is
// consumed even when a fails, so action ids keep increasing.
func (l *Ledger) Append(a action.Action) (Result, error) {
	if a == nil {
		return Result{}, errs.Invalid("action", "", "required")
	}
	l.seq++
	id := string(a.Kind()) + "-" + strconv.Itoa(l.seq)
	prepared := action.Prepare(a, l.env)

	entityID, err := action.Apply(prepared, l.live)
	if err != nil {
		actionsTotal.WithLabelValues(string(a.Kind()), outcome(err)).Inc()
		l.logger.Debug("action rejected", "session_id", l.id, "action_id", id, "err", err)
		return Result{}, err
	}
	actionsTotal.WithLabelValues(string(a.Kind()), "ok").Inc()
	l.entries = append(l.entries, Entry{ID: id, Action: prepared})
	l.logger.Debug("action appended", "session_id", l.id, "action_id", id, "entity_id", entityID)

	ev := events.Event{Type: events.Created, ActionID: id, ActionKind: string(a.Kind())}
	if env, err := action.Encode(prepared); err == nil {
		ev.Args = env.Args
	}
	l.notify(ev)
	return Result{ActionID: id, Kind: a.Kind(), EntityID: entityID}, nil
}

// Remove drops the action with id and rebuilds state by replaying the rest
// from the base store. If any remaining action no longer applies, Remove
// returns a *ReplayError and the ledger is left exactly as it was.
func (l *Ledger) Remove(id string) error {
	idx := l.index(id)
	if idx < 0 {
		return &errs.NotFoundError{Kind: "action", ID: id}
	}
	remaining := make([]Entry, 0, len(l.entries)-1)
	remaining = append(remaining, l.entries[:idx]...)
	remaining = append(remaining, l.entries[idx+1:]...)

	fresh, err := l.replay(remaining)
	if err != nil {
		l.logger.Info("remove rejected", "session_id", l.id, "action_id", id, "err", err)
		return err
	}
	removed := l.entries[idx]
	l.entries = remaining
	l.live = fresh
	l.logger.Debug("action removed", "session_id", l.id, "action_id", id)
	l.notify(events.Event{Type: events.Removed, ActionID: id, ActionKind: string(removed.Action.Kind())})
	return nil
}

// Clear drops every action and resets action numbering.
func (l *Ledger) Clear() {
	l.entries = nil
	l.seq = 0
	l.live = overlay.New(l.base)
	l.logger.Debug("ledger cleared", "session_id", l.id)
	l.notify(events.Event{Type: events.Cleared})
}

// Actions returns the recorded actions in order.
func (l *Ledger) Actions() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded actions.
func (l *Ledger) Len() int { return len(l.entries) }

func (l *Ledger) replay(entries []Entry) (*overlay.Overlay, error) {
	start := time.Now()
	fresh := overlay.New(l.base)
	for _, e := range entries {
		if _, err := action.Apply(e.Action, fresh); err != nil {
			replaysTotal.WithLabelValues("failed").Inc()
			replayDuration.Observe(time.Since(start).Seconds())
			return nil, &ReplayError{ActionID: e.ID, Kind: e.Action.Kind(), Err: err}
		}
	}
	replaysTotal.WithLabelValues("ok").Inc()
	replayDuration.Observe(time.Since(start).Seconds())
	return fresh, nil
}

func (l *Ledger) index(id string) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) notify(ev events.Event) {
	if l.notifier == nil {
		return
	}
	ev.SessionID = l.id
	ev.Time = l.now().UTC()
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Warn("notifier panicked", "session_id", l.id, "event", string(ev.Type), "err", fmt.Sprint(rec))
		}
	}()
	if err := l.notifier.Notify(ev); err != nil {
		l.logger.Warn("notify failed", "session_id", l.id, "event", string(ev.Type), "err", err)
	}
}

// Read-only queries against the live state.

func (l *Ledger) Company() ledger.Company          { return l.live.Company() }
func (l *Ledger) ListBanks() []ledger.Bank         { return l.live.ListBanks() }
func (l *Ledger) ListClients() []ledger.Client     { return l.live.ListClients() }
func (l *Ledger) ListSuppliers() []ledger.Supplier { return l.live.ListSuppliers() }
func (l *Ledger) ListInvoices() []ledger.Invoice   { return l.live.ListInvoices() }
func (l *Ledger) ListDocuments() []ledger.Document { return l.live.ListDocuments() }
func (l *Ledger) ListExpenses() []ledger.Expense   { return l.live.ListExpenses() }

func (l *Ledger) ListTransactions(bankID uuid.UUID) []ledger.BankTransaction {
	return l.live.ListTransactions(bankID)
}

func (l *Ledger) UnusedDocuments() []ledger.Document { return state.UnusedDocuments(l.live) }

func (l *Ledger) UnreconciledTransactions(bankID uuid.UUID) []ledger.BankTransaction {
	return state.UnreconciledTransactions(l.live, bankID)
}

var _ state.Reader = (*Ledger)(nil)
