// Package events carries ledger notifications from sessions to live observers
// such as the browser action pane.
package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"log/slog"
)

// Type is the kind of change a session reports.
type Type string

const (
	Created Type = "created"
	Removed Type = "removed"
	Cleared Type = "cleared"
)

// Event describes one successful change to a session's action list.
// ActionID, ActionKind and Args are empty for Cleared.
type Event struct {
	Type       Type            `json:"type"`
	SessionID  string          `json:"session_id"`
	ActionID   string          `json:"action_id,omitempty"`
	ActionKind string          `json:"action_kind,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Time       time.Time       `json:"time"`
}

// ErrClosed is returned by Notify after Close.
var ErrClosed = errors.New("events: broker closed")

var eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "accta",
	Name:      "events_dropped_total",
	Help:      "Events not delivered because a subscriber was not keeping up",
})

// Subscription receives the events of one session until it is unsubscribed.
type Subscription struct {
	C         <-chan Event
	ch        chan Event
	sessionID string
}

// Broker fans events out to per-session subscribers. Delivery never blocks
// the publisher: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

// NewBroker returns a broker giving each subscriber a buffer of size buffer.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{subs: make(map[string]map[*Subscription]struct{}), buffer: buffer, logger: logger}
}

// Subscribe registers a subscriber for sessionID. After Close the returned
// subscription's channel is already closed.
func (b *Broker) Subscribe(sessionID string) *Subscription {
	ch := make(chan Event, b.buffer)
	s := &Subscription{C: ch, ch: ch, sessionID: sessionID}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return s
	}
	set, ok := b.subs[sessionID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[sessionID] = set
	}
	set[s] = struct{}{}
	return s
}

// Unsubscribe removes s and closes its channel. It is safe to call twice.
func (b *Broker) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[s.sessionID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(b.subs, s.sessionID)
	}
	close(s.ch)
}

// CloseSession ends every subscription of sessionID. Later subscribers of the
// same id are unaffected.
func (b *Broker) CloseSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[sessionID] {
		close(s.ch)
	}
	delete(b.subs, sessionID)
}

// Subscribers returns how many subscriptions sessionID has.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}

// Notify delivers ev to every subscriber of ev.SessionID.
func (b *Broker) Notify(ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for s := range b.subs[ev.SessionID] {
		select {
		case s.ch <- ev:
		default:
			eventsDropped.Inc()
			b.logger.Debug("event dropped", "session_id", ev.SessionID, "type", string(ev.Type), "action_id", ev.ActionID)
		}
	}
	return nil
}

// Close ends every subscription. Later calls to Notify fail with ErrClosed.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, set := range b.subs {
		for s := range set {
			close(s.ch)
		}
		delete(b.subs, id)
	}
}
