package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/accta/internal/errs"
)

// GET /v1/sessions/{sid}/events streams the session's ledger events as
// server-sent events until the client goes away, the session is closed or the
// broker closes.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if !s.sessions.Exists(sid) {
		s.fail(w, r, &errs.NotFoundError{Kind: "session", ID: sid})
		return
	}
	sub := s.events.Subscribe(sid)
	defer s.events.Unsubscribe(sub)

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.log.Warn("event stream not flushable", "req_id", chimw.GetReqID(r.Context()), "err", err)
		return
	}

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Warn("event encode failed", "session_id", sid, "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
		case <-keepAlive.C:
			if !s.sessions.Exists(sid) {
				return
			}
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
