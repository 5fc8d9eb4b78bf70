package v1

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/accta/internal/action"
	"github.com/tinoosan/accta/internal/service/session"
)

// POST /v1/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	w.Header().Set("Location", "/v1/sessions/"+id)
	toJSON(w, http.StatusCreated, sessionResponse{SessionID: id})
}

// DELETE /v1/sessions/{sid}
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "sid")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/sessions/{sid}/actions
func (s *Server) listActions(w http.ResponseWriter, r *http.Request) {
	var out []actionResponse
	err := s.sessions.Do(chi.URLParam(r, "sid"), func(l *session.Ledger) error {
		for _, e := range l.Actions() {
			env, err := action.Encode(e.Action)
			if err != nil {
				return err
			}
			out = append(out, actionResponse{ID: e.ID, Kind: env.Kind, Args: env.Args})
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, items(out))
}

// POST /v1/sessions/{sid}/actions
func (s *Server) postAction(w http.ResponseWriter, r *http.Request) {
	a, _ := r.Context().Value(ctxKeyAction).(action.Action)
	sid := chi.URLParam(r, "sid")
	var res session.Result
	err := s.sessions.Do(sid, func(l *session.Ledger) error {
		var err error
		res, err = l.Append(a)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+sid+"/actions/"+res.ActionID)
	toJSON(w, http.StatusCreated, appendResponse{ActionID: res.ActionID, Kind: res.Kind, EntityID: res.EntityID})
}

// DELETE /v1/sessions/{sid}/actions/{aid}
func (s *Server) removeAction(w http.ResponseWriter, r *http.Request) {
	aid := chi.URLParam(r, "aid")
	err := s.sessions.Do(chi.URLParam(r, "sid"), func(l *session.Ledger) error {
		return l.Remove(aid)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/sessions/{sid}/clear
func (s *Server) clearActions(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.Do(chi.URLParam(r, "sid"), func(l *session.Ledger) error {
		l.Clear()
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
