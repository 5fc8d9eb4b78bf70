package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/service/session"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// ActionID names the recorded action a replay failed on.
	ActionID string `json:"action_id,omitempty"`
}

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

// statusOf maps domain errors onto an HTTP status and error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrInvalid):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, errs.ErrReferential):
		return http.StatusUnprocessableEntity, "referential"
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes err as an API error. Unmapped errors are logged and hidden.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	resp := errorResponse{Error: err.Error(), Code: code}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "req_id", chimw.GetReqID(r.Context()), "err", err)
		resp.Error = "internal error"
	}
	var replay *session.ReplayError
	if errors.As(err, &replay) {
		resp.Code = "replay_" + code
		resp.ActionID = replay.ActionID
	}
	toJSON(w, status, resp)
}
