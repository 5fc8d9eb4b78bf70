package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tinoosan/accta/internal/action"
)

type ctxKey string

const ctxKeyAction ctxKey = "validatedAction"

const maxActionBytes = 1 << 20

// validateAction decodes the action envelope of POST /actions through the
// constructors and stores the validated action in the request context.
func (s *Server) validateAction(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requireJSON(w, r) {
			return
		}
		var env action.Envelope
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&env); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "invalid_json")
			return
		}
		a, err := s.validator.Decode(env)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyAction, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
