package v1

import (
	"net/http"
	"runtime/debug"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"log/slog"
)

// requestLogger logs one line per request once it completes. The route pattern
// and session id are read after routing; 5xx responses log at ERROR and 4xx at WARN.
func requestLogger(l *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			attrs := []any{
				"req_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					attrs = append(attrs, "route", pattern)
				}
				if sid := rc.URLParam("sid"); sid != "" {
					attrs = append(attrs, "session_id", sid)
				}
			}
			switch status := ww.Status(); {
			case status >= http.StatusInternalServerError:
				l.Error("request failed", attrs...)
			case status >= http.StatusBadRequest:
				l.Warn("request rejected", attrs...)
			default:
				l.Info("request complete", attrs...)
			}
		})
	}
}

// recoverer logs panics as ERROR and returns 500.
func recoverer(l *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					reqID := chimw.GetReqID(r.Context())
					l.Error("panic", "req_id", reqID, "err", rec, "stack", string(debug.Stack()))
					writeErr(w, http.StatusInternalServerError, "internal error", "internal")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
