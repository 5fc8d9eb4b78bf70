package v1

import (
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const defaultKeepAlive = 15 * time.Second

// New constructs the HTTP server with routes and middleware.
// The logger is used by basic request/response logging and panic recovery.
func New(sessions Sessions, ev Events, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	s := &Server{
		sessions:  sessions,
		events:    ev,
		keepAlive: defaultKeepAlive,
		log:       logger,
		rt:        r,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Location", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	s.rt.Post("/v1/sessions", s.createSession)
	s.rt.Route("/v1/sessions/{sid}", func(r chi.Router) {
		r.Delete("/", s.deleteSession)
		// Actions
		r.Get("/actions", s.listActions)
		r.With(s.validateAction).Post("/actions", s.postAction)
		r.Delete("/actions/{aid}", s.removeAction)
		r.Post("/clear", s.clearActions)
		// Merged state
		r.Get("/company", s.getCompany)
		r.Get("/banks", s.listBanks)
		r.Get("/banks/{bid}/transactions", s.listTransactions)
		r.Get("/clients", s.listClients)
		r.Get("/suppliers", s.listSuppliers)
		r.Get("/invoices", s.listInvoices)
		r.Get("/documents", s.listDocuments)
		r.Get("/expenses", s.listExpenses)
		// Live notifications
		r.Get("/events", s.streamEvents)
	})
	// Health (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
