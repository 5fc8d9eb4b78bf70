package v1

import (
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/service/session"
)

// query runs fn against the session's merged state and writes its result.
func (s *Server) query(w http.ResponseWriter, r *http.Request, fn func(l *session.Ledger) (any, error)) {
	var out any
	err := s.sessions.Do(chi.URLParam(r, "sid"), func(l *session.Ledger) error {
		var err error
		out, err = fn(l)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, func(l *session.Ledger) (any, error) { return l.Company(), nil })
}

func (s *Server) listBanks(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, func(l *session.Ledger) (any, error) { return items(l.ListBanks()), nil })
}

// GET /v1/sessions/{sid}/banks/{bid}/transactions?unreconciled=true
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "bid")
	bankID, err := uuid.Parse(raw)
	if err != nil {
		s.fail(w, r, errs.Invalid("bank_id", raw, "not a uuid"))
		return
	}
	unreconciled, err := boolParam(r, "unreconciled")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.query(w, r, func(l *session.Ledger) (any, error) {
		if !hasBank(l.ListBanks(), bankID) {
			return nil, &errs.NotFoundError{Kind: "bank", ID: bankID.String()}
		}
		if unreconciled {
			return items(l.UnreconciledTransactions(bankID)), nil
		}
		return items(l.ListTransactions(bankID)), nil
	})
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, func(l *session.Ledger) (any, error) { return items(l.ListClients()), nil })
}

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, func(l *session.Ledger) (any, error) { return items(l.ListSuppliers()), nil })
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, func(l *session.Ledger) (any, error) { return items(l.ListInvoices()), nil })
}

// GET /v1/sessions/{sid}/documents?unused=true
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	unused, err := boolParam(r, "unused")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.query(w, r, func(l *session.Ledger) (any, error) {
		if unused {
			return items(l.UnusedDocuments()), nil
		}
		return items(l.ListDocuments()), nil
	})
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, func(l *session.Ledger) (any, error) { return items(l.ListExpenses()), nil })
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errs.Invalid(name, raw, "not a boolean")
	}
	return v, nil
}

func hasBank(banks []ledger.Bank, id uuid.UUID) bool {
	for _, b := range banks {
		if b.ID == id {
			return true
		}
	}
	return false
}
