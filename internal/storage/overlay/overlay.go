// Package overlay provides the per-session transient state: a delta layer over
// a read-only source whose reads merge source data with the session's own
// writes, the session's entries winning by identifier.
package overlay

import (
	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/state"
)

// Overlay holds the entities written during a session. It never writes to its
// source. Banks and bank transactions always come from the source.
type Overlay struct {
	src       state.Reader
	company   *ledger.Company
	clients   *state.Table[ledger.Client]
	suppliers *state.Table[ledger.Supplier]
	invoices  *state.Table[ledger.Invoice]
	expenses  *state.Table[ledger.Expense]
}

// New returns an empty overlay over src. src may itself be an Overlay.
func New(src state.Reader) *Overlay {
	return &Overlay{
		src:       src,
		clients:   state.NewTable[ledger.Client](),
		suppliers: state.NewTable[ledger.Supplier](),
		invoices:  state.NewTable[ledger.Invoice](),
		expenses:  state.NewTable[ledger.Expense](),
	}
}

// Source returns the state this overlay reads through to.
func (o *Overlay) Source() state.Reader { return o.src }

// Empty reports whether nothing has been written to the overlay.
func (o *Overlay) Empty() bool {
	return o.company == nil && o.clients.Len() == 0 && o.suppliers.Len() == 0 &&
		o.invoices.Len() == 0 && o.expenses.Len() == 0
}

func (o *Overlay) Company() ledger.Company {
	if o.company != nil {
		return *o.company
	}
	return o.src.Company()
}

// SetCompany shadows the source's company record.
func (o *Overlay) SetCompany(c ledger.Company) { o.company = &c }

func (o *Overlay) ListBanks() []ledger.Bank { return o.src.ListBanks() }

func (o *Overlay) ListTransactions(bankID uuid.UUID) []ledger.BankTransaction {
	return o.src.ListTransactions(bankID)
}

// Documents are produced by ingestion only, so there is nothing to overlay.
func (o *Overlay) ListDocuments() []ledger.Document { return o.src.ListDocuments() }

func (o *Overlay) ListClients() []ledger.Client {
	return state.Merge(o.src.ListClients(), o.clients)
}

func (o *Overlay) ListSuppliers() []ledger.Supplier {
	return state.Merge(o.src.ListSuppliers(), o.suppliers)
}

func (o *Overlay) ListInvoices() []ledger.Invoice {
	return state.Merge(o.src.ListInvoices(), o.invoices)
}

func (o *Overlay) ListExpenses() []ledger.Expense {
	out := state.Merge(o.src.ListExpenses(), o.expenses)
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

func (o *Overlay) StoreClient(c ledger.Client)     { o.clients.Put(c) }
func (o *Overlay) StoreSupplier(s ledger.Supplier) { o.suppliers.Put(s) }
func (o *Overlay) StoreInvoice(i ledger.Invoice)   { o.invoices.Put(i) }
func (o *Overlay) StoreExpense(e ledger.Expense)   { o.expenses.Put(e.Clone()) }

var _ state.State = (*Overlay)(nil)
