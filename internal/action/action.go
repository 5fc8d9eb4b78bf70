// Package action defines the closed set of mutations a session ledger accepts.
// Every variant is a plain value; Apply is the single place where an action
// touches state, and it runs all checks before the one write it performs.
package action

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/state"
)

// Kind names an action variant. It prefixes action ids ("invoice-3").
type Kind string

const (
	KindClient   Kind = "client"
	KindSupplier Kind = "supplier"
	KindInvoice  Kind = "invoice"
	KindExpense  Kind = "expense"
)

// Kinds lists every action kind.
var Kinds = []Kind{KindClient, KindSupplier, KindInvoice, KindExpense}

// Action is implemented only by the variants in this package.
type Action interface {
	Kind() Kind
	isAction()
}

// UpdateClient creates or replaces the client with ClientID.
type UpdateClient struct {
	ClientID uuid.UUID
	ledger.Contact
}

// UpdateSupplier creates or replaces the supplier with SupplierID.
type UpdateSupplier struct {
	SupplierID uuid.UUID
	ledger.Contact
}

// NewInvoice bills an existing client. InvoiceID and Created are filled by Prepare.
// A pinned InvoiceID must not name a stored invoice.
type NewInvoice struct {
	InvoiceID   uuid.UUID
	ClientID    uuid.UUID
	Amount      money.Amount
	DueDate     ledger.Date
	Description string
	Created     ledger.Date
}

// Expense reconciles bank transactions and documents against a supplier.
// ExpenseID is filled by Prepare.
type Expense struct {
	ExpenseID   uuid.UUID
	BankTxIDs   []uuid.UUID
	DocumentIDs []uuid.UUID
	SupplierID  uuid.UUID
	VAT         ledger.VATType
	Description string
}

func (UpdateClient) Kind() Kind   { return KindClient }
func (UpdateSupplier) Kind() Kind { return KindSupplier }
func (NewInvoice) Kind() Kind     { return KindInvoice }
func (Expense) Kind() Kind        { return KindExpense }

func (UpdateClient) isAction()   {}
func (UpdateSupplier) isAction() {}
func (NewInvoice) isAction()     {}
func (Expense) isAction()        {}

// Env supplies the clock and id source used when an action is first prepared.
type Env struct {
	Now   func() time.Time
	NewID func() uuid.UUID
}

// DefaultEnv uses the wall clock and random v4 ids.
func DefaultEnv() Env {
	return Env{Now: time.Now, NewID: uuid.New}
}

func (e Env) withDefaults() Env {
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.NewID == nil {
		e.NewID = uuid.New
	}
	return e
}

// Prepare pins every generated value of a: missing entity ids and the invoice
// creation date. Preparing an already prepared action returns it unchanged,
// so replaying a prepared action recreates the same entities.
func Prepare(a Action, env Env) Action {
	env = env.withDefaults()
	switch a := a.(type) {
	case UpdateClient:
		if a.ClientID == uuid.Nil {
			a.ClientID = env.NewID()
		}
		return a
	case UpdateSupplier:
		if a.SupplierID == uuid.Nil {
			a.SupplierID = env.NewID()
		}
		return a
	case NewInvoice:
		if a.InvoiceID == uuid.Nil {
			a.InvoiceID = env.NewID()
		}
		if a.Created.IsZero() {
			a.Created = ledger.DateOf(env.Now())
		}
		return a
	case Expense:
		if a.ExpenseID == uuid.Nil {
			a.ExpenseID = env.NewID()
		}
		a.BankTxIDs = cloneIDs(a.BankTxIDs)
		a.DocumentIDs = cloneIDs(a.DocumentIDs)
		return a
	default:
		return a
	}
}

// EntityID returns the id of the entity a stores once applied.
// It is uuid.Nil until a has been prepared.
func EntityID(a Action) uuid.UUID {
	switch a := a.(type) {
	case UpdateClient:
		return a.ClientID
	case UpdateSupplier:
		return a.SupplierID
	case NewInvoice:
		return a.InvoiceID
	case Expense:
		return a.ExpenseID
	default:
		return uuid.Nil
	}
}

// Apply validates a against st and, if every check passes, stores the entity
// it describes. A failed check leaves st untouched. a must have been prepared.
// Invoices and expenses are only ever created: a pinned id that st already
// holds is a conflict.
func Apply(a Action, st state.State) (uuid.UUID, error) {
	id := EntityID(a)
	if id == uuid.Nil {
		return uuid.Nil, errs.Invalid("action", string(kindOf(a)), "not prepared")
	}
	switch a := a.(type) {
	case UpdateClient:
		st.StoreClient(ledger.Client{ID: a.ClientID, Contact: a.Contact})
	case UpdateSupplier:
		st.StoreSupplier(ledger.Supplier{ID: a.SupplierID, Contact: a.Contact})
	case NewInvoice:
		if err := state.CheckInvoiceIDFree(st, a.InvoiceID); err != nil {
			return uuid.Nil, err
		}
		if err := state.CheckClientID(st, a.ClientID); err != nil {
			return uuid.Nil, err
		}
		st.StoreInvoice(ledger.Invoice{
			ID:          a.InvoiceID,
			ClientID:    a.ClientID,
			Amount:      a.Amount,
			Created:     a.Created,
			DueDate:     a.DueDate,
			Description: a.Description,
		})
	case Expense:
		if err := state.CheckExpenseIDFree(st, a.ExpenseID); err != nil {
			return uuid.Nil, err
		}
		if err := checkExpense(st, a); err != nil {
			return uuid.Nil, err
		}
		st.StoreExpense(ledger.Expense{
			ID:          a.ExpenseID,
			BankTxIDs:   cloneIDs(a.BankTxIDs),
			DocumentIDs: cloneIDs(a.DocumentIDs),
			SupplierID:  a.SupplierID,
			Description: a.Description,
			VAT:         a.VAT,
		})
	default:
		return uuid.Nil, fmt.Errorf("unsupported action %T", a)
	}
	return id, nil
}

// checkExpense runs the expense checks in their fixed order: transactions
// exist, documents exist, transactions unused, documents unused, supplier exists.
func checkExpense(st state.Reader, a Expense) error {
	if err := state.CheckTransactionIDs(st, a.BankTxIDs); err != nil {
		return err
	}
	if err := state.CheckDocumentIDs(st, a.DocumentIDs); err != nil {
		return err
	}
	if err := state.CheckTransactionsNotExpensed(st, a.BankTxIDs); err != nil {
		return err
	}
	if err := state.CheckDocumentsNotExpensed(st, a.DocumentIDs); err != nil {
		return err
	}
	return state.CheckSupplierID(st, a.SupplierID)
}

func kindOf(a Action) Kind {
	if a == nil {
		return ""
	}
	return a.Kind()
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}
