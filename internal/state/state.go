// Package state defines the capability every ledger data provider implements,
// plus the queries and validation checks derived from it.
package state

import (
	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/ledger"
)

// Reader lists entities. Lists are returned in a stable order and callers may
// not mutate what they receive.
type Reader interface {
	Company() ledger.Company
	ListBanks() []ledger.Bank
	ListClients() []ledger.Client
	ListSuppliers() []ledger.Supplier
	ListInvoices() []ledger.Invoice
	ListDocuments() []ledger.Document
	ListExpenses() []ledger.Expense
	// ListTransactions returns the bank's transactions; an unknown bank yields an empty list.
	ListTransactions(bankID uuid.UUID) []ledger.BankTransaction
}

// Writer inserts or replaces entities by identifier.
type Writer interface {
	StoreClient(c ledger.Client)
	StoreSupplier(s ledger.Supplier)
	StoreInvoice(i ledger.Invoice)
	StoreExpense(e ledger.Expense)
}

// State is the full capability actions apply against.
type State interface {
	Reader
	Writer
}
