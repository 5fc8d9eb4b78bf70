package state

import (
	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
)

// These derived queries rebuild their lookup sets on every call. Sessions are
// small and interactive, so no index is maintained.

// expensedTransactions maps every bank transaction id referenced by an expense to that expense.
func expensedTransactions(r Reader) map[uuid.UUID]uuid.UUID {
	used := make(map[uuid.UUID]uuid.UUID)
	for _, e := range r.ListExpenses() {
		for _, id := range e.BankTxIDs {
			used[id] = e.ID
		}
	}
	return used
}

// expensedDocuments maps every document id referenced by an expense to that expense.
func expensedDocuments(r Reader) map[uuid.UUID]uuid.UUID {
	used := make(map[uuid.UUID]uuid.UUID)
	for _, e := range r.ListExpenses() {
		for _, id := range e.DocumentIDs {
			used[id] = e.ID
		}
	}
	return used
}

// UnusedDocuments returns the documents no expense references.
func UnusedDocuments(r Reader) []ledger.Document {
	used := expensedDocuments(r)
	out := make([]ledger.Document, 0)
	for _, d := range r.ListDocuments() {
		if _, ok := used[d.ID]; !ok {
			out = append(out, d)
		}
	}
	return out
}

// UnreconciledTransactions returns the bank's transactions no expense references.
func UnreconciledTransactions(r Reader, bankID uuid.UUID) []ledger.BankTransaction {
	used := expensedTransactions(r)
	out := make([]ledger.BankTransaction, 0)
	for _, tx := range r.ListTransactions(bankID) {
		if _, ok := used[tx.ID]; !ok {
			out = append(out, tx)
		}
	}
	return out
}

// CheckTransactionIDs fails on the first id not found in any bank's transactions.
func CheckTransactionIDs(r Reader, ids []uuid.UUID) error {
	known := make(map[uuid.UUID]struct{})
	for _, b := range r.ListBanks() {
		for _, tx := range r.ListTransactions(b.ID) {
			known[tx.ID] = struct{}{}
		}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return &errs.ReferentialError{Kind: "transaction", ID: id}
		}
	}
	return nil
}

// CheckDocumentIDs fails on the first id that is not a known document.
func CheckDocumentIDs(r Reader, ids []uuid.UUID) error {
	known := make(map[uuid.UUID]struct{})
	for _, d := range r.ListDocuments() {
		known[d.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return &errs.ReferentialError{Kind: "document", ID: id}
		}
	}
	return nil
}

// CheckTransactionsNotExpensed fails on the first id already referenced by an expense.
func CheckTransactionsNotExpensed(r Reader, ids []uuid.UUID) error {
	used := expensedTransactions(r)
	for _, id := range ids {
		if exp, ok := used[id]; ok {
			return &errs.ConflictError{Kind: "transaction", ID: id, ExpenseID: exp}
		}
	}
	return nil
}

// CheckDocumentsNotExpensed fails on the first id already referenced by an expense.
func CheckDocumentsNotExpensed(r Reader, ids []uuid.UUID) error {
	used := expensedDocuments(r)
	for _, id := range ids {
		if exp, ok := used[id]; ok {
			return &errs.ConflictError{Kind: "document", ID: id, ExpenseID: exp}
		}
	}
	return nil
}

func CheckClientID(r Reader, id uuid.UUID) error {
	for _, c := range r.ListClients() {
		if c.ID == id {
			return nil
		}
	}
	return &errs.ReferentialError{Kind: "client", ID: id}
}

func CheckSupplierID(r Reader, id uuid.UUID) error {
	for _, s := range r.ListSuppliers() {
		if s.ID == id {
			return nil
		}
	}
	return &errs.ReferentialError{Kind: "supplier", ID: id}
}

// CheckInvoiceIDFree fails when an invoice with id is already stored.
func CheckInvoiceIDFree(r Reader, id uuid.UUID) error {
	for _, inv := range r.ListInvoices() {
		if inv.ID == id {
			return &errs.ExistsError{Kind: "invoice", ID: id}
		}
	}
	return nil
}

// CheckExpenseIDFree fails when an expense with id is already stored.
func CheckExpenseIDFree(r Reader, id uuid.UUID) error {
	for _, e := range r.ListExpenses() {
		if e.ID == id {
			return &errs.ExistsError{Kind: "expense", ID: id}
		}
	}
	return nil
}
