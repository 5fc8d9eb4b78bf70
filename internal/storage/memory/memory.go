// Package memory provides the in-memory base store holding committed ledger data.
// It is seeded once at startup and then shared, read-only, by every session.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/state"
)

// Store is the identifier-keyed base store. It is guarded by an RWMutex so
// seeding and concurrent session reads never race.
type Store struct {
	mu        sync.RWMutex
	company   ledger.Company
	banks     *state.Table[ledger.Bank]
	txsByBank map[uuid.UUID][]ledger.BankTransaction
	clients   *state.Table[ledger.Client]
	suppliers *state.Table[ledger.Supplier]
	documents *state.Table[ledger.Document]
	invoices  *state.Table[ledger.Invoice]
	expenses  *state.Table[ledger.Expense]
}

// New constructs an empty store with a blank company record.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.company = ledger.Company{ID: uuid.New(), Contact: ledger.Contact{Country: "US"}}
	s.banks = state.NewTable[ledger.Bank]()
	s.txsByBank = make(map[uuid.UUID][]ledger.BankTransaction)
	s.clients = state.NewTable[ledger.Client]()
	s.suppliers = state.NewTable[ledger.Supplier]()
	s.documents = state.NewTable[ledger.Document]()
	s.invoices = state.NewTable[ledger.Invoice]()
	s.expenses = state.NewTable[ledger.Expense]()
}

// Reset drops every entity. Only seeding code and tests call it.
func (s *Store) Reset() { s.mu.Lock(); s.reset(); s.mu.Unlock() }

// Seed helpers for the initializers in package seed.
func (s *Store) SetCompany(c ledger.Company) { s.mu.Lock(); s.company = c; s.mu.Unlock() }
func (s *Store) StoreDocument(d ledger.Document) { s.mu.Lock(); s.documents.Put(d); s.mu.Unlock() }

// SetBank registers a bank together with its full transaction history.
func (s *Store) SetBank(b ledger.Bank, txs []ledger.BankTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banks.Put(b)
	cp := make([]ledger.BankTransaction, len(txs))
	copy(cp, txs)
	s.txsByBank[b.ID] = cp
}

func (s *Store) Company() ledger.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.company
}

func (s *Store) ListBanks() []ledger.Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banks.List()
}

// ListTransactions returns an empty list for an unknown bank.
func (s *Store) ListTransactions(bankID uuid.UUID) []ledger.BankTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := s.txsByBank[bankID]
	out := make([]ledger.BankTransaction, len(txs))
	copy(out, txs)
	return out
}

func (s *Store) ListClients() []ledger.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients.List()
}

func (s *Store) ListSuppliers() []ledger.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suppliers.List()
}

func (s *Store) ListDocuments() []ledger.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents.List()
}

func (s *Store) ListInvoices() []ledger.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoices.List()
}

// ListExpenses returns deep copies so callers cannot alias stored id slices.
func (s *Store) ListExpenses() []ledger.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.expenses.List()
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

func (s *Store) StoreClient(c ledger.Client) { s.mu.Lock(); s.clients.Put(c); s.mu.Unlock() }
func (s *Store) StoreSupplier(sp ledger.Supplier) { s.mu.Lock(); s.suppliers.Put(sp); s.mu.Unlock() }
func (s *Store) StoreInvoice(i ledger.Invoice) { s.mu.Lock(); s.invoices.Put(i); s.mu.Unlock() }
func (s *Store) StoreExpense(e ledger.Expense) { s.mu.Lock(); s.expenses.Put(e.Clone()); s.mu.Unlock() }

// Counts summarizes how many entities of each kind the store holds.
type Counts struct {
	Banks        int
	Transactions int
	Clients      int
	Suppliers    int
	Documents    int
	Invoices     int
	Expenses     int
}

func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{
		Banks:     s.banks.Len(),
		Clients:   s.clients.Len(),
		Suppliers: s.suppliers.Len(),
		Documents: s.documents.Len(),
		Invoices:  s.invoices.Len(),
		Expenses:  s.expenses.Len(),
	}
	for _, txs := range s.txsByBank {
		c.Transactions += len(txs)
	}
	return c
}
