package state_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/state"
	"github.com/tinoosan/accta/internal/storage/memory"
	"github.com/tinoosan/accta/internal/storage/overlay"
)

type fixture struct {
	store  *memory.Store
	bank   ledger.Bank
	t1, t2 ledger.BankTransaction
	d1, d2 ledger.Document
	client ledger.Client
}

func newFixture() fixture {
	f := fixture{store: memory.New()}
	f.bank = ledger.Bank{ID: uuid.New(), Name: "Chase", Currency: "USD"}
	f.t1 = ledger.BankTransaction{ID: uuid.New(), Amount: money.MustParseAmount("USD", "100.00"), Date: ledger.NewDate(2025, 1, 1)}
	f.t2 = ledger.BankTransaction{ID: uuid.New(), Amount: money.MustParseAmount("USD", "-50.00"), Date: ledger.NewDate(2025, 1, 2)}
	f.store.SetBank(f.bank, []ledger.BankTransaction{f.t1, f.t2})
	f.d1 = ledger.Document{ID: uuid.New(), Name: "one.pdf"}
	f.d2 = ledger.Document{ID: uuid.New(), Name: "two.pdf"}
	f.store.StoreDocument(f.d1)
	f.store.StoreDocument(f.d2)
	f.client = ledger.Client{ID: uuid.New(), Contact: ledger.Contact{Name: "Acme", Country: "US"}}
	f.store.StoreClient(f.client)
	return f
}

func TestDerivedQueriesSeeOverlayExpenses(t *testing.T) {
	f := newFixture()
	o := overlay.New(f.store)
	require.Len(t, state.UnusedDocuments(o), 2)
	require.Len(t, state.UnreconciledTransactions(o, f.bank.ID), 2)

	o.StoreExpense(ledger.Expense{ID: uuid.New(), BankTxIDs: []uuid.UUID{f.t1.ID}, DocumentIDs: []uuid.UUID{f.d2.ID}})

	assert.Equal(t, []ledger.Document{f.d1}, state.UnusedDocuments(o))
	assert.Equal(t, []ledger.BankTransaction{f.t2}, state.UnreconciledTransactions(o, f.bank.ID))
	// the base store still sees everything unused
	assert.Len(t, state.UnusedDocuments(f.store), 2)
	assert.Empty(t, state.UnreconciledTransactions(o, uuid.New()))
}

func TestReferentialChecks(t *testing.T) {
	f := newFixture()
	missing := uuid.New()

	require.NoError(t, state.CheckTransactionIDs(f.store, []uuid.UUID{f.t1.ID, f.t2.ID}))
	require.NoError(t, state.CheckTransactionIDs(f.store, nil))
	err := state.CheckTransactionIDs(f.store, []uuid.UUID{f.t1.ID, missing})
	require.ErrorIs(t, err, errs.ErrReferential)
	var ref *errs.ReferentialError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "transaction", ref.Kind)
	assert.Equal(t, missing, ref.ID)

	require.NoError(t, state.CheckDocumentIDs(f.store, []uuid.UUID{f.d1.ID}))
	assert.ErrorIs(t, state.CheckDocumentIDs(f.store, []uuid.UUID{missing}), errs.ErrReferential)

	require.NoError(t, state.CheckClientID(f.store, f.client.ID))
	assert.ErrorIs(t, state.CheckClientID(f.store, missing), errs.ErrReferential)
	assert.ErrorIs(t, state.CheckSupplierID(f.store, missing), errs.ErrReferential)
}

func TestConflictChecks(t *testing.T) {
	f := newFixture()
	exp := ledger.Expense{ID: uuid.New(), BankTxIDs: []uuid.UUID{f.t1.ID}, DocumentIDs: []uuid.UUID{f.d1.ID}}
	f.store.StoreExpense(exp)

	require.NoError(t, state.CheckTransactionsNotExpensed(f.store, []uuid.UUID{f.t2.ID}))
	err := state.CheckTransactionsNotExpensed(f.store, []uuid.UUID{f.t2.ID, f.t1.ID})
	require.ErrorIs(t, err, errs.ErrConflict)
	var conflict *errs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, exp.ID, conflict.ExpenseID)
	assert.Equal(t, f.t1.ID, conflict.ID)

	require.NoError(t, state.CheckDocumentsNotExpensed(f.store, []uuid.UUID{f.d2.ID}))
	assert.ErrorIs(t, state.CheckDocumentsNotExpensed(f.store, []uuid.UUID{f.d1.ID}), errs.ErrConflict)
}

func TestMergeProperties(t *testing.T) {
	a := ledger.Client{ID: uuid.New(), Contact: ledger.Contact{Name: "a"}}
	b := ledger.Client{ID: uuid.New(), Contact: ledger.Contact{Name: "b"}}
	base := []ledger.Client{a, b}

	assert.Equal(t, base, state.Merge(base, state.NewTable[ledger.Client]()))
	assert.Equal(t, base, state.Merge(base, nil))

	over := state.NewTable[ledger.Client]()
	b2 := b
	b2.Name = "b2"
	c := ledger.Client{ID: uuid.New(), Contact: ledger.Contact{Name: "c"}}
	over.Put(c)
	over.Put(b2)

	merged := state.Merge(base, over)
	assert.Equal(t, []ledger.Client{a, b2, c}, merged)
	for _, v := range over.List() {
		found := 0
		for _, m := range merged {
			if m.ID == v.ID {
				found++
				assert.Equal(t, v, m)
			}
		}
		assert.Equal(t, 1, found)
	}
}

func TestMergeDeduplicatesSource(t *testing.T) {
	a := ledger.Client{ID: uuid.New(), Contact: ledger.Contact{Name: "a"}}
	a2 := a
	a2.Name = "a2"
	merged := state.Merge([]ledger.Client{a, a2}, nil)
	assert.Equal(t, []ledger.Client{a2}, merged)
}

func TestTable(t *testing.T) {
	tbl := state.NewTable[ledger.Document]()
	d := ledger.Document{ID: uuid.New(), Name: "x"}
	tbl.Put(d)
	got, ok := tbl.Get(d.ID)
	assert.True(t, ok)
	assert.Equal(t, d, got)
	_, ok = tbl.Get(uuid.New())
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Len())
}
