package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/accta/internal/action"
	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/events"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/storage/memory"
)

type fixture struct {
	base   *memory.Store
	bank   ledger.Bank
	t1, t2 ledger.BankTransaction
}

func newFixture() fixture {
	f := fixture{base: memory.New()}
	f.bank = ledger.Bank{ID: uuid.New(), Name: "Bank of America", Currency: "USD"}
	f.t1 = ledger.BankTransaction{ID: uuid.New(), Amount: money.MustParseAmount("USD", "100"), Date: ledger.NewDate(2025, 1, 10), Description: "deposit"}
	f.t2 = ledger.BankTransaction{ID: uuid.New(), Amount: money.MustParseAmount("USD", "-50"), Date: ledger.NewDate(2025, 1, 12), Description: "card"}
	f.base.SetBank(f.bank, []ledger.BankTransaction{f.t1, f.t2})
	return f
}

type recorder struct {
	events []events.Event
	err    error
}

func (r *recorder) Notify(ev events.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func mustClient(t *testing.T, name string) action.UpdateClient {
	t.Helper()
	a, err := action.Validator{}.UpdateClient(uuid.Nil, ledger.Contact{Name: name, Address: "addr", VATNumber: "VAT1", Email: "a@b.com", Phone: "555", Country: "US"})
	require.NoError(t, err)
	return a
}

func mustSupplier(t *testing.T, name string) action.UpdateSupplier {
	t.Helper()
	a, err := action.Validator{}.UpdateSupplier(uuid.Nil, ledger.Contact{Name: name, Country: "US"})
	require.NoError(t, err)
	return a
}

func mustInvoice(t *testing.T, clientID uuid.UUID, amount string) action.NewInvoice {
	t.Helper()
	a, err := action.Validator{}.NewInvoice(clientID, money.MustParseAmount("USD", amount), ledger.NewDate(2025, 2, 1), "")
	require.NoError(t, err)
	return a
}

func mustExpense(t *testing.T, supplierID uuid.UUID, txs ...uuid.UUID) action.Expense {
	t.Helper()
	a, err := action.Validator{}.Expense(txs, nil, supplierID, ledger.VATStandard, "")
	require.NoError(t, err)
	return a
}

type snapshot struct {
	Actions   []Entry
	Clients   []ledger.Client
	Suppliers []ledger.Supplier
	Invoices  []ledger.Invoice
	Expenses  []ledger.Expense
}

func snap(l *Ledger) snapshot {
	return snapshot{l.Actions(), l.ListClients(), l.ListSuppliers(), l.ListInvoices(), l.ListExpenses()}
}

func TestEndToEnd(t *testing.T) {
	f := newFixture()
	l := New(f.base)

	c1, err := l.Append(mustClient(t, "Acme"))
	require.NoError(t, err)
	assert.Equal(t, "client-1", c1.ActionID)
	assert.Equal(t, action.KindClient, c1.Kind)
	require.NotEqual(t, uuid.Nil, c1.EntityID)

	inv, err := l.Append(mustInvoice(t, c1.EntityID, "500"))
	require.NoError(t, err)
	assert.Equal(t, "invoice-2", inv.ActionID)
	invoices := l.ListInvoices()
	require.Len(t, invoices, 1)
	assert.Equal(t, inv.EntityID, invoices[0].ID)
	assert.Equal(t, c1.EntityID, invoices[0].ClientID)

	s1 := uuid.New()
	_, err = l.Append(mustExpense(t, s1, f.t1.ID))
	var ref *errs.ReferentialError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "supplier", ref.Kind)
	assert.Equal(t, s1, ref.ID)
	assert.Empty(t, l.ListExpenses())

	before := snap(l)
	err = l.Remove(c1.ActionID)
	var replay *ReplayError
	require.ErrorAs(t, err, &replay)
	assert.Equal(t, inv.ActionID, replay.ActionID)
	assert.Equal(t, action.KindInvoice, replay.Kind)
	assert.ErrorIs(t, err, errs.ErrReferential)
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "client", ref.Kind)

	assert.Equal(t, before, snap(l))
	require.Len(t, l.Actions(), 2)
	assert.Equal(t, []string{"client-1", "invoice-2"}, actionIDs(l))
}

func TestAppend_ConflictLeavesStateUnchanged(t *testing.T) {
	f := newFixture()
	l := New(f.base)
	sup, err := l.Append(mustSupplier(t, "Staples"))
	require.NoError(t, err)
	_, err = l.Append(mustExpense(t, sup.EntityID, f.t1.ID))
	require.NoError(t, err)

	before := l.ListExpenses()
	_, err = l.Append(mustExpense(t, sup.EntityID, f.t2.ID, f.t1.ID))
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, before, l.ListExpenses())
	assert.Equal(t, []ledger.BankTransaction{f.t2}, l.UnreconciledTransactions(f.bank.ID))
}

func TestAppend_ReusedEntityIDRejected(t *testing.T) {
	f := newFixture()
	l := New(f.base)
	sup, err := l.Append(mustSupplier(t, "Staples"))
	require.NoError(t, err)
	exp, err := l.Append(mustExpense(t, sup.EntityID, f.t1.ID))
	require.NoError(t, err)
	c, err := l.Append(mustClient(t, "Acme"))
	require.NoError(t, err)
	inv, err := l.Append(mustInvoice(t, c.EntityID, "10"))
	require.NoError(t, err)
	before := snap(l)

	args, err := json.Marshal(map[string]any{
		"expense_id": exp.EntityID, "bank_txs": []uuid.UUID{f.t2.ID},
		"supplier_id": sup.EntityID, "vat_type": "VAT",
	})
	require.NoError(t, err)
	reuse, err := action.Decode(action.Envelope{Kind: action.KindExpense, Args: args})
	require.NoError(t, err)
	_, err = l.Append(reuse)
	var exists *errs.ExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, exp.EntityID, exists.ID)

	args, err = json.Marshal(map[string]any{
		"invoice_id": inv.EntityID, "client_id": c.EntityID, "amount": "999", "currency": "USD", "due_date": "2025-03-01",
	})
	require.NoError(t, err)
	reuse, err = action.Decode(action.Envelope{Kind: action.KindInvoice, Args: args})
	require.NoError(t, err)
	_, err = l.Append(reuse)
	require.ErrorIs(t, err, errs.ErrConflict)

	assert.Equal(t, before, snap(l))
	assert.Equal(t, []ledger.BankTransaction{f.t2}, l.UnreconciledTransactions(f.bank.ID))

	// Replay of the pinned ids still succeeds on a fresh overlay.
	other, err := l.Append(mustSupplier(t, "Office Depot"))
	require.NoError(t, err)
	require.NoError(t, l.Remove(other.ActionID))
	require.Len(t, l.ListExpenses(), 1)
	assert.Equal(t, exp.EntityID, l.ListExpenses()[0].ID)
	assert.Equal(t, []uuid.UUID{f.t1.ID}, l.ListExpenses()[0].BankTxIDs)
}

func TestAppend_CounterNotRolledBack(t *testing.T) {
	l := New(newFixture().base)
	_, err := l.Append(mustInvoice(t, uuid.New(), "10"))
	require.ErrorIs(t, err, errs.ErrReferential)
	assert.Zero(t, l.Len())

	res, err := l.Append(mustClient(t, "Tech Corp"))
	require.NoError(t, err)
	assert.Equal(t, "client-2", res.ActionID)

	_, err = l.Append(nil)
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestAppend_SeesEarlierActions(t *testing.T) {
	l := New(newFixture().base)
	c, err := l.Append(mustClient(t, "BigCorp"))
	require.NoError(t, err)
	_, err = l.Append(mustInvoice(t, c.EntityID, "42.50"))
	require.NoError(t, err)
	require.Len(t, l.ListInvoices(), 1)
}

func TestRemove(t *testing.T) {
	f := newFixture()
	l := New(f.base)
	sup, err := l.Append(mustSupplier(t, "Marriott"))
	require.NoError(t, err)
	exp1, err := l.Append(mustExpense(t, sup.EntityID, f.t1.ID))
	require.NoError(t, err)
	c, err := l.Append(mustClient(t, "Acme"))
	require.NoError(t, err)
	inv, err := l.Append(mustInvoice(t, c.EntityID, "99"))
	require.NoError(t, err)

	t.Run("unknown id", func(t *testing.T) {
		err := l.Remove("expense-99")
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Len(t, l.Actions(), 4)
	})

	t.Run("middle action keeps later entity ids", func(t *testing.T) {
		require.NoError(t, l.Remove(exp1.ActionID))
		assert.Equal(t, []string{"supplier-1", "client-3", "invoice-4"}, actionIDs(l))
		assert.Empty(t, l.ListExpenses())
		require.Len(t, l.ListInvoices(), 1)
		assert.Equal(t, inv.EntityID, l.ListInvoices()[0].ID)
		assert.Equal(t, c.EntityID, l.ListClients()[0].ID)
		assert.Len(t, l.UnreconciledTransactions(f.bank.ID), 2)
	})

	t.Run("ids are not reused", func(t *testing.T) {
		res, err := l.Append(mustExpense(t, sup.EntityID, f.t1.ID))
		require.NoError(t, err)
		assert.Equal(t, "expense-5", res.ActionID)
	})

	t.Run("dependent removal fails", func(t *testing.T) {
		before := snap(l)
		err := l.Remove(sup.ActionID)
		var replay *ReplayError
		require.ErrorAs(t, err, &replay)
		assert.Equal(t, "expense-5", replay.ActionID)
		assert.Equal(t, before, snap(l))
	})
}

func TestRemove_UnblocksConflict(t *testing.T) {
	f := newFixture()
	l := New(f.base)
	sup, err := l.Append(mustSupplier(t, "United Airlines"))
	require.NoError(t, err)
	first, err := l.Append(mustExpense(t, sup.EntityID, f.t1.ID))
	require.NoError(t, err)
	_, err = l.Append(mustExpense(t, sup.EntityID, f.t1.ID))
	require.ErrorIs(t, err, errs.ErrConflict)

	require.NoError(t, l.Remove(first.ActionID))
	_, err = l.Append(mustExpense(t, sup.EntityID, f.t1.ID))
	require.NoError(t, err)
}

func TestClear(t *testing.T) {
	f := newFixture()
	f.base.StoreClient(ledger.Client{ID: uuid.New(), Contact: ledger.Contact{Name: "Base client", Country: "US"}})
	l := New(f.base)
	for _, name := range []string{"a", "b", "c"} {
		_, err := l.Append(mustClient(t, name))
		require.NoError(t, err)
	}
	require.Len(t, l.ListClients(), 4)

	l.Clear()
	assert.Empty(t, l.Actions())
	assert.Equal(t, f.base.ListClients(), l.ListClients())
	assert.Equal(t, f.base.ListInvoices(), l.ListInvoices())
	assert.Equal(t, f.base.ListExpenses(), l.ListExpenses())
	assert.Equal(t, f.base.Company(), l.Company())

	res, err := l.Append(mustClient(t, "d"))
	require.NoError(t, err)
	assert.Equal(t, "client-1", res.ActionID)
}

func TestQueriesPassThrough(t *testing.T) {
	f := newFixture()
	doc := ledger.Document{ID: uuid.New(), Name: "invoice.pdf"}
	f.base.StoreDocument(doc)
	l := New(f.base)

	assert.Equal(t, f.base.ListBanks(), l.ListBanks())
	assert.Equal(t, f.base.ListTransactions(f.bank.ID), l.ListTransactions(f.bank.ID))
	assert.Empty(t, l.ListTransactions(uuid.New()))
	assert.Equal(t, []ledger.Document{doc}, l.UnusedDocuments())

	sup, err := l.Append(mustSupplier(t, "Staples"))
	require.NoError(t, err)
	exp, err := action.Validator{}.Expense([]uuid.UUID{f.t2.ID}, []uuid.UUID{doc.ID}, sup.EntityID, ledger.VATExempt, "paper")
	require.NoError(t, err)
	_, err = l.Append(exp)
	require.NoError(t, err)
	assert.Empty(t, l.UnusedDocuments())
	assert.Equal(t, []ledger.Document{doc}, l.ListDocuments())
	assert.Empty(t, f.base.ListSuppliers())
}

func TestNotifications(t *testing.T) {
	rec := &recorder{}
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	l := New(newFixture().base,
		WithID("s1"),
		WithNotifier(rec),
		WithEnv(action.Env{Now: func() time.Time { return now }}),
	)
	c, err := l.Append(mustClient(t, "Acme"))
	require.NoError(t, err)
	_, err = l.Append(mustInvoice(t, uuid.New(), "1"))
	require.Error(t, err)
	require.NoError(t, l.Remove(c.ActionID))
	l.Clear()

	require.Len(t, rec.events, 3)
	created := rec.events[0]
	assert.Equal(t, events.Created, created.Type)
	assert.Equal(t, "s1", created.SessionID)
	assert.Equal(t, "client-1", created.ActionID)
	assert.Equal(t, "client", created.ActionKind)
	assert.Equal(t, now, created.Time)
	var args map[string]any
	require.NoError(t, json.Unmarshal(created.Args, &args))
	assert.Equal(t, "Acme", args["name"])
	assert.Equal(t, c.EntityID.String(), args["client_id"])

	assert.Equal(t, events.Removed, rec.events[1].Type)
	assert.Equal(t, "client-1", rec.events[1].ActionID)
	assert.Equal(t, events.Cleared, rec.events[2].Type)
	assert.Empty(t, rec.events[2].ActionID)
}

func TestNotifierFailureDoesNotAffectLedger(t *testing.T) {
	rec := &recorder{err: errors.New("sink down")}
	l := New(newFixture().base, WithNotifier(rec))
	res, err := l.Append(mustClient(t, "Acme"))
	require.NoError(t, err)
	require.Len(t, l.ListClients(), 1)
	require.NoError(t, l.Remove(res.ActionID))
	assert.Empty(t, l.ListClients())
	assert.Len(t, rec.events, 2)
}

func TestNotifierPanicIsContained(t *testing.T) {
	l := New(newFixture().base, WithNotifier(panicky{}))
	_, err := l.Append(mustClient(t, "Acme"))
	require.NoError(t, err)
	assert.Len(t, l.Actions(), 1)
}

type panicky struct{}

func (panicky) Notify(events.Event) error { panic("boom") }

func TestEventsBrokerAsNotifier(t *testing.T) {
	b := events.NewBroker(8, nil)
	sub := b.Subscribe("s1")
	l := New(newFixture().base, WithID("s1"), WithNotifier(b))
	_, err := l.Append(mustClient(t, "Acme"))
	require.NoError(t, err)
	ev := <-sub.C
	assert.Equal(t, "client-1", ev.ActionID)
}

func actionIDs(l *Ledger) []string {
	out := []string{}
	for _, e := range l.Actions() {
		out = append(out, e.ID)
	}
	return out
}
