// Package postgres is the durable side of seeding: it reads a committed ledger
// snapshot into the in-memory base store at startup and can write a fixture
// back as the committed snapshot. Sessions never talk to Postgres.
//
// The schema lives under db/migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/seed"
	"github.com/tinoosan/accta/internal/storage/memory"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Empty reports whether no snapshot has been written yet.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `select exists (select 1 from company)`).Scan(&exists); err != nil {
		return false, err
	}
	return !exists, nil
}

// Load reads the committed snapshot into target.
func (s *Store) Load(ctx context.Context, target seed.Target) error {
	f, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := seed.Apply(target, f, nil); err != nil {
		return fmt.Errorf("applying postgres snapshot: %w", err)
	}
	return nil
}

// Snapshot reads every table inside one read-only repeatable-read transaction.
func (s *Store) Snapshot(ctx context.Context) (*seed.Fixture, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	f := &seed.Fixture{}
	company, err := readCompany(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("reading company: %w", err)
	}
	f.Company = company
	if f.Banks, err = readBanks(ctx, tx); err != nil {
		return nil, fmt.Errorf("reading banks: %w", err)
	}
	if f.Clients, err = readParties(ctx, tx, "clients"); err != nil {
		return nil, fmt.Errorf("reading clients: %w", err)
	}
	if f.Suppliers, err = readParties(ctx, tx, "suppliers"); err != nil {
		return nil, fmt.Errorf("reading suppliers: %w", err)
	}
	if f.Documents, err = readDocuments(ctx, tx); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	if f.Invoices, err = readInvoices(ctx, tx); err != nil {
		return nil, fmt.Errorf("reading invoices: %w", err)
	}
	if f.Expenses, err = readExpenses(ctx, tx); err != nil {
		return nil, fmt.Errorf("reading expenses: %w", err)
	}
	return f, tx.Commit(ctx)
}

// Replace validates f and makes it the committed snapshot, discarding the
// previous one. Missing ids are generated.
func (s *Store) Replace(ctx context.Context, f *seed.Fixture) error {
	mem := memory.New()
	if err := seed.Apply(mem, f, nil); err != nil {
		return err
	}
	snap := seed.FromState(mem)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `truncate table expense_documents, expense_transactions, expenses, invoices, documents, suppliers, clients, bank_transactions, banks, company restart identity`); err != nil {
		return err
	}

	b := &pgx.Batch{}
	if c := snap.Company; c != nil {
		b.Queue(`insert into company (id, name, address, vat_number, email, phone, country) values ($1,$2,$3,$4,$5,$6,$7)`,
			c.ID, c.Name, c.Address, c.VATNumber, c.Email, c.Phone, c.Country)
	}
	for _, bank := range snap.Banks {
		b.Queue(`insert into banks (id, name, currency, iban) values ($1,$2,$3,$4)`, bank.ID, bank.Name, bank.Currency, bank.IBAN)
		for _, t := range bank.Transactions {
			b.Queue(`insert into bank_transactions (id, bank_id, amount, date, description) values ($1,$2,$3,$4,$5)`,
				t.ID, bank.ID, t.Amount, dateArg(t.Date), t.Description)
		}
	}
	queueParties(b, "clients", snap.Clients)
	queueParties(b, "suppliers", snap.Suppliers)
	for _, d := range snap.Documents {
		b.Queue(`insert into documents (id, name, description, content) values ($1,$2,$3,$4)`, d.ID, d.Name, d.Description, d.Content)
	}
	for _, inv := range snap.Invoices {
		b.Queue(`insert into invoices (id, client_id, amount, currency, created, due_date, description) values ($1,$2,$3,$4,$5,$6,$7)`,
			inv.ID, inv.ClientID, inv.Amount, inv.Currency, dateArg(inv.Created), dateArg(inv.DueDate), inv.Description)
	}
	for _, e := range snap.Expenses {
		b.Queue(`insert into expenses (id, supplier_id, vat_type, description) values ($1,$2,$3,$4)`, e.ID, e.SupplierID, string(e.VAT), e.Description)
		for i, id := range e.BankTxIDs {
			b.Queue(`insert into expense_transactions (expense_id, bank_tx_id, position) values ($1,$2,$3)`, e.ID, id, i)
		}
		for i, id := range e.DocumentIDs {
			b.Queue(`insert into expense_documents (expense_id, document_id, position) values ($1,$2,$3)`, e.ID, id, i)
		}
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return tx.Commit(ctx)
}

// SeedDemo writes the demo business as the committed snapshot when none exists.
// It reports whether it wrote anything.
func (s *Store) SeedDemo(ctx context.Context, today ledger.Date) (bool, error) {
	empty, err := s.Empty(ctx)
	if err != nil || !empty {
		return false, err
	}
	if err := s.Replace(ctx, seed.Demo(today)); err != nil {
		return false, err
	}
	return true, nil
}

func queueParties(b *pgx.Batch, table string, parties []seed.Party) {
	q := `insert into ` + table + ` (id, name, address, vat_number, email, phone, country) values ($1,$2,$3,$4,$5,$6,$7)`
	for _, p := range parties {
		b.Queue(q, p.ID, p.Name, p.Address, p.VATNumber, p.Email, p.Phone, p.Country)
	}
}

func readCompany(ctx context.Context, tx pgx.Tx) (*seed.Party, error) {
	var p seed.Party
	err := tx.QueryRow(ctx, `select id, name, address, vat_number, email, phone, trim(country) from company limit 1`).
		Scan(&p.ID, &p.Name, &p.Address, &p.VATNumber, &p.Email, &p.Phone, &p.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func readParties(ctx context.Context, tx pgx.Tx, table string) ([]seed.Party, error) {
	rows, err := tx.Query(ctx, `select id, name, address, vat_number, email, phone, trim(country) from `+table+` order by seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]seed.Party, 0)
	for rows.Next() {
		var p seed.Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.VATNumber, &p.Email, &p.Phone, &p.Country); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func readBanks(ctx context.Context, tx pgx.Tx) ([]seed.Bank, error) {
	rows, err := tx.Query(ctx, `select id, name, currency, iban from banks order by seq`)
	if err != nil {
		return nil, err
	}
	banks := make([]seed.Bank, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var b seed.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.Currency, &b.IBAN); err != nil {
			rows.Close()
			return nil, err
		}
		index[b.ID] = len(banks)
		banks = append(banks, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `select id, bank_id, amount::text, date, description from bank_transactions order by seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t      seed.Transaction
			bankID uuid.UUID
			date   time.Time
		)
		if err := rows.Scan(&t.ID, &bankID, &t.Amount, &date, &t.Description); err != nil {
			return nil, err
		}
		t.Date = ledger.DateOf(date)
		i, ok := index[bankID]
		if !ok {
			return nil, fmt.Errorf("transaction %s references unknown bank %s", t.ID, bankID)
		}
		banks[i].Transactions = append(banks[i].Transactions, t)
	}
	return banks, rows.Err()
}

func readDocuments(ctx context.Context, tx pgx.Tx) ([]seed.Document, error) {
	rows, err := tx.Query(ctx, `select id, name, description, content from documents order by seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]seed.Document, 0)
	for rows.Next() {
		var d seed.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Content); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func readInvoices(ctx context.Context, tx pgx.Tx) ([]seed.Invoice, error) {
	rows, err := tx.Query(ctx, `select id, client_id, amount::text, trim(currency), created, due_date, description from invoices order by seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]seed.Invoice, 0)
	for rows.Next() {
		var (
			inv          seed.Invoice
			created, due *time.Time
		)
		if err := rows.Scan(&inv.ID, &inv.ClientID, &inv.Amount, &inv.Currency, &created, &due, &inv.Description); err != nil {
			return nil, err
		}
		inv.Created = dateOf(created)
		inv.DueDate = dateOf(due)
		out = append(out, inv)
	}
	return out, rows.Err()
}

func readExpenses(ctx context.Context, tx pgx.Tx) ([]seed.Expense, error) {
	rows, err := tx.Query(ctx, `select id, supplier_id, vat_type, description from expenses order by seq`)
	if err != nil {
		return nil, err
	}
	out := make([]seed.Expense, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			e   seed.Expense
			vat string
		)
		if err := rows.Scan(&e.ID, &e.SupplierID, &vat, &e.Description); err != nil {
			rows.Close()
			return nil, err
		}
		e.VAT = ledger.VATType(vat)
		e.BankTxIDs = []uuid.UUID{}
		e.DocumentIDs = []uuid.UUID{}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	txLinks, err := readLinks(ctx, tx, `select expense_id, bank_tx_id from expense_transactions order by expense_id, position`)
	if err != nil {
		return nil, err
	}
	docLinks, err := readLinks(ctx, tx, `select expense_id, document_id from expense_documents order by expense_id, position`)
	if err != nil {
		return nil, err
	}
	for _, l := range txLinks {
		i, ok := index[l.expenseID]
		if !ok {
			return nil, fmt.Errorf("link references unknown expense %s", l.expenseID)
		}
		out[i].BankTxIDs = append(out[i].BankTxIDs, l.refID)
	}
	for _, l := range docLinks {
		i, ok := index[l.expenseID]
		if !ok {
			return nil, fmt.Errorf("link references unknown expense %s", l.expenseID)
		}
		out[i].DocumentIDs = append(out[i].DocumentIDs, l.refID)
	}
	return out, nil
}

type link struct {
	expenseID uuid.UUID
	refID     uuid.UUID
}

func readLinks(ctx context.Context, tx pgx.Tx, q string) ([]link, error) {
	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (link, error) {
		var l link
		err := row.Scan(&l.expenseID, &l.refID)
		return l, err
	})
}

func dateArg(d ledger.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

func dateOf(t *time.Time) ledger.Date {
	if t == nil {
		return ledger.Date{}
	}
	return ledger.DateOf(*t)
}
