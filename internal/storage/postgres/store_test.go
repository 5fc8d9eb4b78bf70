package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/seed"
	"github.com/tinoosan/accta/internal/state"
	"github.com/tinoosan/accta/internal/storage/memory"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	require.NoError(t, err, "open")
	return s
}

func applyInitSQL(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Resolve init SQL path relative to this test file so CWD doesn't matter
	_, thisFile, _, _ := runtime.Caller(0)
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "../../../"))
	b, err := os.ReadFile(filepath.Join(repoRoot, "db", "migrations", "0001_init.sql"))
	require.NoError(t, err, "read init sql")
	_, err = s.pool.Exec(ctx, string(b))
	require.NoError(t, err, "apply init sql")
}

func truncateAll(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.pool.Exec(ctx, `truncate table expense_documents, expense_transactions, expenses, invoices, documents, suppliers, clients, bank_transactions, banks, company restart identity`)
	require.NoError(t, err)
}

func setup(t *testing.T) *Store {
	t.Helper()
	s := mustOpen(t, getTestDSN(t))
	t.Cleanup(s.Close)
	applyInitSQL(t, s)
	truncateAll(t, s)
	return s
}

func TestStore_ReplaceAndLoad(t *testing.T) {
	s := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, s.Ready(ctx))
	empty, err := s.Empty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	want := memory.New()
	demo := seed.Demo(ledger.NewDate(2025, 6, 1))
	require.NoError(t, seed.Apply(want, demo, nil))
	require.NoError(t, s.Replace(ctx, demo))

	got := memory.New()
	require.NoError(t, s.Load(ctx, got))
	assert.Equal(t, want.Company(), got.Company())
	assert.Equal(t, want.ListBanks(), got.ListBanks())
	for _, b := range want.ListBanks() {
		assert.Equal(t, want.ListTransactions(b.ID), got.ListTransactions(b.ID))
	}
	assert.Equal(t, want.ListClients(), got.ListClients())
	assert.Equal(t, want.ListSuppliers(), got.ListSuppliers())
	assert.Equal(t, want.ListDocuments(), got.ListDocuments())
	assert.Equal(t, want.ListInvoices(), got.ListInvoices())
	assert.Equal(t, want.ListExpenses(), got.ListExpenses())
	assert.Len(t, state.UnusedDocuments(got), got.Counts().Documents-2)
}

func TestStore_SeedDemoOnlyWhenEmpty(t *testing.T) {
	s := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrote, err := s.SeedDemo(ctx, ledger.NewDate(2025, 6, 1))
	require.NoError(t, err)
	assert.True(t, wrote)
	first, err := s.Snapshot(ctx)
	require.NoError(t, err)

	wrote, err = s.SeedDemo(ctx, ledger.NewDate(2025, 7, 1))
	require.NoError(t, err)
	assert.False(t, wrote)
	second, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Company.ID, second.Company.ID)
}

func TestStore_ReplaceRejectsInvalidFixture(t *testing.T) {
	s := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, s.Replace(ctx, &seed.Fixture{Company: &seed.Party{ID: uuid.New(), Name: "Keep", Country: "GB"}}))

	bad := &seed.Fixture{Invoices: []seed.Invoice{{ClientID: uuid.New(), Amount: "10", Currency: "USD"}}}
	err := s.Replace(ctx, bad)
	assert.ErrorIs(t, err, errs.ErrReferential)

	f, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, f.Company)
	assert.Equal(t, "Keep", f.Company.Name)
	assert.Equal(t, "GB", f.Company.Country)
}
