package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/logger"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
	"github.com/MrJamesThe3rd/balancea/internal/transaction/store"
)

func newTx(desc string, amount string, typ transaction.Type) *transaction.Transaction {
	return &transaction.Transaction{
		Date:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    "Food",
	}
}

func TestFileStore_MissingFileCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")

	_, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,date,description,amount,kind,category\n", string(data))
}

func TestFileStore_CRUDPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transactions.csv")

	s, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	a := newTx("Lunch", "12.34", transaction.TypeExpense)
	b := newTx("Salary", "1000", transaction.TypeIncome)
	require.NoError(t, s.CreateTransaction(ctx, a))
	require.NoError(t, s.CreateTransaction(ctx, b))
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, uuid.Version(7), a.ID.Version())

	a.Description = "Team lunch"
	require.NoError(t, s.UpdateTransaction(ctx, a))
	require.NoError(t, s.DeleteTransaction(ctx, b.ID))

	reloaded, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	got, err := reloaded.ListTransactions(ctx, transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, "Team lunch", got[0].Description)
	assert.Equal(t, "12.34", got[0].Amount.StringFixed(2))

	_, err = reloaded.GetTransaction(ctx, b.ID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
	assert.ErrorIs(t, reloaded.DeleteTransaction(ctx, b.ID), transaction.ErrNotFound)
}

func TestFileStore_RoundTripPreservesCents(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transactions.csv")

	s, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	amounts := []string{"0.01", "19.99", "999999999.00", "250.10"}
	for i, a := range amounts {
		require.NoError(t, s.CreateTransaction(ctx, newTx("Item "+string(rune('A'+i)), a, transaction.TypeExpense)))
	}

	reloaded, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	got, err := reloaded.ListTransactions(ctx, transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, len(amounts))

	for i, a := range amounts {
		assert.True(t, decimal.RequireFromString(a).Equal(got[i].Amount))
	}
}

func TestFileStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()

	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "t.csv"), logger.Nop())
	require.NoError(t, err)

	tx := newTx("Coffee", "2", transaction.TypeExpense)
	require.NoError(t, s.CreateTransaction(ctx, tx))

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)

	got.Description = "mutated"

	again, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", again.Description)
}

func TestFileStore_LegacyAndMalformedRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transactions.csv")

	legacy := "id,fecha,descripcion,monto,tipo,categoria\n" +
		"1,2023-11-05,Sueldo,1000.0,Ingreso,Salario\n" +
		"2,not-a-date,Roto,1,Gasto,Comida\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	got, err := s.ListTransactions(ctx, transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, uuid.Nil, got[0].ID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,date,description,amount,kind,category\n"))
	assert.Contains(t, string(data), got[0].ID.String())
}

func TestFileStore_UnreadableFileLeftUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0o644))

	s, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	got, err := s.ListTransactions(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "garbage\n", string(data))
}

func TestFileStore_UnreadableFileCopiedAside(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	original := "fecha;importe\n2024-01-01;12\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	s, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.CreateTransaction(ctx, newTx("Lunch", "12.34", transaction.TypeExpense)))

	aside, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, original, string(aside))

	reloaded, err := store.NewFileStore(path, logger.Nop())
	require.NoError(t, err)

	got, err := reloaded.ListTransactions(ctx, transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lunch", got[0].Description)
}

func TestFileStore_Import(t *testing.T) {
	ctx := context.Background()

	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "t.csv"), logger.Nop())
	require.NoError(t, err)

	existing := newTx("Rent", "500", transaction.TypeExpense)
	require.NoError(t, s.CreateTransaction(ctx, existing))

	svc := transaction.NewService(s, transaction.WithClock(func() time.Time {
		return time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	}))

	result, err := svc.ImportBatch(ctx, []transaction.CreateParams{
		{Date: existing.Date, Description: "rent", Amount: decimal.NewFromInt(500), Type: transaction.TypeExpense},
		{Date: existing.Date, Description: "Groceries", Amount: decimal.NewFromInt(40), Type: transaction.TypeExpense},
	})
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Len(t, result.Skipped, 1)

	all, err := s.ListTransactions(ctx, transaction.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// The lock is released after commit.
	require.NoError(t, s.CreateTransaction(ctx, newTx("Bus", "2", transaction.TypeExpense)))

	removed, err := svc.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
