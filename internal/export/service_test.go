package export_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/export"
	"github.com/MrJamesThe3rd/balancea/internal/ledgercsv"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var now = time.Date(2024, 6, 20, 18, 30, 0, 0, time.UTC)

type stubLister struct {
	txs    []*transaction.Transaction
	err    error
	filter transaction.ListFilter
}

func (s *stubLister) List(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.filter = filter
	return s.txs, s.err
}

func entry(day int, desc, amount string, typ transaction.Type, category string) *transaction.Transaction {
	return &transaction.Transaction{
		Date:        time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    category,
	}
}

func sample() []*transaction.Transaction {
	return []*transaction.Transaction{
		entry(1, "June salary", "2000", transaction.TypeIncome, "Salary"),
		entry(2, "Supermarket", "120.40", transaction.TypeExpense, "Food"),
		entry(5, "Rent", "800", transaction.TypeExpense, "Home"),
		entry(3, "Cinema with a very long description that goes on", "15", transaction.TypeExpense, "Entertainment"),
	}
}

func newService(l export.Lister) *export.Service {
	a := analyzer.New(analyzer.WithClock(func() time.Time { return now }))
	return export.NewService(l, a, export.WithClock(func() time.Time { return now }))
}

func TestService_WriteCSV(t *testing.T) {
	lister := &stubLister{txs: sample()}
	filter := transaction.ListFilter{Category: "Food"}

	var buf bytes.Buffer

	n, err := newService(lister).WriteCSV(context.Background(), &buf, filter)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, filter, lister.filter)

	back, rowErrs, err := ledgercsv.Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, back, 4)
	assert.Equal(t, "120.40", back[1].Amount.StringFixed(2))
}

func TestService_WriteCSV_ListError(t *testing.T) {
	_, err := newService(&stubLister{err: errors.New("db down")}).WriteCSV(context.Background(), &bytes.Buffer{}, transaction.ListFilter{})
	assert.ErrorContains(t, err, "listing transactions: db down")
}

func TestService_Report(t *testing.T) {
	r, err := newService(&stubLister{txs: sample()}).Report(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)

	assert.Equal(t, 4, r.Count)
	assert.Equal(t, "1064.6", r.Balance.String())
	require.Len(t, r.Categories, 3)
	assert.Equal(t, "Home", r.Categories[0].Category)
	assert.Equal(t, "Rent", r.Latest[0].Description)
	assert.Equal(t, "June salary", r.Latest[3].Description)
	require.Len(t, r.TopExpenses, 3)
	assert.Equal(t, "Rent", r.TopExpenses[0].Description)
	assert.Equal(t, "Supermarket", r.TopExpenses[1].Description)

	text := strings.Join(r.Lines(), "\n")
	assert.Contains(t, text, "BALANCEA REPORT")
	assert.Contains(t, text, "2024-06-20 18:30")
	assert.Contains(t, text, "$1,064.60")
	assert.Contains(t, text, "Cinema with a very long descri...")
	assert.Regexp(t, `Savings rate\s+53\.2%`, text)
}

func TestService_Report_Empty(t *testing.T) {
	r, err := newService(&stubLister{}).Report(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)

	text := strings.Join(r.Lines(), "\n")
	assert.Contains(t, text, "No expenses recorded")
	assert.Contains(t, text, "No transactions recorded")
	assert.Contains(t, text, "No data (0/100)")
}
