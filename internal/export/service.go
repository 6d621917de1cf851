// Package export writes the ledger out as CSV or as a plain-text report.
package export

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/ledgercsv"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const (
	latestCount  = 10
	topCount     = 5
	maxDescWidth = 30
)

type Lister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	transactions Lister
	analyzer     *analyzer.Analyzer
	now          func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(transactions Lister, a *analyzer.Analyzer, opts ...Option) *Service {
	s := &Service{transactions: transactions, analyzer: a, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WriteCSV writes the matching transactions in the ledger file format and
// returns how many were written.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, filter transaction.ListFilter) (int, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if err := ledgercsv.Write(w, txs); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}

	return len(txs), nil
}

// Report is a printable overview of a set of transactions.
type Report struct {
	Generated   time.Time
	Count       int
	Income      decimal.Decimal
	Expense     decimal.Decimal
	Balance     decimal.Decimal
	SavingsRate decimal.Decimal
	Health      analyzer.HealthScore
	Categories  []transaction.CategoryTotal
	Latest      []*transaction.Transaction
	TopExpenses []*transaction.Transaction
}

func (s *Service) Report(ctx context.Context, filter transaction.ListFilter) (*Report, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	l := transaction.Ledger(txs)

	r := &Report{
		Generated:   s.now(),
		Count:       l.Len(),
		Income:      l.TotalIncome(),
		Expense:     l.TotalExpense(),
		Balance:     l.Balance(),
		SavingsRate: money.Percent(l.Balance(), l.TotalIncome()),
		Health:      s.analyzer.HealthSummary(l),
		Categories:  l.CategoryTotals(),
	}

	slices.SortStableFunc(r.Categories, func(a, b transaction.CategoryTotal) int {
		return b.Amount.Cmp(a.Amount)
	})

	latest := slices.Clone(txs)
	slices.SortStableFunc(latest, func(a, b *transaction.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	r.Latest = latest[:min(latestCount, len(latest))]

	top := slices.Clone(l.Expenses())
	slices.SortStableFunc(top, func(a, b *transaction.Transaction) int {
		return cmp.Compare(0, a.Amount.Cmp(b.Amount))
	})
	r.TopExpenses = top[:min(topCount, len(top))]

	return r, nil
}

// Lines renders the report as plain text, one line per entry.
func (r *Report) Lines() []string {
	var b strings.Builder

	_ = r.WriteTo(&b)

	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
}

func (r *Report) WriteTo(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "BALANCEA REPORT\t%s\n\n", r.Generated.Format("2006-01-02 15:04"))

	fmt.Fprintln(tw, "SUMMARY")
	fmt.Fprintf(tw, "Total income\t%s\n", money.Format(r.Income))
	fmt.Fprintf(tw, "Total expenses\t%s\n", money.Format(r.Expense))
	fmt.Fprintf(tw, "Balance\t%s\n", money.Format(r.Balance))
	fmt.Fprintf(tw, "Savings rate\t%s\n", money.FormatPercent(r.SavingsRate))
	fmt.Fprintf(tw, "Financial health\t%s (%d/100)\n", r.Health.Level, r.Health.Score)
	fmt.Fprintf(tw, "Transactions\t%d\n", r.Count)

	fmt.Fprintln(tw, "\nEXPENSES BY CATEGORY")

	if len(r.Categories) == 0 {
		fmt.Fprintln(tw, "No expenses recorded")
	}

	for _, ct := range r.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ct.Category, money.Format(ct.Amount), money.FormatPercent(money.Percent(ct.Amount, r.Expense)))
	}

	fmt.Fprintf(tw, "\nLATEST %d TRANSACTIONS\n", latestCount)

	if len(r.Latest) == 0 {
		fmt.Fprintln(tw, "No transactions recorded")
	}

	for _, t := range r.Latest {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Date.Format(time.DateOnly), truncate(t.Description), t.Type, money.Format(t.Amount))
	}

	fmt.Fprintf(tw, "\nTOP %d EXPENSES\n", topCount)

	if len(r.TopExpenses) == 0 {
		fmt.Fprintln(tw, "No expenses recorded")
	}

	for i, t := range r.TopExpenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, truncate(t.Description), t.Category, t.Date.Format(time.DateOnly), money.Format(t.Amount))
	}

	return tw.Flush()
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDescWidth {
		return s
	}

	return string(r[:maxDescWidth]) + "..."
}
