package budget

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var (
	ErrNotFound      = errors.New("budget not found")
	ErrEmptyCategory = errors.New("budget category cannot be empty")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	ListBudgets(ctx context.Context) ([]*Budget, error)
	GetBudget(ctx context.Context, category string) (*Budget, error)
	SaveBudget(ctx context.Context, b *Budget) error
	SaveBudgets(ctx context.Context, bs []*Budget) error
	DeleteBudget(ctx context.Context, category string) error
}

// LedgerSource provides the transactions spend is computed from.
type LedgerSource interface {
	Snapshot(ctx context.Context) (transaction.Ledger, error)
}

// CategoryLister lists the categories of a transaction type.
type CategoryLister interface {
	List(t transaction.Type) []string
}

type Service struct {
	repo       Repository
	ledger     LedgerSource
	categories CategoryLister
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCategories(c CategoryLister) Option {
	return func(s *Service) { s.categories = c }
}

func NewService(repo Repository, ledger LedgerSource, opts ...Option) *Service {
	s := &Service{repo: repo, ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

var suggestionMargin = decimal.RequireFromString("1.1")

// Set creates or replaces the budget of a category.
func (s *Service) Set(ctx context.Context, category string, amount decimal.Decimal) (*Budget, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrEmptyCategory
	}

	if err := money.Validate(amount); err != nil {
		return nil, fmt.Errorf("invalid budget amount: %w", err)
	}

	now := s.now()
	b := &Budget{
		Category: category,
		Amount:   money.Cents(amount),
		Created:  transaction.DayOf(now),
		Period:   now.Format(PeriodLayout),
	}

	if err := s.repo.SaveBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("saving budget: %w", err)
	}

	return b, nil
}

func (s *Service) Remove(ctx context.Context, category string) error {
	return s.repo.DeleteBudget(ctx, strings.TrimSpace(category))
}

func (s *Service) Get(ctx context.Context, category string) (*Budget, error) {
	return s.repo.GetBudget(ctx, strings.TrimSpace(category))
}

// List returns every budget ordered by category name.
func (s *Service) List(ctx context.Context) ([]*Budget, error) {
	bs, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(bs, func(a, b *Budget) int { return strings.Compare(a.Category, b.Category) })

	return bs, nil
}

// Status reports month-to-date usage of one budget.
func (s *Service) Status(ctx context.Context, category string) (*Status, error) {
	b, err := s.repo.GetBudget(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}

	ledger, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return statusOf(b, s.monthSpend(ledger)), nil
}

// Statuses reports every budget, ordered by category name.
func (s *Service) Statuses(ctx context.Context) ([]*Status, error) {
	bs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	ledger, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	spend := s.monthSpend(ledger)

	out := make([]*Status, len(bs))
	for i, b := range bs {
		out[i] = statusOf(b, spend)
	}

	return out, nil
}

// monthSpend sums current-month expenses per category.
func (s *Service) monthSpend(l transaction.Ledger) map[string]decimal.Decimal {
	now := s.now()
	return l.InMonth(now.Year(), now.Month()).ExpensesByCategory()
}

func statusOf(b *Budget, spend map[string]decimal.Decimal) *Status {
	spent := spend[b.Category]
	usage := money.Percent(spent, b.Amount)

	return &Status{
		Budget:    b,
		Spent:     spent,
		Usage:     usage,
		Remaining: b.Amount.Sub(spent),
		Level:     Tier(usage),
	}
}

// Alerts returns at most one alert per budgeted category, by category name.
func (s *Service) Alerts(ctx context.Context) ([]alert.Alert, error) {
	statuses, err := s.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	var alerts []alert.Alert

	for _, st := range statuses {
		if a, ok := AlertFor(st); ok {
			alerts = append(alerts, a)
		}
	}

	return alerts, nil
}

// AlertFor turns a status into its alert, if its tier raises one.
func AlertFor(st *Status) (alert.Alert, bool) {
	cat := st.Budget.Category
	pct := money.FormatPercent(st.Usage)

	a := alert.Alert{Tag: alert.TagBudget, Ref: cat}

	switch st.Level {
	case LevelExceeded:
		a.Kind, a.Severity = alert.KindDanger, alert.SeverityHigh
		a.Title = "Budget exceeded"
		a.Message = fmt.Sprintf("The '%s' budget is exceeded (%s): %s spent of %s.",
			cat, pct, money.Format(st.Spent), money.Format(st.Budget.Amount))
	case LevelAlmostExhausted:
		a.Kind, a.Severity = alert.KindDanger, alert.SeverityHigh
		a.Title = "Budget almost exhausted"
		a.Message = fmt.Sprintf("The '%s' budget is almost exhausted (%s), %s left.",
			cat, pct, money.Format(st.Remaining))
	case LevelWarning:
		a.Kind, a.Severity = alert.KindWarning, alert.SeverityMedium
		a.Title = "Budget running low"
		a.Message = fmt.Sprintf("The '%s' budget is at %s, %s left.", cat, pct, money.Format(st.Remaining))
	case LevelInfo:
		a.Kind, a.Severity = alert.KindInfo, alert.SeverityLow
		a.Title = "Budget half used"
		a.Message = fmt.Sprintf("The '%s' budget is at %s.", cat, pct)
	default:
		return alert.Alert{}, false
	}

	return a, true
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	statuses, err := s.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Count: len(statuses)}

	for _, st := range statuses {
		sum.TotalBudgeted = sum.TotalBudgeted.Add(st.Budget.Amount)
		sum.TotalSpent = sum.TotalSpent.Add(st.Spent)

		if st.Level == LevelExceeded {
			sum.Exceeded++
		}
	}

	sum.Remaining = sum.TotalBudgeted.Sub(sum.TotalSpent)
	sum.Usage = money.Percent(sum.TotalSpent, sum.TotalBudgeted)

	return sum, nil
}

// Suggest proposes a budget of 110% of the average monthly spend over the
// current and two previous months, counting only months with spend. ok is
// false when none of them has any.
func (s *Service) Suggest(ctx context.Context, category string) (decimal.Decimal, bool, error) {
	category = strings.TrimSpace(category)

	ledger, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}

	expenses := ledger.Filter(transaction.ListFilter{Type: new(transaction.TypeExpense)})
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		total  decimal.Decimal
		months int64
	)

	for i := range 3 {
		m := first.AddDate(0, -i, 0)

		var spent decimal.Decimal

		found := false

		for _, t := range expenses.InMonth(m.Year(), m.Month()) {
			if t.Category == category {
				spent = spent.Add(t.Amount)
				found = true
			}
		}

		if found {
			total = total.Add(spent)
			months++
		}
	}

	if months == 0 {
		return decimal.Zero, false, nil
	}

	return total.Div(decimal.NewFromInt(months)).Mul(suggestionMargin).Round(2), true, nil
}

// ResetMonth moves every budget whose period tag is stale to the current
// month and returns how many changed. Spend is unaffected.
func (s *Service) ResetMonth(ctx context.Context) (int, error) {
	bs, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return 0, err
	}

	period := s.now().Format(PeriodLayout)

	var changed []*Budget

	for _, b := range bs {
		if b.Period != period {
			b.Period = period
			changed = append(changed, b)
		}
	}

	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.repo.SaveBudgets(ctx, changed); err != nil {
		return 0, fmt.Errorf("saving budgets: %w", err)
	}

	return len(changed), nil
}

// Unbudgeted lists expense categories that have no budget, in taxonomy order.
func (s *Service) Unbudgeted(ctx context.Context) ([]string, error) {
	if s.categories == nil {
		return nil, nil
	}

	bs, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}

	budgeted := make(map[string]struct{}, len(bs))
	for _, b := range bs {
		budgeted[b.Category] = struct{}{}
	}

	var out []string

	for _, c := range s.categories.List(transaction.TypeExpense) {
		if _, ok := budgeted[c]; !ok {
			out = append(out, c)
		}
	}

	return out, nil
}
