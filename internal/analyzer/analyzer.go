// Package analyzer turns a ledger snapshot into alerts and a health score.
// Every call recomputes from scratch; an Analyzer holds no state besides its clock.
package analyzer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const (
	minUnusualExpenses = 3
	maxUnusualAlerts   = 3
	minTrendTxs        = 5
	minRecentExpenses  = 3
	minTrendHistory    = 10
	recentDays         = 7
	maxRecommendations = 2
)

var (
	hundred = decimal.NewFromInt(100)

	unusualFactor    = decimal.NewFromInt(2)
	dominantShare    = decimal.NewFromInt(40)
	monthVariation   = decimal.NewFromInt(20)
	trendFactor      = decimal.RequireFromString("1.5")
	lowSavingsRate   = decimal.NewFromInt(10)
	highSavingsRate  = decimal.NewFromInt(30)
	opportunityShare = decimal.NewFromInt(25)
	reductionRate    = decimal.RequireFromString("0.1")
)

// opportunityCategories are checked in order; the first one over the share
// threshold wins.
var opportunityCategories = []string{"Entertainment", "Food", "Transport"}

type Analyzer struct {
	now func() time.Time
}

type Option func(*Analyzer)

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// AnalyzeAll runs every rule in a fixed order and concatenates the results.
func (a *Analyzer) AnalyzeAll(l transaction.Ledger) []alert.Alert {
	if l.Len() == 0 {
		return []alert.Alert{}
	}

	today := transaction.DayOf(a.now())

	alerts := make([]alert.Alert, 0)
	alerts = appendOpt(alerts, negativeBalance(l))
	alerts = append(alerts, unusualExpenses(l)...)
	alerts = appendOpt(alerts, dominantCategory(l))
	alerts = appendOpt(alerts, monthOverMonth(l, today))
	alerts = appendOpt(alerts, recentTrend(l, today))
	alerts = append(alerts, recommendations(l)...)

	return alerts
}

func appendOpt(alerts []alert.Alert, a *alert.Alert) []alert.Alert {
	if a == nil {
		return alerts
	}

	return append(alerts, *a)
}

func negativeBalance(l transaction.Ledger) *alert.Alert {
	balance := l.Balance()
	if !balance.IsNegative() {
		return nil
	}

	return &alert.Alert{
		Kind:     alert.KindDanger,
		Severity: alert.SeverityHigh,
		Tag:      alert.TagBalance,
		Title:    "Negative balance",
		Message:  fmt.Sprintf("Your balance is negative: %s. You are spending more than you earn.", money.Format(balance)),
	}
}

// unusualExpenses flags expenses of at least twice the mean, keeping ledger
// order and the first few matches.
func unusualExpenses(l transaction.Ledger) []alert.Alert {
	expenses := l.Expenses()
	if expenses.Len() < minUnusualExpenses {
		return nil
	}

	mean := l.TotalExpense().Div(decimal.NewFromInt(int64(expenses.Len())))
	threshold := mean.Mul(unusualFactor)

	var alerts []alert.Alert

	for _, e := range expenses {
		if e.Amount.LessThan(threshold) {
			continue
		}

		alerts = append(alerts, alert.Alert{
			Kind:     alert.KindWarning,
			Severity: alert.SeverityMedium,
			Tag:      alert.TagUnusualExpense,
			Title:    "Unusual expense",
			Message: fmt.Sprintf("Expense of %s on '%s' is %sx your average (%s).",
				money.Format(e.Amount), e.Description, e.Amount.Div(mean).StringFixed(1), money.Format(mean)),
			Ref: e.ID.String(),
		})

		if len(alerts) == maxUnusualAlerts {
			break
		}
	}

	return alerts
}

func dominantCategory(l transaction.Ledger) *alert.Alert {
	top, ok := largestCategory(l)
	if !ok {
		return nil
	}

	share := money.Percent(top.Amount, l.TotalExpense())
	if !share.GreaterThan(dominantShare) {
		return nil
	}

	return &alert.Alert{
		Kind:     alert.KindInfo,
		Severity: alert.SeverityLow,
		Tag:      alert.TagConcentration,
		Title:    "Dominant category",
		Message: fmt.Sprintf("'%s' accounts for %s of your expenses (%s). Consider reviewing this category.",
			top.Category, money.FormatPercent(share), money.Format(top.Amount)),
		Ref: top.Category,
	}
}

// largestCategory picks the category with the highest expense total; ties go
// to the category seen first.
func largestCategory(l transaction.Ledger) (transaction.CategoryTotal, bool) {
	totals := l.CategoryTotals()
	if len(totals) == 0 {
		return transaction.CategoryTotal{}, false
	}

	top := totals[0]
	for _, ct := range totals[1:] {
		if ct.Amount.GreaterThan(top.Amount) {
			top = ct
		}
	}

	return top, true
}

func monthOverMonth(l transaction.Ledger, today time.Time) *alert.Alert {
	prevMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	previous := l.InMonth(prevMonth.Year(), prevMonth.Month())
	if previous.Len() == 0 {
		return nil
	}

	spentBefore := previous.TotalExpense()
	if spentBefore.IsZero() {
		return nil
	}

	spentNow := l.InMonth(today.Year(), today.Month()).TotalExpense()
	variation := spentNow.Sub(spentBefore).Div(spentBefore).Mul(hundred)

	switch {
	case variation.GreaterThan(monthVariation):
		return &alert.Alert{
			Kind:     alert.KindWarning,
			Severity: alert.SeverityMedium,
			Tag:      alert.TagTrend,
			Title:    "Expenses increased",
			Message: fmt.Sprintf("Your expenses rose %s compared to last month. Last month: %s, this month: %s.",
				money.FormatPercent(variation), money.Format(spentBefore), money.Format(spentNow)),
		}
	case variation.LessThan(monthVariation.Neg()):
		return &alert.Alert{
			Kind:     alert.KindSuccess,
			Severity: alert.SeverityLow,
			Tag:      alert.TagImprovement,
			Title:    "Expenses decreased",
			Message:  fmt.Sprintf("Great job! You cut your expenses by %s compared to last month.", money.FormatPercent(variation.Abs())),
		}
	}

	return nil
}

// recentTrend compares the daily spend of the last week, including future-dated
// entries, with the historical average per day that had expenses.
func recentTrend(l transaction.Ledger, today time.Time) *alert.Alert {
	if l.Len() < minTrendTxs {
		return nil
	}

	since := today.AddDate(0, 0, -(recentDays - 1))
	expenses := l.Expenses()

	var (
		recentCount int
		recentTotal decimal.Decimal
	)

	for _, e := range expenses {
		if !transaction.DayOf(e.Date).Before(since) {
			recentCount++
			recentTotal = recentTotal.Add(e.Amount)
		}
	}

	if recentCount < minRecentExpenses || expenses.Len() < minTrendHistory {
		return nil
	}

	days := make(map[time.Time]struct{})
	for _, e := range expenses {
		days[transaction.DayOf(e.Date)] = struct{}{}
	}

	recentAvg := recentTotal.Div(decimal.NewFromInt(recentDays))
	historicAvg := l.TotalExpense().Div(decimal.NewFromInt(int64(len(days))))

	if historicAvg.IsZero() || !recentAvg.GreaterThan(historicAvg.Mul(trendFactor)) {
		return nil
	}

	return &alert.Alert{
		Kind:     alert.KindWarning,
		Severity: alert.SeverityMedium,
		Tag:      alert.TagTrend,
		Title:    "Spending up lately",
		Message: fmt.Sprintf("Over the last 7 days you spent %s/day, %sx your usual %s/day.",
			money.Format(recentAvg), recentAvg.Div(historicAvg).StringFixed(1), money.Format(historicAvg)),
	}
}

func savingsRate(l transaction.Ledger) decimal.Decimal {
	return money.Percent(l.Balance(), l.TotalIncome())
}

func recommendations(l transaction.Ledger) []alert.Alert {
	if !l.TotalIncome().IsPositive() {
		return nil
	}

	var alerts []alert.Alert

	rate := savingsRate(l)

	switch {
	case rate.LessThan(lowSavingsRate):
		alerts = append(alerts, alert.Alert{
			Kind:     alert.KindTip,
			Severity: alert.SeverityLow,
			Tag:      alert.TagRecommendation,
			Title:    "Savings tip",
			Message: fmt.Sprintf("Your savings rate is %s. Try to save at least 20%% of your income by cutting non-essential spending.",
				money.FormatPercent(rate)),
		})
	case rate.GreaterThanOrEqual(highSavingsRate):
		alerts = append(alerts, alert.Alert{
			Kind:     alert.KindSuccess,
			Severity: alert.SeverityLow,
			Tag:      alert.TagCongratulation,
			Title:    "Excellent management",
			Message:  fmt.Sprintf("Your savings rate is %s. Fantastic work, keep it up!", money.FormatPercent(rate)),
		})
	}

	if a := opportunity(l); a != nil {
		alerts = append(alerts, *a)
	}

	if len(alerts) > maxRecommendations {
		alerts = alerts[:maxRecommendations]
	}

	return alerts
}

func opportunity(l transaction.Ledger) *alert.Alert {
	byCategory := l.ExpensesByCategory()
	total := l.TotalExpense()

	for _, cat := range opportunityCategories {
		spent, ok := byCategory[cat]
		if !ok {
			continue
		}

		share := money.Percent(spent, total)
		if !share.GreaterThan(opportunityShare) {
			continue
		}

		return &alert.Alert{
			Kind:     alert.KindTip,
			Severity: alert.SeverityLow,
			Tag:      alert.TagOpportunity,
			Title:    "Opportunity in " + cat,
			Message: fmt.Sprintf("You spend %s (%s) on %s. Cutting 10%% here would save you %s.",
				money.Format(spent), money.FormatPercent(share), cat, money.Format(spent.Mul(reductionRate))),
			Ref: cat,
		}
	}

	return nil
}
