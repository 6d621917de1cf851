package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is an ordered snapshot of transactions. Aggregates are recomputed on
// every call.
type Ledger []*Transaction

// CategoryTotal is the summed expense of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

func (l Ledger) Len() int {
	return len(l)
}

func (l Ledger) TotalIncome() decimal.Decimal {
	return l.sum(TypeIncome)
}

func (l Ledger) TotalExpense() decimal.Decimal {
	return l.sum(TypeExpense)
}

// Balance is total income minus total expense.
func (l Ledger) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l {
		total = total.Add(t.Signed())
	}

	return total
}

func (l Ledger) sum(typ Type) decimal.Decimal {
	total := decimal.Zero

	for _, t := range l {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}

	return total
}

// ExpensesByCategory sums expense amounts per category.
func (l Ledger) ExpensesByCategory() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)

	for _, t := range l {
		if t.Type != TypeExpense {
			continue
		}

		out[t.Category] = out[t.Category].Add(t.Amount)
	}

	return out
}

// CategoryTotals returns the same sums as ExpensesByCategory ordered by the
// first appearance of each category in the ledger.
func (l Ledger) CategoryTotals() []CategoryTotal {
	var totals []CategoryTotal

	index := make(map[string]int)

	for _, t := range l {
		if t.Type != TypeExpense {
			continue
		}

		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryTotal{Category: t.Category})
		}

		totals[i].Amount = totals[i].Amount.Add(t.Amount)
	}

	return totals
}

// Expenses returns only the expense entries, in ledger order.
func (l Ledger) Expenses() Ledger {
	return l.Filter(ListFilter{Type: new(TypeExpense)})
}

// InMonth returns the entries dated in the given calendar month.
func (l Ledger) InMonth(year int, month time.Month) Ledger {
	var out Ledger

	for _, t := range l {
		if t.Date.Year() == year && t.Date.Month() == month {
			out = append(out, t)
		}
	}

	return out
}

func (l Ledger) Filter(f ListFilter) Ledger {
	var out Ledger

	for _, t := range l {
		if f.Match(t) {
			out = append(out, t)
		}
	}

	return out
}

// Match reports whether t satisfies every criterion set on the filter.
func (f ListFilter) Match(t *Transaction) bool {
	if f.Type != nil && t.Type != *f.Type {
		return false
	}

	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}

	if f.StartDate != nil && t.Date.Before(DayOf(*f.StartDate)) {
		return false
	}

	if f.EndDate != nil && t.Date.After(DayOf(*f.EndDate)) {
		return false
	}

	if f.Query != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Query)) {
		return false
	}

	return true
}
