// Package budget tracks monthly spending limits per expense category.
package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodLayout formats the advisory month tag of a budget.
const PeriodLayout = "2006-01"

// Budget is the monthly limit of one expense category. Spend is never stored;
// it is recomputed from the ledger.
type Budget struct {
	Category string
	Amount   decimal.Decimal
	Created  time.Time
	Period   string
}

// Status is a budget together with its month-to-date usage.
type Status struct {
	Budget    *Budget
	Spent     decimal.Decimal
	Usage     decimal.Decimal
	Remaining decimal.Decimal
	Level     Level
}

// Summary aggregates every budget for the current month.
type Summary struct {
	TotalBudgeted decimal.Decimal
	TotalSpent    decimal.Decimal
	Remaining     decimal.Decimal
	Usage         decimal.Decimal
	Count         int
	Exceeded      int
}

// Level is the alert tier derived from a usage percentage.
type Level int

const (
	LevelNone Level = iota
	LevelInfo
	LevelWarning
	LevelAlmostExhausted
	LevelExceeded
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelAlmostExhausted:
		return "almost exhausted"
	case LevelExceeded:
		return "exceeded"
	}

	return "none"
}

var (
	tierExceeded = decimal.NewFromInt(100)
	tierAlmost   = decimal.NewFromInt(90)
	tierWarning  = decimal.NewFromInt(80)
	tierInfo     = decimal.NewFromInt(50)
)

// Tier maps a usage percentage to its alert level. Each boundary belongs to
// the higher tier.
func Tier(usage decimal.Decimal) Level {
	switch {
	case usage.GreaterThanOrEqual(tierExceeded):
		return LevelExceeded
	case usage.GreaterThanOrEqual(tierAlmost):
		return LevelAlmostExhausted
	case usage.GreaterThanOrEqual(tierWarning):
		return LevelWarning
	case usage.GreaterThanOrEqual(tierInfo):
		return LevelInfo
	}

	return LevelNone
}
