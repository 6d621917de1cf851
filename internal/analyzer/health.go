package analyzer

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type Level string

const (
	LevelNoData    Level = "No data"
	LevelExcellent Level = "Excellent"
	LevelGood      Level = "Good"
	LevelFair      Level = "Fair"
	LevelPoor      Level = "Needs improvement"
)

// HealthScore rates the ledger from 0 to 100.
type HealthScore struct {
	Score       int             `json:"score"`
	Level       Level           `json:"level"`
	SavingsRate decimal.Decimal `json:"savings_rate"`
}

var (
	savingsTiers = []struct {
		min    decimal.Decimal
		points int
	}{
		{decimal.NewFromInt(30), 40},
		{decimal.NewFromInt(20), 30},
		{decimal.NewFromInt(10), 20},
	}

	diversifiedShare = decimal.NewFromInt(30)
	balancedShare    = decimal.NewFromInt(50)
)

const (
	positiveSavingsPoints = 10
	positiveBalancePoints = 30
	diversifiedPoints     = 30
	balancedPoints        = 15
)

func (a *Analyzer) HealthSummary(l transaction.Ledger) HealthScore {
	if !l.TotalIncome().IsPositive() {
		return HealthScore{Level: LevelNoData, SavingsRate: decimal.Zero}
	}

	rate := savingsRate(l)
	score := savingsPoints(rate)

	if l.Balance().IsPositive() {
		score += positiveBalancePoints
	}

	score += diversificationPoints(l)

	return HealthScore{Score: score, Level: levelFor(score), SavingsRate: money.Cents(rate)}
}

func savingsPoints(rate decimal.Decimal) int {
	for _, tier := range savingsTiers {
		if rate.GreaterThanOrEqual(tier.min) {
			return tier.points
		}
	}

	if rate.IsPositive() {
		return positiveSavingsPoints
	}

	return 0
}

// diversificationPoints rewards spreading expenses over categories. Without
// expenses the largest share counts as 100%.
func diversificationPoints(l transaction.Ledger) int {
	share := hundred
	if top, ok := largestCategory(l); ok && l.TotalExpense().IsPositive() {
		share = money.Percent(top.Amount, l.TotalExpense())
	}

	switch {
	case share.LessThan(diversifiedShare):
		return diversifiedPoints
	case share.LessThan(balancedShare):
		return balancedPoints
	default:
		return 0
	}
}

func levelFor(score int) Level {
	switch {
	case score >= 80:
		return LevelExcellent
	case score >= 60:
		return LevelGood
	case score >= 40:
		return LevelFair
	default:
		return LevelPoor
	}
}
