package analyzer_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

var now = time.Date(2024, 6, 20, 14, 0, 0, 0, time.UTC)

func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.WithClock(func() time.Time { return now }))
}

func tx(typ transaction.Type, amount, category string, date time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		Date:        date,
		Description: category + " entry",
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    category,
	}
}

func income(amount, category string, date time.Time) *transaction.Transaction {
	return tx(transaction.TypeIncome, amount, category, date)
}

func expense(amount, category string, date time.Time) *transaction.Transaction {
	return tx(transaction.TypeExpense, amount, category, date)
}

func on(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}

func tags(alerts []alert.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Tag)
	}

	return out
}

func TestAnalyzeAll_EmptyLedger(t *testing.T) {
	a := newAnalyzer()

	assert.Empty(t, a.AnalyzeAll(nil))
	assert.Equal(t, 0, a.HealthSummary(nil).Score)
	assert.Equal(t, analyzer.LevelNoData, a.HealthSummary(nil).Level)
}

func TestAnalyzeAll_NegativeBalance(t *testing.T) {
	l := transaction.Ledger{
		income("100", "Salary", on(time.March, 1)),
		expense("350.75", "Home", on(time.March, 2)),
	}

	got := alert.WithTag(newAnalyzer().AnalyzeAll(l), alert.TagBalance)
	require.Len(t, got, 1)
	assert.Equal(t, alert.KindDanger, got[0].Kind)
	assert.Equal(t, alert.SeverityHigh, got[0].Severity)
	assert.Contains(t, got[0].Message, "-$250.75")
	assert.Equal(t, 1, alert.Count(newAnalyzer().AnalyzeAll(l), alert.KindDanger))
}

func TestAnalyzeAll_SalaryAndGroceries(t *testing.T) {
	l := transaction.Ledger{
		income("1000", "Salary", on(time.March, 4)),
		expense("300", "Groceries", on(time.March, 4)),
	}

	assert.Equal(t, "700", l.Balance().String())
	byCategory := l.ExpensesByCategory()
	require.Len(t, byCategory, 1)
	assert.Equal(t, "300", byCategory["Groceries"].String())

	alerts := newAnalyzer().AnalyzeAll(l)
	assert.Zero(t, alert.Count(alerts, alert.KindDanger))

	dominant := alert.WithTag(alerts, alert.TagConcentration)
	require.Len(t, dominant, 1)
	assert.Contains(t, dominant[0].Message, "100.0%")
	assert.Contains(t, dominant[0].Message, "'Groceries'")
}

func TestUnusualExpenses(t *testing.T) {
	type testCase struct {
		name      string
		amounts   []string
		wantCount int
		wantMult  []string
	}

	tests := []testCase{
		{
			name:      "TooFewExpenses",
			amounts:   []string{"10", "500"},
			wantCount: 0,
		},
		{
			name:      "ThreeTimesMeanOfThree",
			amounts:   []string{"0", "0", "300"},
			wantCount: 1,
			wantMult:  []string{"3.0x"},
		},
		{
			name:      "OneOutlier",
			amounts:   []string{"100", "100", "100", "100", "500"},
			wantCount: 1,
			wantMult:  []string{"2.8x"},
		},
		{
			name:      "CappedAtThreeInLedgerOrder",
			amounts:   []string{"1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "1", "10", "20", "30", "40"},
			wantCount: 3,
			wantMult:  []string{"'e20'", "'e21'", "'e22'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l transaction.Ledger
			for i, amt := range tt.amounts {
				e := expense(amt, fmt.Sprintf("c%d", i), on(time.January, 1+i%28))
				e.Description = fmt.Sprintf("e%d", i)
				l = append(l, e)
			}

			got := alert.WithTag(newAnalyzer().AnalyzeAll(l), alert.TagUnusualExpense)
			require.Len(t, got, tt.wantCount)

			for i, want := range tt.wantMult {
				assert.Equal(t, alert.KindWarning, got[i].Kind)
				assert.Contains(t, got[i].Message, want)
			}
		})
	}
}

func TestMonthOverMonth(t *testing.T) {
	type testCase struct {
		name    string
		ledger  transaction.Ledger
		wantTag string
		want    alert.Kind
	}

	tests := []testCase{
		{
			name: "Increase",
			ledger: transaction.Ledger{
				expense("100", "Food", on(time.May, 10)),
				expense("130", "Food", on(time.June, 10)),
			},
			wantTag: alert.TagTrend,
			want:    alert.KindWarning,
		},
		{
			name: "Decrease",
			ledger: transaction.Ledger{
				expense("100", "Food", on(time.May, 10)),
				expense("70", "Food", on(time.June, 10)),
			},
			wantTag: alert.TagImprovement,
			want:    alert.KindSuccess,
		},
		{
			name: "WithinBand",
			ledger: transaction.Ledger{
				expense("100", "Food", on(time.May, 10)),
				expense("110", "Food", on(time.June, 10)),
			},
		},
		{
			name: "PreviousMonthOnlyIncome",
			ledger: transaction.Ledger{
				income("100", "Salary", on(time.May, 10)),
				expense("900", "Food", on(time.June, 10)),
			},
		},
		{
			name: "NoPreviousMonth",
			ledger: transaction.Ledger{
				expense("900", "Food", on(time.June, 10)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := newAnalyzer().AnalyzeAll(tt.ledger)

			trend := append(alert.WithTag(alerts, alert.TagTrend), alert.WithTag(alerts, alert.TagImprovement)...)
			if tt.want == "" {
				assert.Empty(t, trend)
				return
			}

			require.Len(t, trend, 1)
			assert.Equal(t, tt.wantTag, trend[0].Tag)
			assert.Equal(t, tt.want, trend[0].Kind)
		})
	}
}

func TestMonthOverMonth_YearBoundary(t *testing.T) {
	a := analyzer.New(analyzer.WithClock(func() time.Time { return time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC) }))

	l := transaction.Ledger{
		expense("100", "Food", time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)),
		expense("200", "Food", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)),
	}

	got := alert.WithTag(a.AnalyzeAll(l), alert.TagTrend)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "100.0%")
}

func TestRecentTrend(t *testing.T) {
	var l transaction.Ledger

	// ten older expenses of 10 on distinct days
	for d := 1; d <= 10; d++ {
		l = append(l, expense("10", fmt.Sprintf("c%d", d), on(time.April, d)))
	}

	// three recent expenses, one dated in the future
	l = append(l,
		expense("300", "r1", on(time.June, 14)),
		expense("300", "r2", on(time.June, 20)),
		expense("300", "r3", on(time.June, 25)),
	)

	got := alert.WithTag(newAnalyzer().AnalyzeAll(l), alert.TagTrend)
	require.Len(t, got, 1)
	assert.Equal(t, alert.KindWarning, got[0].Kind)
	assert.Contains(t, got[0].Message, "Over the last 7 days")
}

func TestRecentTrend_WindowExcludesSevenDaysAgo(t *testing.T) {
	var l transaction.Ledger

	for d := 1; d <= 10; d++ {
		l = append(l, expense("10", fmt.Sprintf("c%d", d), on(time.April, d)))
	}

	l = append(l,
		expense("300", "r1", on(time.June, 13)),
		expense("300", "r2", on(time.June, 19)),
		expense("300", "r3", on(time.June, 20)),
	)

	assert.Empty(t, alert.WithTag(newAnalyzer().AnalyzeAll(l), alert.TagTrend))
}

func TestRecommendations(t *testing.T) {
	type testCase struct {
		name     string
		ledger   transaction.Ledger
		wantTags []string
	}

	tests := []testCase{
		{
			name: "LowSavingsAndFoodOpportunity",
			ledger: transaction.Ledger{
				income("1000", "Salary", on(time.March, 1)),
				expense("600", "Food", on(time.March, 2)),
				expense("350", "Home", on(time.March, 3)),
			},
			wantTags: []string{alert.TagRecommendation, alert.TagOpportunity},
		},
		{
			name: "HighSavings",
			ledger: transaction.Ledger{
				income("1000", "Salary", on(time.March, 1)),
				expense("100", "Home", on(time.March, 2)),
				expense("100", "Health", on(time.March, 3)),
				expense("100", "Travel", on(time.March, 4)),
			},
			wantTags: []string{alert.TagCongratulation},
		},
		{
			name: "MiddleRateNothing",
			ledger: transaction.Ledger{
				income("1000", "Salary", on(time.March, 1)),
				expense("200", "Home", on(time.March, 2)),
				expense("200", "Health", on(time.March, 3)),
				expense("200", "Travel", on(time.March, 4)),
				expense("200", "Utilities", on(time.March, 5)),
			},
			wantTags: []string{},
		},
		{
			name: "EntertainmentBeatsFood",
			ledger: transaction.Ledger{
				income("950", "Salary", on(time.March, 1)),
				expense("300", "Food", on(time.March, 2)),
				expense("300", "Entertainment", on(time.March, 3)),
				expense("300", "Transport", on(time.March, 4)),
			},
			wantTags: []string{alert.TagRecommendation, alert.TagOpportunity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := newAnalyzer().AnalyzeAll(tt.ledger)

			var got []alert.Alert
			for _, a := range alerts {
				switch a.Tag {
				case alert.TagRecommendation, alert.TagCongratulation, alert.TagOpportunity:
					got = append(got, a)
				}
			}

			assert.Equal(t, tt.wantTags, tags(got))
		})
	}
}

func TestRecommendations_OpportunityOrder(t *testing.T) {
	l := transaction.Ledger{
		income("1000", "Salary", on(time.March, 1)),
		expense("300", "Food", on(time.March, 2)),
		expense("300", "Entertainment", on(time.March, 3)),
		expense("300", "Transport", on(time.March, 4)),
	}

	got := alert.WithTag(newAnalyzer().AnalyzeAll(l), alert.TagOpportunity)
	require.Len(t, got, 1)
	assert.Equal(t, "Entertainment", got[0].Ref)
	assert.Contains(t, got[0].Message, "$30.00")
}

func TestAnalyzeAll_Order(t *testing.T) {
	l := transaction.Ledger{
		income("100", "Salary", on(time.May, 1)),
		expense("10", "Food", on(time.May, 2)),
		expense("10", "Food", on(time.May, 3)),
		expense("500", "Food", on(time.June, 3)),
	}

	got := tags(newAnalyzer().AnalyzeAll(l))
	assert.Equal(t, []string{
		alert.TagBalance,
		alert.TagUnusualExpense,
		alert.TagConcentration,
		alert.TagTrend,
		alert.TagRecommendation,
		alert.TagOpportunity,
	}, got)
}
