package assistant

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type command string

const (
	cmdAnalysis command = "analysis"
	cmdAlerts   command = "alerts"
	cmdTips     command = "tips"
	cmdSummary  command = "summary"
	cmdHelp     command = "commands"
)

// commandPatterns are matched as substrings of the lowercased message, in order.
var commandPatterns = []struct {
	pattern string
	cmd     command
}{
	{"/analysis", cmdAnalysis},
	{"/alerts", cmdAlerts},
	{"/tips", cmdTips},
	{"/summary", cmdSummary},
	{"/commands", cmdHelp},
	{"full analysis", cmdAnalysis},
	{"show alerts", cmdAlerts},
	{"give me tips", cmdTips},
	{"quick summary", cmdSummary},
}

// Commands lists the commands answered without the model.
func Commands() []string {
	return []string{
		"/analysis - full financial analysis",
		"/alerts - every active alert",
		"/tips - personalised tips",
		"/summary - quick summary",
		"/commands - this list",
	}
}

func detectCommand(msg string) (command, bool) {
	lower := strings.ToLower(strings.TrimSpace(msg))

	for _, p := range commandPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.cmd, true
		}
	}

	return "", false
}

func (c *Chat) runCommand(cmd command, l transaction.Ledger) string {
	switch cmd {
	case cmdAnalysis:
		return c.analysis(l)
	case cmdAlerts:
		return c.alertList(l)
	case cmdTips:
		return tips(l)
	case cmdSummary:
		return c.summary(l)
	default:
		return "Available commands:\n" + strings.Join(Commands(), "\n")
	}
}

func writeTotals(b *strings.Builder, l transaction.Ledger, h analyzer.HealthScore) {
	fmt.Fprintf(b, "Balance: %s\n", money.Format(l.Balance()))
	fmt.Fprintf(b, "Income: %s\n", money.Format(l.TotalIncome()))
	fmt.Fprintf(b, "Expenses: %s\n", money.Format(l.TotalExpense()))
	fmt.Fprintf(b, "Savings rate: %s\n", money.FormatPercent(h.SavingsRate))
	fmt.Fprintf(b, "Financial health: %s (%d/100)\n", h.Level, h.Score)
}

// writeDistribution lists the expense categories from largest to smallest.
func writeDistribution(b *strings.Builder, l transaction.Ledger) {
	totals := l.CategoryTotals()
	if len(totals) == 0 {
		b.WriteString("  (no expenses recorded)\n")
		return
	}

	slices.SortStableFunc(totals, func(x, y transaction.CategoryTotal) int {
		return y.Amount.Cmp(x.Amount)
	})

	spent := l.TotalExpense()
	for _, ct := range totals {
		fmt.Fprintf(b, "  - %s: %s (%s)\n", ct.Category, money.Format(ct.Amount), money.FormatPercent(money.Percent(ct.Amount, spent)))
	}
}

func (c *Chat) analysis(l transaction.Ledger) string {
	var b strings.Builder

	h := c.analyzer.HealthSummary(l)

	b.WriteString("FULL FINANCIAL ANALYSIS\n\n")
	writeTotals(&b, l, h)
	b.WriteString("\n")

	switch {
	case h.Score >= 80:
		b.WriteString("Excellent work! Your finances are in very good shape.")
	case h.Score >= 60:
		b.WriteString("You are doing well, but there is room to improve.")
	case h.Score >= 40:
		b.WriteString("Attention needed. Consider reviewing your expenses.")
	default:
		b.WriteString("Critical situation. You need to make important changes.")
	}

	return b.String()
}

func (c *Chat) alertList(l transaction.Ledger) string {
	alerts := c.analyzer.AnalyzeAll(l)
	if len(alerts) == 0 {
		return "All good! There are no active alerts right now."
	}

	var b strings.Builder

	fmt.Fprintf(&b, "ACTIVE ALERTS (%d):\n", len(alerts))

	for _, a := range alerts {
		fmt.Fprintf(&b, "\n%s %s\n%s\n", alertIcon(a.Kind), a.Title, a.Message)
	}

	return b.String()
}

var (
	tipSavingsShare  = decimal.RequireFromString("0.1")
	tipCategoryShare = decimal.NewFromInt(35)
)

func tips(l transaction.Ledger) string {
	var b strings.Builder

	b.WriteString("PERSONALISED TIPS:\n\n")

	balance := l.Balance()

	switch {
	case balance.IsNegative():
		b.WriteString("- URGENT: your balance is negative. Cut expenses right away.\n")
	case balance.LessThan(l.TotalIncome().Mul(tipSavingsShare)):
		b.WriteString("- Try to save at least 20% of your monthly income.\n")
	}

	totals := l.CategoryTotals()
	if len(totals) > 0 {
		top := slices.MaxFunc(totals, func(x, y transaction.CategoryTotal) int { return x.Amount.Cmp(y.Amount) })

		share := money.Percent(top.Amount, l.TotalExpense())
		if share.GreaterThan(tipCategoryShare) {
			fmt.Fprintf(&b, "- Your largest expense is '%s' (%s). Look for ways to trim it.\n", top.Category, money.FormatPercent(share))
		}
	}

	b.WriteString("- The 50/30/20 rule: 50% needs, 30% wants, 20% savings.\n")
	b.WriteString("- Review your expenses weekly to stay in control.")

	return b.String()
}

func (c *Chat) summary(l transaction.Ledger) string {
	var b strings.Builder

	h := c.analyzer.HealthSummary(l)

	b.WriteString("QUICK SUMMARY\n\n")
	writeTotals(&b, l, h)

	trend := "needs attention"
	if l.Balance().IsPositive() {
		trend = "positive"
	}

	fmt.Fprintf(&b, "\nTrend: %s", trend)

	return b.String()
}
