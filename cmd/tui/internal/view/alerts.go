package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/analyzer"
	"github.com/MrJamesThe3rd/balancea/internal/budget"
	"github.com/MrJamesThe3rd/balancea/internal/goal"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

// AlertsModel is the dashboard: health score plus every active alert.
type AlertsModel struct {
	CommonModel
	txService     *transaction.Service
	analyzer      *analyzer.Analyzer
	budgetService *budget.Service
	goalService   *goal.Service

	viewport viewport.Model
	ready    bool
	loading  bool
	data     dashboardMsg
}

func NewAlertsModel(tx *transaction.Service, a *analyzer.Analyzer, b *budget.Service, g *goal.Service) AlertsModel {
	return AlertsModel{
		txService:     tx,
		analyzer:      a,
		budgetService: b,
		goalService:   g,
		loading:       true,
	}
}

func (m AlertsModel) Title() string { return "Alerts & Health" }

func (m AlertsModel) ShortHelp() string { return "Esc: back | r: refresh | ↑/↓: scroll" }

func (m AlertsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AlertsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - 8
		}

		m.viewport.SetContent(m.render())

		return m, nil

	case dashboardMsg:
		m.loading = false
		m.data = msg

		if !m.ready {
			m.viewport = viewport.New(80, 20)
			m.ready = true
		}

		m.viewport.SetContent(m.render())

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m AlertsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Analyzing...")
	}

	if m.data.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.data.err)))
	}

	return lipgloss.NewStyle().Padding(1).Render(m.viewport.View())
}

func (m AlertsModel) render() string {
	d := m.data
	if d.err != nil {
		return ""
	}

	var b strings.Builder

	health := fmt.Sprintf("Financial health: %s (%d/100)\nSavings rate: %s\nBalance: %s",
		d.health.Level, d.health.Score, money.FormatPercent(d.health.SavingsRate), money.Format(d.balance))
	b.WriteString(panelStyle.Render(health) + "\n\n")

	section := func(title string, alerts []alert.Alert) {
		b.WriteString(accentStyle.Render(title) + "\n")

		if len(alerts) == 0 {
			b.WriteString(faintStyle.Render("  Nothing to report") + "\n\n")
			return
		}

		for _, a := range alerts {
			fmt.Fprintf(&b, "%s %s\n  %s\n", alertStyle(a.Kind), a.Title, faintStyle.Render(a.Message))
		}

		b.WriteString("\n")
	}

	section("Spending", d.ledger)
	section("Budgets", d.budgets)
	section("Goals", d.goals)

	return b.String()
}

type dashboardMsg struct {
	health  analyzer.HealthScore
	balance decimal.Decimal
	ledger  []alert.Alert
	budgets []alert.Alert
	goals   []alert.Alert
	err     error
}

func (m AlertsModel) loadCmd() tea.Cmd {
	txSvc, a, budgetSvc, goalSvc := m.txService, m.analyzer, m.budgetService, m.goalService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		l, err := txSvc.Snapshot(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}

		budgets, err := budgetSvc.Alerts(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}

		goals, err := goalSvc.AllAlerts(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}

		return dashboardMsg{
			health:  a.HealthSummary(l),
			balance: l.Balance(),
			ledger:  a.AnalyzeAll(l),
			budgets: budgets,
			goals:   goals,
		}
	}
}
