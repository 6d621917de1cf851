package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/balancea/internal/alert"
	"github.com/MrJamesThe3rd/balancea/internal/budget"
	"github.com/MrJamesThe3rd/balancea/internal/money"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateEdit
)

type BudgetsModel struct {
	CommonModel
	budgetService *budget.Service

	state    budgetState
	table    table.Model
	statuses []*budget.Status
	summary  *budget.Summary
	alerts   []alert.Alert
	form     *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings live behind a pointer so they survive model copies.
	values  *budgetForm
	editing bool
}

type budgetForm struct {
	category string
	amount   string
}

func NewBudgetsModel(svc *budget.Service) BudgetsModel {
	columns := []table.Column{
		{Title: "Category", Width: 16},
		{Title: "Budget", Width: 12},
		{Title: "Spent", Width: 12},
		{Title: "Remaining", Width: 12},
		{Title: "Usage", Width: 8},
		{Title: "Status", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BudgetsModel{
		budgetService: svc,
		table:         t,
		loading:       true,
	}
}

func (m BudgetsModel) Title() string { return "Budgets" }

func (m BudgetsModel) ShortHelp() string {
	if m.state == budgetStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | x: remove | m: new month | r: refresh"
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.statuses = msg.statuses
		m.summary = msg.summary
		m.alerts = msg.alerts
		m.refreshTable()

		return m, nil

	case budgetSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-16, 5))
		return m, nil
	}

	switch m.state {
	case budgetStateBrowse:
		return m.updateBrowse(msg)
	case budgetStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m BudgetsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterEditMode(nil)
		case "e", "enter":
			if st := m.selected(); st != nil {
				return m.enterEditMode(st)
			}

			return m, nil
		case "x":
			if st := m.selected(); st != nil {
				return m, m.removeCmd(st.Budget.Category)
			}

			return m, nil
		case "m":
			return m, m.resetMonthCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetsModel) selected() *budget.Status {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.statuses) {
		return nil
	}

	return m.statuses[idx]
}

// enterEditMode opens the amount form. A nil status creates a new budget for
// one of the categories that has none yet.
func (m BudgetsModel) enterEditMode(st *budget.Status) (tea.Model, tea.Cmd) {
	ctx, cancel := StoreCtx()
	defer cancel()

	var fields []huh.Field

	m.editing = st != nil
	v := &budgetForm{}
	m.values = v

	if st != nil {
		v.category = st.Budget.Category
		v.amount = st.Budget.Amount.StringFixed(2)
	} else {
		names, err := m.budgetService.Unbudgeted(ctx)
		if err != nil || len(names) == 0 {
			m.status = "Every expense category already has a budget."
			return m, nil
		}

		v.category = names[0]
		fields = append(fields, huh.NewSelect[string]().
			Title("Category").
			Options(huh.NewOptions(names...)...).
			Value(&v.category))
	}

	description := ""
	if amount, ok, err := m.budgetService.Suggest(ctx, v.category); err == nil && ok {
		description = "Suggested from recent spending: " + money.Format(amount)
		if v.amount == "" {
			v.amount = amount.StringFixed(2)
		}
	}

	fields = append(fields, huh.NewInput().
		Title("Monthly amount").
		Description(description).
		Placeholder("0.00").
		Value(&v.amount).
		Validate(func(s string) error {
			_, err := money.ParsePositive(s)
			return err
		}))

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = budgetStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m BudgetsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := "No budgets yet. Press n to create one."
	if m.summary != nil && m.summary.Count > 0 {
		header = fmt.Sprintf("This month: %s of %s spent (%s)  |  %d over budget",
			money.Format(m.summary.TotalSpent),
			money.Format(m.summary.TotalBudgeted),
			money.FormatPercent(m.summary.Usage),
			m.summary.Exceeded,
		)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	var alerts strings.Builder
	for _, a := range m.alerts {
		fmt.Fprintf(&alerts, "%s %s\n", alertStyle(a.Kind), a.Message)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		alerts.String(),
	)

	if m.state == budgetStateEdit && m.form != nil {
		title := "New budget"
		if m.editing {
			title = "Budget for " + m.values.category
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.statuses))
	for _, st := range m.statuses {
		rows = append(rows, table.Row{
			st.Budget.Category,
			money.Format(st.Budget.Amount),
			money.Format(st.Spent),
			money.Format(st.Remaining),
			money.FormatPercent(st.Usage),
			st.Level.String(),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadBudgetsMsg struct {
	statuses []*budget.Status
	summary  *budget.Summary
	alerts   []alert.Alert
	err      error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	svc := m.budgetService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		statuses, err := svc.Statuses(ctx)
		if err != nil {
			return loadBudgetsMsg{err: err}
		}

		summary, err := svc.Summary(ctx)
		if err != nil {
			return loadBudgetsMsg{err: err}
		}

		alerts, err := svc.Alerts(ctx)

		return loadBudgetsMsg{statuses: statuses, summary: summary, alerts: alerts, err: err}
	}
}

type budgetSaveMsg struct {
	status string
	err    error
}

func (m BudgetsModel) saveCmd() tea.Cmd {
	svc := m.budgetService
	category := m.values.category
	raw := m.values.amount

	return func() tea.Msg {
		amount, err := money.ParsePositive(raw)
		if err != nil {
			return budgetSaveMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		if _, err := svc.Set(ctx, category, amount); err != nil {
			return budgetSaveMsg{err: err}
		}

		return budgetSaveMsg{status: "Budget for " + category + " set to " + money.Format(amount) + "."}
	}
}

func (m BudgetsModel) removeCmd(category string) tea.Cmd {
	svc := m.budgetService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := svc.Remove(ctx, category); err != nil {
			return budgetSaveMsg{err: err}
		}

		return budgetSaveMsg{status: "Removed budget for " + category + "."}
	}
}

func (m BudgetsModel) resetMonthCmd() tea.Cmd {
	svc := m.budgetService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		n, err := svc.ResetMonth(ctx)
		if err != nil {
			return budgetSaveMsg{err: err}
		}

		return budgetSaveMsg{status: fmt.Sprintf("Moved %d budgets to the current month.", n)}
	}
}
