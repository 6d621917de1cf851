package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/balancea/internal/goal"
	"github.com/MrJamesThe3rd/balancea/internal/money"
)

type goalAction int

const (
	goalActionNone goalAction = iota
	goalActionCreate
	goalActionEdit
	goalActionContribute
	goalActionSetAmount
)

type goalForm struct {
	name        string
	target      string
	deadline    string
	description string
	amount      string
}

type GoalsModel struct {
	CommonModel
	goalService *goal.Service

	table  table.Model
	bar    progress.Model
	goals  []*goal.Goal
	sum    *goal.Summary
	form   *huh.Form
	values *goalForm
	action goalAction

	loading bool
	status  string
	err     error
}

func NewGoalsModel(svc *goal.Service) GoalsModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Goal", Width: 22},
			{Title: "Saved", Width: 12},
			{Title: "Target", Width: 12},
			{Title: "Progress", Width: 9},
			{Title: "Deadline", Width: 11},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return GoalsModel{
		goalService: svc,
		table:       t,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		loading:     true,
	}
}

func (m GoalsModel) Title() string { return "Savings Goals" }

func (m GoalsModel) ShortHelp() string {
	if m.form != nil {
		return "Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | c: contribute | s: set amount | x: delete"
}

func (m GoalsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m GoalsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadGoalsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.goals = msg.goals
			m.sum = msg.sum
			m.refreshTable()
		}

		return m, nil

	case goalSavedMsg:
		m.form = nil
		m.action = goalActionNone
		m.table.Focus()

		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.openForm(goalActionCreate)
		case "e", "enter":
			return m.openForm(goalActionEdit)
		case "c":
			return m.openForm(goalActionContribute)
		case "s":
			return m.openForm(goalActionSetAmount)
		case "x":
			if g := m.selected(); g != nil {
				return m, m.deleteCmd(g)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m GoalsModel) selected() *goal.Goal {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.goals) {
		return nil
	}

	return m.goals[idx]
}

func (m GoalsModel) openForm(action goalAction) (tea.Model, tea.Cmd) {
	g := m.selected()
	if action != goalActionCreate && g == nil {
		return m, nil
	}

	v := &goalForm{}
	m.values = v
	m.action = action

	amountInput := func(title, desc string) huh.Field {
		return huh.NewInput().Title(title).Description(desc).Placeholder("0.00").Value(&v.amount).
			Validate(func(s string) error {
				_, err := money.Parse(s)
				return err
			})
	}

	switch action {
	case goalActionCreate, goalActionEdit:
		if g != nil && action == goalActionEdit {
			v.name, v.target, v.description = g.Name, g.Target.StringFixed(2), g.Description
			if g.Deadline != nil {
				v.deadline = FormatDate(*g.Deadline)
			}
		}

		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&v.name),
			huh.NewInput().Title("Target").Placeholder("0.00").Value(&v.target).
				Validate(func(s string) error {
					_, err := money.ParsePositive(s)
					return err
				}),
			huh.NewInput().Title("Deadline (optional)").Placeholder("YYYY-MM-DD").Value(&v.deadline).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return errors.New("deadline must be YYYY-MM-DD")
					}

					return nil
				}),
			huh.NewText().Title("Description").Value(&v.description),
		))
	case goalActionContribute:
		m.form = huh.NewForm(huh.NewGroup(amountInput("Contribution", "Use a negative amount to withdraw")))
	case goalActionSetAmount:
		v.amount = g.Current.StringFixed(2)
		m.form = huh.NewForm(huh.NewGroup(amountInput("Saved amount", "Replaces the current amount")))
	}

	m.form = m.form.WithWidth(50).WithShowHelp(false)
	m.table.Blur()

	return m, m.form.Init()
}

func (m GoalsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.action = goalActionNone
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

	return m, m.saveCmd(m.selected())
}

func (m GoalsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading goals...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	var b strings.Builder

	if m.status != "" {
		b.WriteString(faintStyle.Render(m.status) + "\n\n")
	}

	if m.sum != nil && m.sum.Total > 0 {
		fmt.Fprintf(&b, "%d goals (%d active, %d completed)  |  %s of %s saved\n\n",
			m.sum.Total, m.sum.Active, m.sum.Completed,
			money.Format(m.sum.CurrentTotal), money.Format(m.sum.TargetTotal))
	} else {
		b.WriteString("No goals yet. Press n to create one.\n\n")
	}

	b.WriteString(m.table.View())

	if g := m.selected(); g != nil {
		pct, _ := goal.Progress(g).Div(decimal.NewFromInt(100)).Float64()
		fmt.Fprintf(&b, "\n\n%s\n%s\n", g.Name, m.bar.ViewAs(pct))

		for _, a := range goal.Alerts(g, time.Now()) {
			fmt.Fprintf(&b, "%s %s\n", alertStyle(a.Kind), a.Message)
		}
	}

	content := b.String()

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *GoalsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.goals))

	for _, g := range m.goals {
		deadline := "-"
		if g.Deadline != nil {
			deadline = FormatDate(*g.Deadline)
		}

		state := "active"
		if g.Completed {
			state = "completed"
		}

		rows = append(rows, table.Row{
			g.Name,
			money.Format(g.Current),
			money.Format(g.Target),
			money.FormatPercent(goal.Progress(g)),
			deadline,
			state,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadGoalsMsg struct {
	goals []*goal.Goal
	sum   *goal.Summary
	err   error
}

func (m GoalsModel) loadCmd() tea.Cmd {
	svc := m.goalService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		goals, err := svc.List(ctx)
		if err != nil {
			return loadGoalsMsg{err: err}
		}

		sum, err := svc.Summary(ctx)

		return loadGoalsMsg{goals: goals, sum: sum, err: err}
	}
}

type goalSavedMsg struct {
	status string
	err    error
}

func (m GoalsModel) saveCmd(g *goal.Goal) tea.Cmd {
	svc := m.goalService
	v := *m.values
	action := m.action

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		var (
			saved *goal.Goal
			err   error
		)

		switch action {
		case goalActionCreate, goalActionEdit:
			p, perr := v.params()
			if perr != nil {
				return goalSavedMsg{err: perr}
			}

			if action == goalActionCreate {
				saved, err = svc.Add(ctx, p)
			} else {
				saved, err = svc.Edit(ctx, g.ID, p)
			}
		case goalActionContribute, goalActionSetAmount:
			amount, perr := money.Parse(v.amount)
			if perr != nil {
				return goalSavedMsg{err: perr}
			}

			if action == goalActionContribute {
				saved, err = svc.Contribute(ctx, g.ID, amount)
			} else {
				saved, err = svc.SetAmount(ctx, g.ID, amount)
			}
		}

		if err != nil {
			return goalSavedMsg{err: err}
		}

		status := "Saved " + saved.Name + "."
		if saved.Completed {
			status = "Goal '" + saved.Name + "' completed!"
		}

		return goalSavedMsg{status: status}
	}
}

func (f goalForm) params() (goal.Params, error) {
	target, err := money.ParsePositive(f.target)
	if err != nil {
		return goal.Params{}, err
	}

	p := goal.Params{Name: f.name, Target: target, Description: f.description}

	if s := strings.TrimSpace(f.deadline); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return goal.Params{}, errors.New("deadline must be YYYY-MM-DD")
		}

		p.Deadline = new(d)
	}

	return p, nil
}

func (m GoalsModel) deleteCmd(g *goal.Goal) tea.Cmd {
	svc := m.goalService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := svc.Delete(ctx, g.ID); err != nil {
			return goalSavedMsg{err: err}
		}

		return goalSavedMsg{status: "Deleted " + g.Name + "."}
	}
}
