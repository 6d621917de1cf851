package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/balancea/internal/category"
	"github.com/MrJamesThe3rd/balancea/internal/matching"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

// ReviewModel walks through transactions left in a fallback category and
// lets the user assign a real one. Every answer is learned as a mapping.
type ReviewModel struct {
	CommonModel
	txService       *transaction.Service
	categoryService *category.Service
	matchingService *matching.Service

	queue     []*transaction.Transaction
	currentTx *transaction.Transaction
	form      *huh.Form

	answer *reviewAnswer

	loading    bool
	status     string
	totalCount int
	reviewed   int
}

func NewReviewModel(txSvc *transaction.Service, catSvc *category.Service, matchSvc *matching.Service) ReviewModel {
	return ReviewModel{
		txService:       txSvc,
		categoryService: catSvc,
		matchingService: matchSvc,
		loading:         true,
	}
}

func (m ReviewModel) Title() string { return "Review Categories" }

func (m ReviewModel) ShortHelp() string {
	return "Enter: save & next | s: skip | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadQueueCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "s":
			if m.currentTx != nil && m.form != nil && m.form.State == huh.StateNormal {
				return m, m.nextTx()
			}
		}

	case loadQueueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.totalCount = len(m.queue)

		if m.totalCount == 0 {
			m.status = "Nothing to review: every transaction has a category."
			return m, nil
		}

		return m, m.nextTx()

	case reviewSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.reviewed++

		return m, m.nextTx()
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.saveCmd()
	}

	return m, cmd
}

// nextTx pops the queue and builds the form for the new head.
func (m *ReviewModel) nextTx() tea.Cmd {
	if len(m.queue) == 0 {
		m.currentTx = nil
		m.form = nil
		m.status = fmt.Sprintf("All done! %d of %d recategorised.", m.reviewed, m.totalCount)

		return nil
	}

	tx := m.queue[0]
	m.queue = m.queue[1:]
	m.currentTx = tx
	a := &reviewAnswer{category: tx.Category, pattern: tx.Description}
	m.answer = a

	ctx, cancel := StoreCtx()
	defer cancel()

	if suggested, err := m.matchingService.Suggest(ctx, tx.Description); err == nil && suggested != "" &&
		m.categoryService.Valid(tx.Type, suggested) {
		a.category = suggested
	}

	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(m.categoryService.List(tx.Type)...)...).
				Value(&a.category),
			huh.NewInput().
				Title("Remember for descriptions containing").
				Value(&a.pattern),
		),
	).WithWidth(50).WithShowHelp(false)

	return m.form.Init()
}

func (m ReviewModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.currentTx == nil || m.form == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to go back)")
	}

	info := panelStyle.Render(fmt.Sprintf("%s  %s  %s\n%s",
		FormatDate(m.currentTx.Date),
		m.currentTx.Type,
		FormatAmount(m.currentTx.Amount),
		m.currentTx.Description,
	))

	return lipgloss.NewStyle().Padding(2).Render(
		faintStyle.Render(m.status) + "\n\n" + info + "\n\n" + m.form.View(),
	)
}

type reviewAnswer struct {
	category string
	pattern  string
}

type loadQueueMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ReviewModel) loadQueueCmd() tea.Cmd {
	txSvc := m.txService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		txs, err := txSvc.List(ctx, transaction.ListFilter{})
		if err != nil {
			return loadQueueMsg{err: err}
		}

		var queue []*transaction.Transaction

		for _, t := range txs {
			if t.Category == "" || t.Category == category.Fallback(t.Type) {
				queue = append(queue, t)
			}
		}

		return loadQueueMsg{txs: queue}
	}
}

type reviewSavedMsg struct {
	err error
}

func (m ReviewModel) saveCmd() tea.Cmd {
	tx := m.currentTx
	cat := m.answer.category
	pattern := m.answer.pattern
	txSvc := m.txService
	matchSvc := m.matchingService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if cat == tx.Category {
			return reviewSavedMsg{}
		}

		_, err := txSvc.Update(ctx, tx.ID, transaction.CreateParams{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        tx.Type,
			Category:    cat,
		})
		if err != nil {
			return reviewSavedMsg{err: err}
		}

		if pattern != "" {
			err = matchSvc.Learn(ctx, pattern, cat)
		}

		return reviewSavedMsg{err: err}
	}
}
