package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/balancea/internal/category"
	"github.com/MrJamesThe3rd/balancea/internal/matching"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
	txStateConfirmDelete
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	cat := faintStyle.Render("[" + i.tx.Category + "]")
	return fmt.Sprintf("%s  %12s  %s  %s", FormatDate(i.tx.Date), FormatSigned(i.tx), cat, i.tx.Description)
}

func (i txItem) Description() string { return string(i.tx.Type) }
func (i txItem) FilterValue() string { return i.tx.Description + " " + i.tx.Category }

// txForm holds the values bound to the edit form.
type txForm struct {
	date        string
	description string
	amount      string
	kind        transaction.Type
	category    string
	confirm     bool
}

func (f *txForm) params() (transaction.CreateParams, error) {
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(f.date))
	if err != nil {
		return transaction.CreateParams{}, errors.New("date must be YYYY-MM-DD")
	}

	amount, err := money.ParsePositive(f.amount)
	if err != nil {
		return transaction.CreateParams{}, err
	}

	return transaction.CreateParams{
		Date:        date,
		Description: f.description,
		Amount:      amount,
		Type:        f.kind,
		Category:    f.category,
	}, nil
}

type TransactionsModel struct {
	CommonModel
	txService       *transaction.Service
	categoryService *category.Service
	matchingService *matching.Service

	state           txState
	timeframePicker TimeframePicker
	list            list.Model
	form            *huh.Form
	values          *txForm
	txs             []*transaction.Transaction
	selectedTx      *transaction.Transaction

	filter  transaction.ListFilter
	label   string
	loading bool
	status  string
}

func NewTransactionsModel(txSvc *transaction.Service, catSvc *category.Service, matchSvc *matching.Service) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return TransactionsModel{
		txService:       txSvc,
		categoryService: catSvc,
		matchingService: matchSvc,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		list:            l,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | Enter: edit | n: new | x: delete | t: timeframe | /: filter"
	case txStateEditing, txStateConfirmDelete:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.filter = msg.Filter
		m.label = msg.Label
		m.loading = true
		m.state = txStateList

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.refreshListItems()

		if len(msg.txs) == 0 {
			m.status = "No transactions in " + m.label + "."
		}

		return m, nil

	case saveTxResultMsg:
		m.state = txStateList
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = msg.status

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateEditing, txStateConfirmDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "enter":
			if selected, ok := m.list.SelectedItem().(txItem); ok {
				return m.startEditing(selected.tx)
			}

			return m, nil
		case "n":
			return m.startEditing(nil)
		case "x":
			return m.startDelete()
		case "t":
			m.timeframePicker.Reset()
			m.state = txStateTimeframe

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

// startEditing opens the form for tx, or for a new entry dated today when tx is nil.
func (m TransactionsModel) startEditing(tx *transaction.Transaction) (tea.Model, tea.Cmd) {
	m.selectedTx = tx
	m.values = &txForm{date: FormatDate(time.Now()), kind: transaction.TypeExpense}

	if tx != nil {
		m.values = &txForm{
			date:        FormatDate(tx.Date),
			description: tx.Description,
			amount:      tx.Amount.StringFixed(2),
			kind:        tx.Type,
			category:    tx.Category,
		}
	}

	v := m.values
	cats := m.categoryService

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&v.date).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
					if err != nil {
						return errors.New("date must be YYYY-MM-DD")
					}

					return nil
				}),
			huh.NewInput().Title("Description").Value(&v.description),
			huh.NewInput().Title("Amount").Placeholder("0.00").Value(&v.amount).
				Validate(func(s string) error {
					_, err := money.ParsePositive(s)
					return err
				}),
			huh.NewSelect[transaction.Type]().Title("Kind").
				Options(
					huh.NewOption("Expense", transaction.TypeExpense),
					huh.NewOption("Income", transaction.TypeIncome),
				).
				Value(&v.kind),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Category").
				OptionsFunc(func() []huh.Option[string] {
					return huh.NewOptions(cats.List(v.kind)...)
				}, &v.kind).
				Value(&v.category),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) startDelete() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return m, nil
	}

	m.selectedTx = selected.tx
	m.values = &txForm{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", selected.tx.Description)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.values.confirm),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateConfirmDelete

	return m, m.form.Init()
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == txStateConfirmDelete {
		return m, m.deleteTxCmd()
	}

	return m, m.saveTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		l := transaction.Ledger(m.txs)
		header := fmt.Sprintf("%s  |  Income %s  |  Expenses %s  |  Balance %s",
			accentStyle.Render(m.label),
			FormatAmount(l.TotalIncome()), FormatAmount(l.TotalExpense()), FormatAmount(l.Balance()))

		statusLine := ""
		if m.status != "" {
			statusLine = faintStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(header + "\n" + statusLine + m.list.View())

	case txStateEditing, txStateConfirmDelete:
		if m.form == nil {
			return ""
		}

		title := "New transaction"
		if m.selectedTx != nil {
			title = "Edit transaction " + faintStyle.Render(m.selectedTx.ID.String())
		}

		return lipgloss.NewStyle().Padding(1).Render(title + "\n\n" + m.form.View())
	}

	return ""
}

func (m *TransactionsModel) refreshListItems() {
	items := make([]list.Item, len(m.txs))
	for i, tx := range m.txs {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	filter := m.filter
	txSvc := m.txService

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		txs, err := txSvc.List(ctx, filter)

		return loadTxsMsg{txs: txs, err: err}
	}
}

type saveTxResultMsg struct {
	status string
	err    error
}

func (m TransactionsModel) saveTxCmd() tea.Cmd {
	tx := m.selectedTx
	values := *m.values
	txSvc := m.txService
	matchSvc := m.matchingService

	return func() tea.Msg {
		params, err := values.params()
		if err != nil {
			return saveTxResultMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		if tx == nil {
			created, err := txSvc.Create(ctx, params)
			if err != nil {
				return saveTxResultMsg{err: err}
			}

			return saveTxResultMsg{status: "Added " + created.Description + "."}
		}

		recategorized := tx.Category != params.Category

		updated, err := txSvc.Update(ctx, tx.ID, params)
		if err != nil {
			return saveTxResultMsg{err: err}
		}

		// A manual category change teaches the importer.
		if recategorized && matchSvc != nil {
			_ = matchSvc.Learn(ctx, updated.Description, updated.Category)
		}

		return saveTxResultMsg{status: "Saved."}
	}
}

func (m TransactionsModel) deleteTxCmd() tea.Cmd {
	tx := m.selectedTx
	confirmed := m.values.confirm
	txSvc := m.txService

	return func() tea.Msg {
		if !confirmed {
			return saveTxResultMsg{status: "Kept."}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		if err := txSvc.Delete(ctx, tx.ID); err != nil {
			return saveTxResultMsg{err: err}
		}

		return saveTxResultMsg{status: "Deleted."}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 1 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = accentStyle.Bold(true).Render("> " + title)
	} else {
		title = "  " + title
	}

	fmt.Fprintln(w, title)
}
