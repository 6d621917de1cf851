package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/balancea/internal/importer"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service

	state        importState
	filePicker   filepicker.Model
	format       importer.Format
	formats      []importer.Format
	formatCursor int

	result       *transaction.ImportResult
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		filePicker:    fp,
		formats:       importer.Formats(),
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Space: toggle | a: all | n: none | Enter: import selected | Esc: done"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateFormatSelect:
			return m.updateFormatSelect(msg)
		case importStateConflicts:
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.result = msg.result
		m.status = summarizeImport(msg.result)

		if len(msg.result.Skipped) == 0 {
			m.state = importStateResult
			return m, nil
		}

		m.state = importStateConflicts
		m.selected = make(map[int]bool)

		items := make([]list.Item, len(msg.result.Skipped))
		for i, c := range msg.result.Skipped {
			items[i] = conflictItem{conflict: c, index: i}
		}

		m.conflictList = list.New(items, conflictDelegate{selected: m.selected}, 80, 20)
		m.conflictList.Title = "Skipped as duplicates (select to import anyway)"
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case forceImportMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status += fmt.Sprintf("\nError: %v", msg.err)

			return m, nil
		}

		m.status += fmt.Sprintf("\nForced %d duplicates.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateFormatSelect
		return m, nil
	case importStateConflicts:
		m.state = importStateResult
		return m, nil
	case importStateResult:
		m.state = importStateFormatSelect
		m.err = nil
		m.status = ""
		m.result = nil

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.formatCursor = max(m.formatCursor-1, 0)
	case tea.KeyDown:
		m.formatCursor = min(m.formatCursor+1, len(m.formats)-1)
	case tea.KeyEnter:
		m.format = m.formats[m.formatCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.result.Skipped {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		clear(m.selected)
		return m, nil
	case "enter":
		return m, m.forceCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		return m.viewFormatSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.format, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.status + "\n\n" + m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	var b strings.Builder

	b.WriteString("Select file format:\n\n")

	for i, f := range m.formats {
		cursor := " "
		if i == m.formatCursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, f)
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m ImportModel) viewResult() string {
	style := successStyle
	if m.err != nil {
		style = errorStyle
	}

	var b strings.Builder

	b.WriteString(style.Render(m.status))

	if m.result != nil && len(m.result.Invalid) > 0 {
		b.WriteString("\n\nRejected rows:\n")

		for _, row := range m.result.Invalid {
			fmt.Fprintf(&b, "  %s  %s: %v\n", FormatDate(row.Params.Date), row.Params.Description, row.Err)
		}
	}

	b.WriteString("\n\n(Esc to go back)")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func summarizeImport(r *transaction.ImportResult) string {
	return fmt.Sprintf("Imported %d, skipped %d duplicates, rejected %d invalid.",
		len(r.Imported), len(r.Skipped), len(r.Invalid))
}

// Messages

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

type forceImportMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	svc := m.importService
	format := m.format

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := svc.Import(ctx, format, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

// forceCmd creates the selected skipped rows one by one, bypassing the
// duplicate check.
func (m ImportModel) forceCmd() tea.Cmd {
	svc := m.txService

	var params []transaction.CreateParams

	for i, c := range m.result.Skipped {
		if m.selected[i] {
			params = append(params, c.Incoming)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		for i, p := range params {
			if _, err := svc.Create(ctx, p); err != nil {
				return forceImportMsg{count: i, err: err}
			}
		}

		return forceImportMsg{count: len(params)}
	}
}

type conflictItem struct {
	conflict transaction.Conflict
	index    int
}

func (i conflictItem) Title() string       { return i.conflict.Incoming.Description }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return i.conflict.Incoming.Description }

type conflictDelegate struct {
	selected map[int]bool
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	fmt.Fprintf(w, "%s%s %s  %s  %s  %s\n      Existing: %s  %s  %s [%s]\n",
		cursor, checkbox,
		FormatDate(incoming.Date),
		FormatAmount(incoming.Amount),
		incoming.Type,
		incoming.Description,
		FormatDate(existing.Date),
		FormatAmount(existing.Amount),
		existing.Description,
		existing.Category,
	)
}
