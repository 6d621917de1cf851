package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/balancea/internal/export"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStatePath
	exportStateExporting
	exportStateResult
)

type exportForm struct {
	path string
}

type ExportModel struct {
	CommonModel
	exportService *export.Service

	state           exportState
	err             error
	timeframePicker TimeframePicker

	label   string
	filter  transaction.ListFilter
	form    *huh.Form
	values  *exportForm
	spinner spinner.Model
	result  exportResultMsg
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return ExportModel{
		exportService:   svc,
		state:           exportStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		values:          &exportForm{path: "./exports"},
		spinner:         s,
	}
}

func (m ExportModel) Title() string { return "Export" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.label = tfMsg.Label
		m.filter = tfMsg.Filter
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Description("Created if it does not exist").
				Placeholder("./exports").
				Value(&m.values.path),
		)).WithWidth(50).WithShowHelp(false)
		m.state = exportStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd

	case exportStatePath:
		return m.updatePath(msg)

	case exportStateExporting:
		if result, ok := msg.(exportResultMsg); ok {
			m.state = exportStateResult
			m.result = result

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = exportStateTimeframe
		m.timeframePicker.Reset()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting

	return m, tea.Batch(m.spinner.Tick, m.exportCmd())
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	case exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Writing export files...")
	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	r := m.result
	if r.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", r.err)))
	}

	header := successStyle.Bold(true).Render(fmt.Sprintf("Exported %d transactions (%s)", r.count, m.label))

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			faintStyle.Render(r.csvPath),
			faintStyle.Render(r.reportPath),
			"",
			strings.Join(r.lines, "\n"),
		),
	)
}

type exportResultMsg struct {
	count      int
	csvPath    string
	reportPath string
	lines      []string
	err        error
}

func (m ExportModel) exportCmd() tea.Cmd {
	svc := m.exportService
	filter := m.filter
	dir := strings.TrimSpace(m.values.path)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating output directory: %w", err)}
		}

		stamp := time.Now().Format("20060102_150405")
		out := exportResultMsg{
			csvPath:    filepath.Join(dir, "transactions_"+stamp+".csv"),
			reportPath: filepath.Join(dir, "report_"+stamp+".txt"),
		}

		count, err := writeFile(out.csvPath, func(f *os.File) (int, error) {
			return svc.WriteCSV(ctx, f, filter)
		})
		if err != nil {
			return exportResultMsg{err: err}
		}

		report, err := svc.Report(ctx, filter)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if _, err := writeFile(out.reportPath, func(f *os.File) (int, error) {
			return 0, report.WriteTo(f)
		}); err != nil {
			return exportResultMsg{err: err}
		}

		out.count = count
		out.lines = report.Lines()

		return out
	}
}

func writeFile(path string, fn func(f *os.File) (int, error)) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	n, err := fn(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return n, err
}
