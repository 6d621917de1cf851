package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/balancea/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/balancea/internal/app"
	"github.com/MrJamesThe3rd/balancea/internal/config"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
)

type menuItem struct {
	key   string
	label string
	open  func(a *app.App) view.View
}

var menu = []menuItem{
	{"1", "Transactions", func(a *app.App) view.View {
		return view.NewTransactionsModel(a.Transactions, a.Categories, a.Matching)
	}},
	{"2", "Review Categories", func(a *app.App) view.View {
		return view.NewReviewModel(a.Transactions, a.Categories, a.Matching)
	}},
	{"3", "Budgets", func(a *app.App) view.View {
		return view.NewBudgetsModel(a.Budgets)
	}},
	{"4", "Savings Goals", func(a *app.App) view.View {
		return view.NewGoalsModel(a.Goals)
	}},
	{"5", "Alerts & Health", func(a *app.App) view.View {
		return view.NewAlertsModel(a.Transactions, a.Analyzer, a.Budgets, a.Goals)
	}},
	{"6", "Assistant", func(a *app.App) view.View {
		return view.NewChatModel(a.Chat)
	}},
	{"7", "Import", func(a *app.App) view.View {
		return view.NewImportModel(a.Transactions, a.Importer)
	}},
	{"8", "Export", func(a *app.App) view.View {
		return view.NewExportModel(a.Export)
	}},
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type model struct {
	app *app.App

	// active is nil while the menu is shown.
	active view.View
	size   *tea.WindowSizeMsg
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = &msg
	case view.BackMsg:
		m.active = nil
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.active == nil {
			return m.updateMenu(msg)
		}
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m, tea.Quit
	}

	for _, item := range menu {
		if item.key != msg.String() {
			continue
		}

		m.active = item.open(m.app)
		cmds := []tea.Cmd{m.active.Init()}

		if m.size != nil {
			size := *m.size
			cmds = append(cmds, func() tea.Msg { return size })
		}

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m model) View() string {
	if m.active != nil {
		header := titleStyle.Render("Balancea › " + m.active.Title())
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Padding(1, 2, 0).Render(header),
			m.active.View(),
			lipgloss.NewStyle().Padding(0, 2).Render(helpStyle.Render(m.active.ShortHelp())),
		)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Balancea") + "\n")
	b.WriteString(helpStyle.Render("Personal finance tracker") + "\n\n")

	for _, item := range menu {
		fmt.Fprintf(&b, "%s. %s\n", item.key, item.label)
	}

	b.WriteString("\nq. Quit")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

// openLog sends logs to a file in the data directory since the terminal
// belongs to the UI.
func openLog(cfg *config.Config) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return logger.Nop(), func() {}, err
	}

	f, err := os.OpenFile(filepath.Join(cfg.Storage.DataDir, "balancea.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return logger.Nop(), func() {}, err
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Out: f})

	return log, func() { _ = f.Close() }, nil
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, closeLog, err := openLog(cfg)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer closeLog()

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return err
	}
	defer a.Close()

	log.Info().Str("backend", cfg.Storage.Backend).Msg("tui started")

	if _, err := tea.NewProgram(model{app: a}, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "balancea:", err)
		os.Exit(1)
	}
}
