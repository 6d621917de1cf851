package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/balancea/internal/assistant"
)

// replyTimeout bounds a single model round trip from the TUI.
const replyTimeout = 60 * time.Second

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

type ChatModel struct {
	CommonModel
	chat *assistant.Chat

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// lines includes command replies, which the chat history leaves out.
	lines   []assistant.Message
	waiting bool
	online  *assistant.Reply
	notice  string
	width   int
}

func NewChatModel(chat *assistant.Chat) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your finances, or type /help"
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return ChatModel{
		chat:     chat,
		input:    ti,
		viewport: viewport.New(80, 16),
		spinner:  s,
		width:    80,
	}
}

func (m ChatModel) Title() string { return "Assistant" }

func (m ChatModel) ShortHelp() string {
	return "Esc: back | Enter: send | Ctrl+L: clear history"
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.healthCmd())
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width - 4
		m.viewport.Width = m.width
		m.viewport.Height = max(msg.Height-12, 5)
		m.input.Width = max(m.width-4, 20)
		m.viewport.SetContent(m.transcript())

		return m, nil

	case chatHealthMsg:
		reply := assistant.Reply(msg)
		m.online = &reply

		return m, nil

	case chatReplyMsg:
		m.waiting = false
		m.notice = ""

		if msg.OK {
			m.lines = append(m.lines, assistant.Message{Role: assistant.RoleAssistant, Text: msg.Text})
		} else {
			m.notice = msg.Err
			if msg.Hint != "" {
				m.notice += " (" + msg.Hint + ")"
			}
		}

		m.viewport.SetContent(m.transcript())
		m.viewport.GotoBottom()

		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyCtrlL:
			m.chat.ClearHistory()
			m.lines = nil
			m.notice = "History cleared."
			m.viewport.SetContent(m.transcript())

			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}

			m.input.Reset()
			m.waiting = true
			m.notice = ""
			m.lines = append(m.lines, assistant.Message{Role: assistant.RoleUser, Text: text})
			m.viewport.SetContent(m.transcript())
			m.viewport.GotoBottom()

			return m, tea.Batch(m.spinner.Tick, m.replyCmd(text))
		}
	}

	var cmds []tea.Cmd

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatModel) View() string {
	var b strings.Builder

	switch {
	case m.online == nil:
		b.WriteString(faintStyle.Render("Checking assistant..."))
	case m.online.OK:
		b.WriteString(successStyle.Render("● " + m.online.Text))
	default:
		b.WriteString(errorStyle.Render("● offline: " + m.online.Hint))
		b.WriteString(faintStyle.Render("  (commands still work)"))
	}

	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	switch {
	case m.waiting:
		b.WriteString(m.spinner.View() + " Thinking...\n")
	case m.notice != "":
		b.WriteString(accentStyle.Render(m.notice) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func (m ChatModel) transcript() string {
	if len(m.lines) == 0 {
		return faintStyle.Render("Commands: " + strings.Join(assistant.Commands(), ", "))
	}

	wrap := lipgloss.NewStyle().Width(max(m.width-2, 20))

	var b strings.Builder

	for _, msg := range m.lines {
		label := assistantStyle.Render("Assistant")
		if msg.Role == assistant.RoleUser {
			label = userStyle.Render("You")
		}

		fmt.Fprintf(&b, "%s\n%s\n\n", label, wrap.Render(msg.Text))
	}

	return b.String()
}

type chatReplyMsg assistant.Reply

type chatHealthMsg assistant.Reply

func (m ChatModel) replyCmd(text string) tea.Cmd {
	chat := m.chat

	return func() tea.Msg {
		ctx, cancel := contextWithTimeout(replyTimeout)
		defer cancel()

		return chatReplyMsg(chat.Reply(ctx, text))
	}
}

func (m ChatModel) healthCmd() tea.Cmd {
	chat := m.chat

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return chatHealthMsg(chat.Health(ctx))
	}
}
