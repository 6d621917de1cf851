package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

// Timeframe is a predefined or custom date range.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeLast30Days
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeLast30Days:
		return "Last 30 Days"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range returns the inclusive day range of t relative to now. ok is false for
// TimeframeAll and TimeframeCustom, which have no fixed range.
func (t Timeframe) Range(now time.Time) (start, end time.Time, ok bool) {
	today := transaction.DayOf(now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch t {
	case TimeframeThisMonth:
		return first, today, true
	case TimeframeLastMonth:
		return first.AddDate(0, -1, 0), first.AddDate(0, 0, -1), true
	case TimeframeLast30Days:
		return today.AddDate(0, 0, -29), today, true
	case TimeframeThisYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), today, true
	}

	return time.Time{}, time.Time{}, false
}

// TimeframeSelectedMsg is emitted when the user has picked a range.
type TimeframeSelectedMsg struct {
	Label  string
	Filter transaction.ListFilter
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker lets the user choose a date range for a listing.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	dateInput := func(prompt string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = "YYYY-MM-DD"
		ti.CharLimit = 10
		ti.Width = 12
		ti.Prompt = prompt

		return ti
	}

	return TimeframePicker{
		selected:   initial,
		now:        time.Now,
		startInput: dateInput("From: "),
		endInput:   dateInput("To:   "),
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)

	switch {
	case ok && m.state == timeframeStateSelect:
		return m.updateSelect(key)
	case ok && m.state == timeframeStateCustom:
		if next, cmd, handled := m.updateCustom(key); handled {
			return next, cmd
		}
	}

	if m.state != timeframeStateCustom {
		return m, nil
	}

	var c1, c2 tea.Cmd
	m.startInput, c1 = m.startInput.Update(msg)
	m.endInput, c2 = m.endInput.Update(msg)

	return m, tea.Batch(c1, c2)
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.selected = max(m.selected-1, TimeframeThisMonth)
	case tea.KeyDown:
		m.selected = min(m.selected+1, TimeframeCustom)
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		var filter transaction.ListFilter
		if start, end, ok := m.selected.Range(m.now()); ok {
			filter.StartDate, filter.EndDate = new(start), new(end)
		}

		label := m.selected.String()

		return m, func() tea.Msg { return TimeframeSelectedMsg{Label: label, Filter: filter} }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		start, err := time.Parse(time.DateOnly, strings.TrimSpace(m.startInput.Value()))
		if err != nil {
			m.err = fmt.Errorf("invalid start date (YYYY-MM-DD)")
			return m, nil, true
		}

		end, err := time.Parse(time.DateOnly, strings.TrimSpace(m.endInput.Value()))
		if err != nil {
			m.err = fmt.Errorf("invalid end date (YYYY-MM-DD)")
			return m, nil, true
		}

		if end.Before(start) {
			m.err = fmt.Errorf("end date is before start date")
			return m, nil, true
		}

		m.err = nil
		msg := TimeframeSelectedMsg{
			Label:  FormatDate(start) + " to " + FormatDate(end),
			Filter: transaction.ListFilter{StartDate: new(start), EndDate: new(end)},
		}

		return m, func() tea.Msg { return msg }, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.state == timeframeStateCustom {
		fmt.Fprintf(&b, "Custom range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to go back)",
			m.startInput.View(), m.endInput.View())
	} else {
		b.WriteString("Select timeframe:\n\n")

		for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
			cursor := " "
			if m.selected == tf {
				cursor = ">"
			}

			fmt.Fprintf(&b, "%s %s\n", cursor, tf)
		}

		b.WriteString("\n(Enter to select, Esc to go back)")
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	return b.String()
}

// IsSelecting reports whether the picker shows the preset list.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
