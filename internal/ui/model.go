// Package ui implements the interactive history picker: a query line,
// a ranked list of matching commands, and the key handling to narrow
// and select from it.
package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/zenoxygen/termsearch/internal/history"
	"github.com/zenoxygen/termsearch/internal/logging"
	"github.com/zenoxygen/termsearch/internal/rank"
)

var uiLog = logging.ForComponent(logging.CompUI)

// HistoryReloadedMsg tells the picker the history store has fresh
// entries and the match list should be rebuilt.
type HistoryReloadedMsg struct{}

// Model is the bubbletea model for the picker session.
type Model struct {
	input      textinput.Model
	store      *history.Store
	matches    []rank.Match
	selected   int
	width      int
	height     int
	maxResults int

	// now feeds the ranking clock; swapped out in tests.
	now func() time.Time

	accepted  bool
	selection string
}

// NewModel builds a picker over store, ranked with initialQuery (empty
// means frequency mode) and capped at maxResults rows.
func NewModel(store *history.Store, maxResults int, initialQuery string) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = PromptStyle
	ti.TextStyle = RowStyle
	ti.CharLimit = 256
	ti.SetValue(initialQuery)
	ti.Focus()

	m := &Model{
		input:      ti,
		store:      store,
		maxResults: maxResults,
		now:        time.Now,
	}
	m.rerank()

	uiLog.Debug("initialize picker",
		"entries", store.Len(),
		"max_results", maxResults,
		"initial_query", initialQuery)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model. Keys that are not part of the picker's
// vocabulary are inert: the input cursor never leaves the end of the
// line, so there is no cursor movement to handle.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 3
		if m.input.Width < 0 {
			m.input.Width = 0
		}
		return m, nil

	case HistoryReloadedMsg:
		uiLog.Debug("history reloaded", "entries", m.store.Len())
		m.rerank()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "ctrl+d":
			uiLog.Debug("picker canceled", "key", msg.String())
			return m, tea.Quit

		case "enter":
			if len(m.matches) == 0 {
				return m, nil
			}
			m.selection = m.matches[m.selected].Command
			m.accepted = true
			uiLog.Debug("command selected", "command", m.selection)
			return m, tea.Quit

		case "down", "tab":
			if len(m.matches) > 0 {
				m.selected = (m.selected + 1) % len(m.matches)
			}
			return m, nil

		case "up", "shift+tab":
			if len(m.matches) > 0 {
				m.selected = (m.selected - 1 + len(m.matches)) % len(m.matches)
			}
			return m, nil

		case "backspace":
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.rerank()
			return m, cmd

		default:
			if (msg.Type == tea.KeyRunes && !msg.Alt) || msg.Type == tea.KeySpace {
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				m.rerank()
				return m, cmd
			}
			return m, nil
		}
	}

	return m, nil
}

// rerank rebuilds the match list for the current input. Every rebuild
// moves the selection back to the top row.
func (m *Model) rerank() {
	entries := m.store.Entries()
	if query := m.input.Value(); query != "" {
		m.matches = rank.Search(query, entries, m.maxResults, m.now())
	} else {
		m.matches = rank.MostFrequent(entries, m.maxResults, m.now())
	}
	m.selected = 0
}

// View implements tea.Model: the query line on top, one ranked command
// per row below it.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())

	rows := len(m.matches)
	if m.height > 0 && rows > m.height-1 {
		rows = m.height - 1
	}
	for i := 0; i < rows; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(m.matches[i].Command, i == m.selected))
	}
	return b.String()
}

// renderRow styles one command row, marking the first occurrence of
// the query in yellow and inverting the selected row.
func (m *Model) renderRow(command string, selected bool) string {
	line := command
	if m.width > 0 {
		line = runewidth.Truncate(line, m.width, "")
	}

	rowStyle := RowStyle
	matchStyle := MatchStyle
	if selected {
		rowStyle = SelectedRowStyle
		matchStyle = SelectedMatchStyle
	}

	query := m.input.Value()
	if query == "" {
		return rowStyle.Render(line)
	}

	start := strings.Index(strings.ToLower(line), strings.ToLower(query))
	if start < 0 || start > len(line) {
		return rowStyle.Render(line)
	}
	end := start + len(query)
	if end > len(line) {
		end = len(line)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(rowStyle.Render(line[:start]))
	}
	b.WriteString(matchStyle.Render(line[start:end]))
	if end < len(line) {
		b.WriteString(rowStyle.Render(line[end:]))
	}
	return b.String()
}

// Selection returns the accepted command, if any.
func (m *Model) Selection() (string, bool) {
	return m.selection, m.accepted
}

// Query returns the current input text.
func (m *Model) Query() string {
	return m.input.Value()
}

// Matches returns the current ranked matches. Exposed for the reload
// bridge and tests.
func (m *Model) Matches() []rank.Match {
	return m.matches
}

// Selected returns the index of the highlighted row.
func (m *Model) Selected() int {
	return m.selected
}
