// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/styles"
)

// maxHistory bounds the remembered queries.
const maxHistory = 50

// QueryInput wraps a bubbles textinput and remembers submitted queries.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	history []string
	// cursor indexes history while recalling; len(history) means "not recalling".
	cursor int
}

// NewQueryInput creates a new query input component.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Search document text..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &QueryInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the query input.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the query input.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Query: ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Remember records a submitted query. Consecutive duplicates are collapsed.
func (q *QueryInput) Remember(query string) {
	if n := len(q.history); n == 0 || q.history[n-1] != query {
		q.history = append(q.history, query)
		if len(q.history) > maxHistory {
			q.history = q.history[len(q.history)-maxHistory:]
		}
	}
	q.cursor = len(q.history)
}

// Previous replaces the value with the previous remembered query.
func (q *QueryInput) Previous() {
	if q.cursor > 0 {
		q.cursor--
		q.textinput.SetValue(q.history[q.cursor])
		q.textinput.CursorEnd()
	}
}

// Next replaces the value with the next remembered query, or clears it
// after the newest.
func (q *QueryInput) Next() {
	if q.cursor >= len(q.history) {
		return
	}
	q.cursor++
	if q.cursor == len(q.history) {
		q.textinput.SetValue("")
		return
	}
	q.textinput.SetValue(q.history[q.cursor])
	q.textinput.CursorEnd()
}

// History returns remembered queries, oldest first.
func (q *QueryInput) History() []string {
	return q.history
}

// Value returns the current input value.
func (q *QueryInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input value.
func (q *QueryInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the width of the input.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	q.textinput.Width = inputWidth
}

// Width returns the current width.
func (q *QueryInput) Width() int {
	return q.width
}

// Reset clears the input.
func (q *QueryInput) Reset() {
	q.textinput.Reset()
	q.cursor = len(q.history)
}
