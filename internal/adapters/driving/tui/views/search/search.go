// Package search provides the main search view for the TUI.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// maxRawLines caps how much of an unparsed payload is rendered.
const maxRawLines = 20

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context

	width      int
	height     int
	ready      bool
	err        error
	lastQuery  string
	raw        string
	focusInput bool // true = typing, false = navigating results
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQueryInput(s),
		list:         list.NewResultList(s),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyEnter:
			// The empty query is forwarded like any other.
			query := strings.TrimSpace(v.input.Value())
			v.input.Remember(query)
			v.statusbar.SetState(status.StateSearching)
			return v, v.performSearch(query)
		case tea.KeyUp, tea.KeyCtrlP:
			v.input.Previous()
			return v, nil
		case tea.KeyDown, tea.KeyCtrlN:
			v.input.Next()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}
	return v, nil
}

// performSearch runs the query in the background.
func (v *View) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if v.queryService == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}

		resp, err := v.queryService.Search(v.ctx, query)
		return messages.SearchCompleted{Query: query, Response: resp, Err: err}
	}
}

// handleSearchCompleted processes a query response.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.lastQuery = msg.Query
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.focusInput = false
	v.input.Blur()

	if msg.Response.Degraded() {
		v.raw = formatRaw(msg.Response.Raw)
		v.list.SetNames(nil)
		v.statusbar.SetState(status.StateDegraded)
		return
	}

	v.raw = ""
	v.list.SetNames(msg.Response.Result.DocumentIDs)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetCounts(msg.Response.Result.TotalCount, len(msg.Response.Result.DocumentIDs))
}

// formatRaw indents a JSON payload and clips it for display.
func formatRaw(raw []byte) string {
	var buf bytes.Buffer
	text := string(raw)
	if json.Indent(&buf, raw, "", "  ") == nil {
		text = buf.String()
	}

	lines := strings.Split(text, "\n")
	if len(lines) > maxRawLines {
		lines = append(lines[:maxRawLines], "...")
	}
	return strings.Join(lines, "\n")
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("docsync"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.raw != "" {
		sections = append(sections, v.styles.Raw.Render(v.raw))
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input and status bar
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current input value.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input value.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// LastQuery returns the most recently submitted query.
func (v *View) LastQuery() string {
	return v.lastQuery
}

// Names returns the listed document names.
func (v *View) Names() []string {
	return v.list.Names()
}

// SelectedIndex returns the index of the selected name.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Raw returns the rendered unparsed payload, if the last response was degraded.
func (v *View) Raw() string {
	return v.raw
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetNames(nil)
	v.raw = ""
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
