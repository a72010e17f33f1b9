// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/styles"
)

// Item is a single menu entry.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View is the main menu.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	subtitle string
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. subtitle names what is being searched,
// usually the index.
func NewView(s *styles.Styles, km *keymap.KeyMap, subtitle string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:   s,
		keymap:   km,
		subtitle: subtitle,
		items: []Item{
			{Label: "Search", Hint: "full-text match over indexed documents", View: messages.ViewSearch},
			{Label: "Sync runs", Hint: "outcome of recent sync passes", View: messages.ViewRuns},
			{Label: "Help", Hint: "keybindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(v.items)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.Select):
		return v, v.choose()
	case keymap.Matches(k, v.keymap.Quit):
		return v, tea.Quit
	case len(k) == 1 && k[0] >= '1' && int(k[0]-'0') <= len(v.items):
		v.selected = int(k[0]-'1')
		return v, v.choose()
	}
	return v, nil
}

// choose acts on the selected item.
func (v *View) choose() tea.Cmd {
	item := v.items[v.selected]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docsync"))
	b.WriteString("\n")
	if v.subtitle != "" {
		b.WriteString(v.styles.Muted.Render(v.subtitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Subtitle.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Hint != "" && v.width >= 60 {
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-4/Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Items returns the menu items.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
