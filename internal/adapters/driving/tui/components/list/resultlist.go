// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/styles"
)

// ResultList displays matching document names in relevance order.
type ResultList struct {
	names    []string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.names) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.names)+2)
	lines = append(lines, r.styles.Subtitle.Render("Documents"), "")

	start, end := r.window()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderName(i))
	}
	if end < len(r.names) {
		lines = append(lines, r.styles.Muted.Render(fmt.Sprintf("  ... %d more", len(r.names)-end)))
	}

	return strings.Join(lines, "\n")
}

// window returns the visible index range keeping the selection in view.
func (r *ResultList) window() (int, int) {
	visible := r.height - 3
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.names) {
		end = len(r.names)
	}
	return start, end
}

func (r *ResultList) renderName(index int) string {
	name := r.names[index]

	maxLen := r.width - 10
	if maxLen < 10 {
		maxLen = 10
	}
	if len(name) > maxLen {
		name = name[:maxLen-3] + "..."
	}

	rank := fmt.Sprintf("%3d. ", index+1)
	if index == r.selected {
		return r.styles.Selected.Render("> " + rank + name)
	}
	return r.styles.Muted.Render("  "+rank) + r.styles.Normal.Render(name)
}

// SetNames replaces the listed names and resets the selection.
func (r *ResultList) SetNames(names []string) {
	r.names = names
	r.selected = 0
}

// Names returns the listed names.
func (r *ResultList) Names() []string {
	return r.names
}

// Selected returns the index of the selected name.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedName returns the selected name, or "" if the list is empty.
func (r *ResultList) SelectedName() string {
	if r.selected < 0 || r.selected >= len(r.names) {
		return ""
	}
	return r.names[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.names)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of names.
func (r *ResultList) Count() int {
	return len(r.names)
}
