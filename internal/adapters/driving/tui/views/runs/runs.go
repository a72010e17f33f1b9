// Package runs provides the sync run history view for the TUI.
package runs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// recentLimit is how many runs the view loads.
const recentLimit = 50

// ErrNoHistoryService indicates that run history is not available.
var ErrNoHistoryService = errors.New("run history not available")

// View lists recent sync runs and shows the failures of the selected one.
type View struct {
	styles  *styles.Styles
	history driving.HistoryService
	sync    driving.SyncOrchestrator
	ctx     context.Context

	reports  []domain.SyncReport
	status   *driving.SyncStatus
	selected int
	expanded bool
	width    int
	height   int
	err      error
	loading  bool
}

// NewView creates a new runs view. sync may be nil.
func NewView(s *styles.Styles, history driving.HistoryService, sync driving.SyncOrchestrator) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		history: history,
		sync:    sync,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the runs.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.loadRuns(), v.loadStatus())
}

func (v *View) loadRuns() tea.Cmd {
	return func() tea.Msg {
		if v.history == nil {
			return messages.RunsLoaded{Err: ErrNoHistoryService}
		}
		reports, err := v.history.Recent(v.ctx, recentLimit)
		return messages.RunsLoaded{Reports: reports, Err: err}
	}
}

func (v *View) loadStatus() tea.Cmd {
	if v.sync == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := v.sync.Status(v.ctx)
		return messages.SyncStatusLoaded{Status: status, Err: err}
	}
}

// Update handles messages for the runs view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RunsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.reports = msg.Reports
			if v.selected >= len(v.reports) {
				v.selected = 0
			}
		}
		return v, nil

	case messages.SyncStatusLoaded:
		if msg.Err == nil {
			v.status = msg.Status
		}
		return v, nil
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if v.expanded {
			v.expanded = false
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.reports)-1 {
			v.selected++
		}
	case "enter":
		if len(v.reports) > 0 {
			v.expanded = !v.expanded
		}
	case "r":
		return v, v.Init()
	}
	return v, nil
}

// View renders the runs view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Sync runs"))
	b.WriteString("\n\n")

	if v.status != nil && v.status.Running {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf(
			"Running %s: %d/%d processed, %d failed",
			v.status.RunID, v.status.Processed(), v.status.Eligible, v.status.Failed,
		)))
		b.WriteString("\n\n")
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading runs..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.reports) == 0:
		b.WriteString(v.styles.Muted.Render("No sync runs recorded."))
	case v.expanded:
		b.WriteString(v.renderDetail(&v.reports[v.selected]))
	default:
		for i := range v.reports {
			b.WriteString(v.renderRow(i, &v.reports[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] details  [r] refresh  [esc] back"))
	return b.String()
}

func (v *View) renderRow(index int, r *domain.SyncReport) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	line := fmt.Sprintf("%s%s  %-8s indexed %d/%d  failed %d",
		indicator,
		r.StartedAt.Local().Format(time.DateTime),
		outcome(r),
		r.Indexed, r.Eligible, len(r.Failed),
	)

	switch {
	case index == v.selected:
		return v.styles.Selected.Render(line)
	case r.Aborted():
		return v.styles.Error.Render(line)
	case len(r.Failed) > 0:
		return v.styles.Warning.Render(line)
	default:
		return v.styles.Normal.Render(line)
	}
}

func (v *View) renderDetail(r *domain.SyncReport) string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Run " + r.RunID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Store:     %s %s\n", r.StoreType, r.Container)
	fmt.Fprintf(&b, "Index:     %s\n", r.Index)
	fmt.Fprintf(&b, "Started:   %s\n", r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "Duration:  %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "Listed:    %d\n", r.Listed)
	fmt.Fprintf(&b, "Eligible:  %d\n", r.Eligible)
	fmt.Fprintf(&b, "Indexed:   %d\n", r.Indexed)
	if r.IndexTotal >= 0 {
		fmt.Fprintf(&b, "In index:  %d\n", r.IndexTotal)
	}
	if r.Aborted() {
		b.WriteString(v.styles.Error.Render("Aborted:   " + r.Fatal))
		b.WriteString("\n")
	}

	if len(r.Failed) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Failures (%d)", len(r.Failed))))
		b.WriteString("\n")
		for _, f := range r.Failed {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("  %s  [%s] %s", f.Name, f.Reason, f.Message)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func outcome(r *domain.SyncReport) string {
	switch {
	case r.Aborted():
		return "aborted"
	case len(r.Failed) > 0:
		return "partial"
	default:
		return "ok"
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Reports returns the loaded reports.
func (v *View) Reports() []domain.SyncReport {
	return v.reports
}

// SelectedIndex returns the selected row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Expanded reports whether the detail of the selected run is shown.
func (v *View) Expanded() bool {
	return v.expanded
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
