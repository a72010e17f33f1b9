package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

func newTestPorts() *Ports {
	return NewPorts(&MockQueryService{}, &MockHistoryService{}, &MockSyncOrchestrator{})
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts(), "index docsearchdemo")
	require.NoError(t, err)
	return app
}

// goToSearchView navigates the app from menu to search view.
func goToSearchView(app *App) {
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})
}

func TestNewApp_Success(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.NoError(t, app.Err())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(NewPorts(nil, nil, nil), "")

	assert.ErrorIs(t, err, ErrMissingQueryService)
	assert.Nil(t, app)
}

func TestNewApp_NilPorts(t *testing.T) {
	app, err := NewApp(nil, "")

	assert.ErrorIs(t, err, ErrMissingQueryService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app := newTestApp(t)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_View_NotReady(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_View_Menu(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(80, 24)

	view := app.View()

	assert.Contains(t, view, "docsync")
	assert.Contains(t, view, "index docsearchdemo")
	assert.Contains(t, view, "Sync runs")
}

func TestApp_CtrlC_Quits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)

	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})
	require.NotNil(t, cmd)

	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestApp_MenuSelectsSearch(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(80, 24)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, msg)

	app.Update(msg)
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
}

func TestApp_SearchRoundTrip(t *testing.T) {
	var got string
	query := &MockQueryService{
		SearchFunc: func(_ context.Context, term string) (*driving.QueryResponse, error) {
			got = term
			return &driving.QueryResponse{Result: &domain.QueryResult{
				TotalCount:  2,
				DocumentIDs: []string{"report.pdf", "notes.pdf"},
			}}, nil
		},
	}
	app, err := NewApp(NewPorts(query, nil, nil), "")
	require.NoError(t, err)
	goToSearchView(app)

	for _, r := range "budget" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	app.Update(cmd())

	assert.Equal(t, "budget", got)
	assert.NoError(t, app.Err())
	view := app.View()
	assert.Contains(t, view, "report.pdf")
	assert.Contains(t, view, "notes.pdf")
}

func TestApp_SearchError(t *testing.T) {
	app := newTestApp(t)
	goToSearchView(app)

	wantErr := errors.New("engine down")
	app.Update(messages.SearchCompleted{Query: "x", Err: wantErr})

	assert.ErrorIs(t, app.Err(), wantErr)
	assert.Contains(t, app.View(), "engine down")
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)
	wantErr := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: wantErr})

	assert.ErrorIs(t, app.Err(), wantErr)
}

func TestApp_RunsView(t *testing.T) {
	history := &MockHistoryService{Reports: []domain.SyncReport{{
		RunID:      "run-1",
		StoreType:  "dropbox",
		Index:      "docsearchdemo",
		StartedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt: time.Date(2025, 1, 2, 3, 5, 5, 0, time.UTC),
		Listed:     3,
		Eligible:   2,
		Indexed:    2,
		IndexTotal: 2,
	}}}
	app, err := NewApp(NewPorts(&MockQueryService{}, history, nil), "")
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewRuns})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewRuns, app.CurrentView())

	app.Update(messages.RunsLoaded{Reports: history.Reports})

	assert.Contains(t, app.View(), "indexed 2/2")
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(80, 24)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Help")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_SearchEscReturnsToMenu(t *testing.T) {
	app := newTestApp(t)
	goToSearchView(app)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}
