//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

type mockQuery struct {
	resp  *driving.QueryResponse
	err   error
	terms []string
}

func (m *mockQuery) Search(_ context.Context, term string) (*driving.QueryResponse, error) {
	m.terms = append(m.terms, term)
	return m.resp, m.err
}

func newTestServer(t *testing.T, q *mockQuery) *httptest.Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0", q)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestNewServer_RequiresQuery(t *testing.T) {
	_, err := NewServer(":0", nil)
	assert.ErrorIs(t, err, ErrMissingQueryService)
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t, &mockQuery{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, string(body))
}

func TestHandleSearch_Result(t *testing.T) {
	q := &mockQuery{resp: &driving.QueryResponse{
		Result: &domain.QueryResult{TotalCount: 2, DocumentIDs: []string{"a.pdf", "b.pdf"}},
	}}
	srv := newTestServer(t, q)

	resp, err := http.Get(srv.URL + "/search?q=invoice")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"items":2,"paths":["a.pdf","b.pdf"]}`, string(body))
	assert.Equal(t, []string{"invoice"}, q.terms)
}

func TestHandleSearch_MissingTermIsEmpty(t *testing.T) {
	q := &mockQuery{resp: &driving.QueryResponse{
		Result: &domain.QueryResult{TotalCount: 0, DocumentIDs: []string{}},
	}}
	srv := newTestServer(t, q)

	resp, err := http.Get(srv.URL + "/search")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{""}, q.terms)
}

func TestHandleSearch_Degraded(t *testing.T) {
	raw := `{"took":3,"unexpected":true}`
	q := &mockQuery{resp: &driving.QueryResponse{Raw: json.RawMessage(raw)}}
	srv := newTestServer(t, q)

	resp, err := http.Get(srv.URL + "/search?q=x")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, raw, string(body))
}

func TestHandleSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"query failed", fmt.Errorf("%w: boom", domain.ErrQueryFailed), http.StatusBadGateway},
		{"engine down", domain.ErrEngineConnectionFailed, http.StatusBadGateway},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"other", errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &mockQuery{err: tt.err})

			resp, err := http.Get(srv.URL + "/search?q=x")
			require.NoError(t, err)
			defer resp.Body.Close()

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body.Error, tt.err.Error())
		})
	}
}

func TestHandleSearch_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &mockQuery{})

	resp, err := http.Post(srv.URL+"/search", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &mockQuery{})

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StartStop(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", &mockQuery{})
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.NotEqual(t, "127.0.0.1:0", s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Error(t, s.Start())
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", &mockQuery{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	first, err := NewServer("127.0.0.1:0", &mockQuery{})
	require.NoError(t, err)
	require.NoError(t, first.Start())
	defer first.Stop()

	second, err := NewServer(first.Addr(), &mockQuery{})
	require.NoError(t, err)
	assert.Error(t, second.Start())
}
