package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// --- Mock implementations shared by service tests ---

// mockStore implements driven.DocumentStore over an in-memory file map.
type mockStore struct {
	mu          sync.Mutex
	refs        []domain.DocumentRef
	content     map[string][]byte // remote ID -> bytes
	fetchErrs   map[string]error  // remote ID -> error
	validateErr error
	listErr     error
	fetched     []string
	open        int
}

func newMockStore(files map[string]string) *mockStore {
	s := &mockStore{
		content:   make(map[string][]byte),
		fetchErrs: make(map[string]error),
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id := "id:" + name
		s.refs = append(s.refs, domain.DocumentRef{Name: name, RemoteID: id, Size: int64(len(files[name]))})
		s.content[id] = []byte(files[name])
	}
	return s
}

func (s *mockStore) Type() string { return "mock" }

func (s *mockStore) Validate(_ context.Context) error { return s.validateErr }

func (s *mockStore) List(_ context.Context, _ string) ([]domain.DocumentRef, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.refs, nil
}

func (s *mockStore) Fetch(_ context.Context, remoteID string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, remoteID)
	if err, ok := s.fetchErrs[remoteID]; ok {
		return nil, err
	}
	data, ok := s.content[remoteID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.open++
	return &trackedReader{Reader: bytes.NewReader(data), store: s}, nil
}

func (s *mockStore) Close() error { return nil }

func (s *mockStore) fetchedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetched...)
}

func (s *mockStore) openReaders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

type trackedReader struct {
	io.Reader
	store *mockStore
}

func (r *trackedReader) Close() error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.open--
	return nil
}

// mockExtractor implements driven.TextExtractor. By default it returns the
// content unchanged.
type mockExtractor struct {
	mu    sync.Mutex
	fail  map[string]error  // content -> error
	texts map[string]string // content -> text
	calls []string
}

func newMockExtractor() *mockExtractor {
	return &mockExtractor{
		fail:  make(map[string]error),
		texts: make(map[string]string),
	}
}

func (e *mockExtractor) Extract(_ context.Context, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	key := string(data)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, key)
	if err, ok := e.fail[key]; ok {
		return "", err
	}
	if text, ok := e.texts[key]; ok {
		return text, nil
	}
	return key, nil
}

func (e *mockExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// mockEngine implements driven.SearchEngine with an in-memory index and
// renders Elasticsearch-shaped search responses.
type mockEngine struct {
	mu        sync.Mutex
	indexes   map[string]map[string]string
	infoErr   error
	existsErr error
	createErr error
	upsertErr map[string]error // id -> error
	countErr  error
	matchRaw  json.RawMessage
	matchErr  error
	creates   int
	upserts   []string
	lastSize  int
	lastTerm  string
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		indexes:   make(map[string]map[string]string),
		upsertErr: make(map[string]error),
	}
}

func (e *mockEngine) Info(_ context.Context) (*domain.EngineInfo, error) {
	if e.infoErr != nil {
		return nil, e.infoErr
	}
	return &domain.EngineInfo{Name: "mock", Version: "1.0", Cluster: "test"}, nil
}

func (e *mockEngine) IndexExists(_ context.Context, index string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.existsErr != nil {
		return false, e.existsErr
	}
	_, ok := e.indexes[index]
	return ok, nil
}

func (e *mockEngine) CreateIndex(_ context.Context, index string, _ domain.IndexSchema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.creates++
	if e.createErr != nil {
		return e.createErr
	}
	e.indexes[index] = make(map[string]string)
	return nil
}

func (e *mockEngine) Upsert(_ context.Context, index string, entry domain.IndexEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.upserts = append(e.upserts, entry.ID)
	if err, ok := e.upsertErr[entry.ID]; ok {
		return err
	}
	docs, ok := e.indexes[index]
	if !ok {
		return errors.New("no such index")
	}
	docs[entry.ID] = entry.Text
	return nil
}

func (e *mockEngine) Match(_ context.Context, index, _ string, term string, size int) (json.RawMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastTerm = term
	e.lastSize = size
	if e.matchErr != nil {
		return nil, e.matchErr
	}
	if e.matchRaw != nil {
		return e.matchRaw, nil
	}

	ids := []string{}
	for id, text := range e.indexes[index] {
		if term != "" && strings.Contains(strings.ToLower(text), strings.ToLower(term)) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	type hit struct {
		ID    string  `json:"_id"`
		Score float64 `json:"_score"`
	}
	hits := make([]hit, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, hit{ID: id, Score: 1})
	}
	resp := map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": len(ids), "relation": "eq"},
			"hits":  hits,
		},
	}
	return json.Marshal(resp)
}

func (e *mockEngine) Count(_ context.Context, index string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.countErr != nil {
		return 0, e.countErr
	}
	return int64(len(e.indexes[index])), nil
}

func (e *mockEngine) Close() error { return nil }

func (e *mockEngine) entries(index string) map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.indexes[index]))
	for k, v := range e.indexes[index] {
		out[k] = v
	}
	return out
}

func (e *mockEngine) upsertIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.upserts...)
}

// mockLock implements driven.RunLock.
type mockLock struct {
	held     bool
	tryErr   error
	unlocked int
}

func (l *mockLock) TryLock() (bool, error) {
	if l.tryErr != nil {
		return false, l.tryErr
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *mockLock) Unlock() error {
	l.held = false
	l.unlocked++
	return nil
}
