// Package filesystem implements a document store over a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// StoreType is the store type identifier.
const StoreType = "filesystem"

// DefaultDebounce is how long Watch waits for events to settle.
const DefaultDebounce = 500 * time.Millisecond

// Verify interface compliance.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.Watcher       = (*Store)(nil)
)

// Store lists and reads files from a local directory.
// Containers are directory paths, resolved against the base directory when
// relative. Remote IDs are absolute file paths.
type Store struct {
	baseDir  string
	debounce time.Duration

	mu     sync.Mutex
	closed bool
}

// New creates a filesystem store. An empty baseDir means the working directory.
func New(baseDir string) *Store {
	return &Store{
		baseDir:  baseDir,
		debounce: DefaultDebounce,
	}
}

// SetDebounce changes the Watch settle window.
func (s *Store) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Type returns the store type identifier.
func (s *Store) Type() string {
	return StoreType
}

// Validate checks the base directory, if set, is a readable directory.
func (s *Store) Validate(_ context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.baseDir == "" {
		return nil
	}
	if _, err := s.checkDir(s.baseDir); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreConnectionFailed, err)
	}
	return nil
}

// List returns the regular, non-hidden files directly inside container.
// Entries are sorted by name.
func (s *Store) List(_ context.Context, container string) ([]domain.DocumentRef, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	dir, err := s.checkDir(s.resolve(container))
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	refs := make([]domain.DocumentRef, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isHidden(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		refs = append(refs, domain.DocumentRef{
			Name:     entry.Name(),
			RemoteID: filepath.Join(dir, entry.Name()),
			Size:     info.Size(),
		})
	}
	return refs, nil
}

// Fetch opens the file at remoteID.
func (s *Store) Fetch(_ context.Context, remoteID string) (io.ReadCloser, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	f, err := os.Open(remoteID)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Close marks the store closed. Running watches stop with their context.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("filesystem store is closed")
	}
	return nil
}

// resolve turns a container into an absolute directory path.
func (s *Store) resolve(container string) string {
	dir := strings.TrimSpace(container)
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) && s.baseDir != "" {
		dir = filepath.Join(s.baseDir, dir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// checkDir returns dir if it exists and is a directory.
func (s *Store) checkDir(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("root path error: %w", err)
		}
		return "", fmt.Errorf("root path error: stat: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root path error: %s is not a directory", dir)
	}
	return dir, nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == filepath.Separator }) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
