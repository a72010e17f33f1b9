// Package lock provides a cross-process run lock backed by gofrs/flock.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure FileLock implements the interface.
var _ driven.RunLock = (*FileLock)(nil)

// lockFileName is created inside the data directory.
const lockFileName = ".sync.lock"

// FileLock guards a data directory so that only one sync pass runs
// against it at a time.
type FileLock struct {
	mu     sync.Mutex
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for dir. The lock file is <dir>/.sync.lock.
func NewFileLock(dir string) *FileLock {
	lockPath := filepath.Join(dir, lockFileName)
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if it's held elsewhere.
func (l *FileLock) TryLock() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Calling it on an unlocked FileLock is a no-op.
func (l *FileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}
