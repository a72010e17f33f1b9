package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docsync/internal/logger"
)

// Watch signals on the returned channel when files in container change.
// Bursts of events are coalesced into one signal once they settle for the
// debounce window. Hidden files and permission changes are ignored.
// The channel is closed when ctx is cancelled.
func (s *Store) Watch(ctx context.Context, container string) (<-chan struct{}, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	dir, err := s.checkDir(s.resolve(container))
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go s.watchLoop(ctx, fsw, changes)
	return changes, nil
}

func (s *Store) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- struct{}) {
	defer close(changes)
	defer fsw.Close()

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("Change detected: %s %s", event.Op, event.Name)
			timer.Reset(s.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		case <-timer.C:
			select {
			case changes <- struct{}{}:
			default:
				// A signal is already pending.
			}
		}
	}
}

// relevant filters events that can change a listing.
func relevant(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}
