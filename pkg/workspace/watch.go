package workspace

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/deploygraph/pkg/errors"
)

// DefaultDebounce is the quiet period Watch waits for before recompiling.
const DefaultDebounce = 200 * time.Millisecond

// Watch recompiles open documents when files they depend on change. Changes
// are collected until no event arrived for debounce, then every changed path
// is passed to [Manager.Refresh]. Directories of documents opened later are
// picked up automatically.
//
// Watch blocks until ctx is done and returns nil then.
func (m *Manager) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}
	defer w.Close()

	watched := make(map[string]bool)
	sync := func() {
		for _, dir := range m.dirs() {
			if watched[dir] {
				continue
			}
			if err := w.Add(dir); err != nil {
				m.logger.Debug("cannot watch directory", "dir", dir, "err", err)
				continue
			}
			watched[dir] = true
			m.logger.Debug("watching directory", "dir", dir)
		}
	}
	sync()

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-m.opened:
			sync()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("file watcher error", "err", err)

		case <-timerC:
			timer, timerC = nil, nil
			paths := slices.Sorted(maps.Keys(pending))
			clear(pending)
			for _, p := range paths {
				if _, err := m.Refresh(ctx, p); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					m.logger.Warn("refresh failed", "path", p, "err", err)
				}
			}
			sync()
		}
	}
}
