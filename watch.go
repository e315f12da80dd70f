// FILE: itcw/config/watch.go
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the search path and calls Reset when a file matching the
// discovery patterns is created, removed or renamed. Content changes need no
// rediscovery because file sources re-read on every lookup. Watch blocks until
// ctx is done.
func (r *Resolver) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher for %s: %w", r.dir, err)
	}
	defer func() {
		if e := watcher.Close(); e != nil {
			r.logger.Warn("error closing watcher", "dir", r.dir, "error", e)
		}
	}()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watch dir %s: %w", r.dir, err)
	}

	var (
		debounceTimer *time.Timer
		lastEvent     string
		lastEventTime time.Time
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.String() == lastEvent && time.Since(lastEventTime) < eventDedupWindow {
				continue
			}
			lastEvent = event.String()
			lastEventTime = time.Now()

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !matchesAny(event.Name, r.patterns) {
				continue
			}

			r.logger.Debug("configuration file event", "file", filepath.Base(event.Name), "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(r.debounce, func() {
				r.Reset()
				r.logger.Info("configuration sources reset", "dir", r.dir)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("error watching directory", "dir", r.dir, "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
