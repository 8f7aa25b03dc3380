// Package watch triggers rebuilds when bundle sources change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/packrig/internal/ctxlog"
)

// DefaultDebounce is how long the file system must stay quiet before a
// change triggers a rebuild. Editors fire bursts of events per save.
const DefaultDebounce = 500 * time.Millisecond

// Run watches the given paths and calls onChange after each settled burst of
// changes, until ctx is cancelled. It returns an error only when no path
// could be watched at all.
//
// The watch is placed on each path's parent directory and events are
// filtered by name. A file-level watch dies when an editor saves atomically
// (write temp file, rename over the original); a directory-level watch
// keeps seeing the file under its old name.
func Run(ctx context.Context, paths []string, debounce time.Duration, onChange func(context.Context)) error {
	logger := ctxlog.FromContext(ctx)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	sources := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		sources[filepath.Clean(p)] = true
		dirs[filepath.Dir(p)] = true
	}

	watched := 0
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("Could not watch directory.", "dir", dir, "error", err)
			continue
		}
		logger.Debug("Watching directory.", "dir", dir)
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("none of the %d configured paths could be watched", len(paths))
	}

	logger.Info("👀 Watching for source changes.", "paths", len(sources), "dirs", watched, "debounce", debounce)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !sources[filepath.Clean(ev.Name)] {
				continue
			}
			logger.Debug("Source change detected.", "path", ev.Name, "op", ev.Op.String())
			pending = time.After(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)

		case <-pending:
			pending = nil
			onChange(ctx)
		}
	}
}
