// Package watcher turns OS file notifications on the bridge's log
// path into a stream of change events for the tailer.
package watcher

import (
	"context"
	"log"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Event represents a change detected on a watched log file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher monitors the bridge log (or a glob of logs) for appends,
// rotation and recreation using OS-level notifications.
type Watcher struct {
	fsw    *fsnotify.Watcher
	Events chan Event
	paths  []string
}

// New creates a Watcher for the given glob patterns. Patterns are
// expanded at startup; a pattern matching nothing is not an error so
// the dashboard can come up before the bridge writes its first line.
func New(patterns []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		Events: make(chan Event, 256),
	}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			log.Printf("watcher: cannot expand pattern %q: %v", pattern, err)
			continue
		}
		for _, m := range matches {
			abs, _ := filepath.Abs(m)
			if err := fsw.Add(abs); err != nil {
				log.Printf("watcher: cannot watch %s: %v", abs, err)
				continue
			}
			w.paths = append(w.paths, abs)
		}
	}

	return w, nil
}

// Start forwards relevant file events until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			switch {
			case ev.Op&fsnotify.Write != 0,
				ev.Op&fsnotify.Create != 0,
				ev.Op&fsnotify.Remove != 0,
				ev.Op&fsnotify.Rename != 0:
				w.Events <- Event{Path: ev.Name, Op: ev.Op}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// Paths returns the files currently being watched.
func (w *Watcher) Paths() []string {
	return w.paths
}

// ReWatch adds a path back to the watcher after rotation.
func (w *Watcher) ReWatch(path string) error {
	return w.fsw.Add(path)
}
