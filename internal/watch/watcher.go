// Package watch reports changes to a single file, coalescing bursts of writes.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a settled change to the watched file.
type Event struct {
	Path      string
	Operation string
}

// FileWatcher watches one file through its parent directory, so editors that
// replace the file by rename are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	events   chan Event
	log      *slog.Logger
}

// NewFileWatcher starts watching path. An event is emitted once no further
// change arrived for the debounce interval.
func NewFileWatcher(path string, debounce time.Duration, log *slog.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if log == nil {
		log = slog.Default()
	}
	fw := &FileWatcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		events:   make(chan Event, 1),
		log:      log,
	}
	go fw.processEvents()
	return fw, nil
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)
	var (
		timer *time.Timer
		fire  <-chan time.Time
		last  fsnotify.Op
	)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path || event.Op == fsnotify.Chmod {
				continue
			}
			last = event.Op
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			// A pending event already covers this change.
			select {
			case fw.events <- Event{Path: fw.path, Operation: last.String()}:
			default:
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watch error", "path", fw.path, "error", err)
		}
	}
}

// Events delivers settled changes. The channel closes after Close.
func (fw *FileWatcher) Events() <-chan Event {
	return fw.events
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string { return fw.path }

func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
