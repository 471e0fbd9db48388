// Package watcher watches a template directory and reports debounced
// batches of changes.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/xcboot/internal/errors"
	"github.com/conneroisu/xcboot/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDelay groups the bursts editors produce on save.
const DefaultDelay = 200 * time.Millisecond

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Filter reports whether a path is of interest. All filters must accept.
type Filter func(path string) bool

// Handler receives one debounced batch, sorted by path.
type Handler func(ctx context.Context, events []ChangeEvent) error

// Watcher watches directory trees through fsnotify.
type Watcher struct {
	fsw      *fsnotify.Watcher
	delay    time.Duration
	logger   logging.Logger
	mu       sync.RWMutex
	filters  []Filter
	handlers []Handler

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New creates a watcher. A non-positive delay uses DefaultDelay.
func New(delay time.Duration, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInternalError, "cannot create file watcher", err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Watcher{fsw: fsw, delay: delay, logger: logger.WithComponent("watcher")}, nil
}

// AddFilter adds a file filter
func (w *Watcher) AddFilter(filter Filter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filters = append(w.filters, filter)
}

// AddHandler adds a change handler
func (w *Watcher) AddHandler(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// AddRecursive watches root and every directory below it, skipping hidden
// directories.
func (w *Watcher) AddRecursive(root string) error {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "cannot watch "+root, err).WithFile(root)
	}
	if !info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidPath, root+" is not a directory").WithFile(root)
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Start runs the event loop until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

// Stop ends the event loop, waits for it and releases the fsnotify handle.
// It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		w.wg.Wait()
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	var (
		pending []ChangeEvent
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			change, keep := w.convert(event)
			if !keep {
				continue
			}
			pending = append(pending, change)
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.delay)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "file watcher error")

		case <-fire:
			fire = nil
			batch := Collapse(pending)
			pending = pending[:0]
			w.dispatch(ctx, batch)
		}
	}
}

// convert maps an fsnotify event and starts watching new directories.
func (w *Watcher) convert(event fsnotify.Event) (ChangeEvent, bool) {
	w.mu.RLock()
	filters := w.filters
	w.mu.RUnlock()

	info, statErr := os.Stat(event.Name)
	if statErr == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !strings.HasPrefix(filepath.Base(event.Name), ".") {
			if err := w.AddRecursive(event.Name); err != nil {
				w.logger.Warn(context.Background(), err, "cannot watch new directory", "path", event.Name)
			}
		}
		return ChangeEvent{}, false
	}

	for _, filter := range filters {
		if !filter(event.Name) {
			return ChangeEvent{}, false
		}
	}

	change := ChangeEvent{Path: event.Name}
	if statErr == nil {
		change.ModTime = info.ModTime()
		change.Size = info.Size()
	}

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		change.Type = EventTypeCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		change.Type = EventTypeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		change.Type = EventTypeDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		change.Type = EventTypeRenamed
	default:
		change.Type = EventTypeModified
	}
	return change, true
}

func (w *Watcher) dispatch(ctx context.Context, batch []ChangeEvent) {
	if len(batch) == 0 {
		return
	}

	w.mu.RLock()
	handlers := w.handlers
	w.mu.RUnlock()

	w.logger.Debug(ctx, "dispatching changes", "count", len(batch))
	for _, handler := range handlers {
		if err := handler(ctx, batch); err != nil {
			w.logger.Warn(ctx, err, "change handler failed")
		}
	}
}

// Collapse keeps the last event per path and sorts the result by path.
func Collapse(events []ChangeEvent) []ChangeEvent {
	last := make(map[string]ChangeEvent, len(events))
	for _, e := range events {
		last[e.Path] = e
	}

	out := make([]ChangeEvent, 0, len(last))
	for _, e := range last {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// NoHiddenFilter rejects dotfiles such as .DS_Store.
func NoHiddenFilter(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), ".")
}

// NoEditorTempFilter rejects swap and backup files editors write on save.
func NoEditorTempFilter(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, "#") {
		return false
	}
	switch filepath.Ext(base) {
	case ".swp", ".swx", ".tmp":
		return false
	}
	return true
}
