package confloader

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// Watcher notifies callbacks when a watched configuration file is
// rewritten. It watches the file's directory rather than the file
// itself so editor save-via-rename still triggers, and only events for
// registered files are reported.
type Watcher struct {
	fs  *fsnotify.Watcher
	log logger.Logger

	mu        sync.RWMutex
	targets   map[string]struct{}
	callbacks []func(string)

	done chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(log logger.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// NewWatcher creates a configuration file watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:      fs,
		log:     logger.Default(),
		targets: make(map[string]struct{}),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch registers a configuration file. Its directory is added to the
// underlying watcher; change events for other files in the same
// directory are ignored.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.targets[path] = struct{}{}
	w.mu.Unlock()

	w.log.Debug("watching config file", "file", path)
	return nil
}

// OnChange registers a callback invoked with the path of the changed
// file. Callbacks run on the watcher goroutine.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// StartAsync starts the event loop in a goroutine.
func (w *Watcher) StartAsync() {
	go w.run()
}

func (w *Watcher) run() {
	w.log.Info("config watcher started")

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.watched(event.Name) {
				continue
			}
			w.log.Debug("config file changed", "file", event.Name, "op", event.Op.String())
			w.notify(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	if err := w.fs.Close(); err != nil {
		return err
	}
	w.log.Info("config watcher stopped")
	return nil
}

func (w *Watcher) watched(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.targets[filepath.Clean(path)]
	return ok
}

func (w *Watcher) notify(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(path)
	}
}
