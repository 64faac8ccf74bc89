package watch

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
)

// EventFunc receives the path of a file that was created or modified under
// the watched directory.
type EventFunc func(path string)

// Probe reports whether the platform can deliver filesystem notifications by
// opening and immediately closing a watcher. Callers use it to decide whether
// to offer real-time watching at all.
func Probe() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("filesystem notifications unavailable: %w", err)
	}
	return w.Close()
}

// Watcher observes a single directory (non-recursive) and invokes a callback
// for create and write events on regular files. It only notifies; whether
// the file then gets scanned is the caller's decision.
type Watcher struct {
	root string
	fn   EventFunc
	log  *slog.Logger

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher prepares a watcher for root. Start must be called before events
// flow.
func NewWatcher(root string, fn EventFunc, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		root:   root,
		fn:     fn,
		log:    log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start registers the root with the OS and launches the event loop.
func (w *Watcher) Start() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	w.fsw = fsw
	go w.loop()
	return nil
}

// Stop tears down the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher) loop() {
	defer close(w.doneCh)
	defer w.fsw.Close()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", "root", w.root, "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	w.log.Debug("filesystem event", "op", event.Op.String(), "path", event.Name)
	if w.fn != nil {
		w.fn(event.Name)
	}
}
