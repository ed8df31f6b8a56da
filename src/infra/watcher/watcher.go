package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceSecs = 5

// MediaEvent signals that new audio files appeared in the media directory,
// e.g. dropped in by hand. Consumers rescan the directory for import
// candidates.
type MediaEvent struct {
	Dir       string
	Timestamp time.Time
}

// Watcher monitors the media directory for externally added audio files.
// Events within the debounce window collapse into one, since file copies
// fire many writes.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- MediaEvent
}

// NewWatcher creates a new media directory watcher.
func NewWatcher(eventChan chan<- MediaEvent) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:   fsWatcher,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the media directory.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting media watcher", "path", watchPath)

	if err := w.watcher.Add(watchPath); err != nil {
		return err
	}
	w.running = true
	go w.watchLoop(ctx)

	slog.Info("Media watcher started successfully")
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}
	slog.Info("Stopping media watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Media watcher error", "error", err)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !IsSupportedAudio(event.Name) {
		return
	}
	slog.Debug("Detected new audio file", "file", event.Name)

	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceSecs*time.Second, w.emitDebouncedEvent)
}

// IsSupportedAudio reports whether the path has a playable audio extension.
func IsSupportedAudio(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac", ".wav", ".ogg", ".m4a":
		return true
	}
	return false
}

func (w *Watcher) emitDebouncedEvent() {
	event := MediaEvent{Dir: w.watchPath, Timestamp: time.Now()}
	select {
	case w.eventChan <- event:
		slog.Info("Emitted media event after debounce", "dir", event.Dir)
	default:
		slog.Warn("Media event channel full, dropping event", "dir", event.Dir)
	}
}
