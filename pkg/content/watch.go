package content

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a content tree file when it changes on disk. Editors tend
// to emit several events per save, so reloads are debounced.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	trees     chan *Tree
	done      chan struct{}
	log       zerolog.Logger
}

// WatchConfig holds watcher configuration options.
type WatchConfig struct {
	Path        string
	DebounceDur time.Duration
	Logger      zerolog.Logger
}

// NewWatcher creates a watcher for the tree file at cfg.Path.
func NewWatcher(cfg WatchConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = 250 * time.Millisecond
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      filepath.Clean(cfg.Path),
		debounce:  cfg.DebounceDur,
		trees:     make(chan *Tree, 1),
		done:      make(chan struct{}),
		log:       cfg.Logger.With().Str("component", "content-watch").Logger(),
	}, nil
}

// Start begins watching. The returned channel receives each successfully
// reloaded tree; a file that fails to parse is logged and skipped.
func (w *Watcher) Start() (<-chan *Tree, error) {
	// Watch the directory so editors that replace the file are seen.
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	go w.loop()
	return w.trees, nil
}

// Stop terminates the watcher and closes the tree channel.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	defer close(w.trees)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	t, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn().Err(err).Msg("reloading content tree")
		return
	}
	w.log.Info().Int("nodes", t.Len()).Msg("content tree reloaded")

	// keep only the newest tree if the consumer is behind
	select {
	case <-w.trees:
	default:
	}
	select {
	case w.trees <- t:
	case <-w.done:
	}
}
