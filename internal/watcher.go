package internal

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher turns doublestar glob patterns into a stream of RawEvents
// backed by fsnotify. It also keeps the watch set alive as the tree
// changes: newly created directories are added along with their subtrees.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *log.Logger
	events chan RawEvent
	done   chan struct{}

	mu   sync.Mutex
	dirs map[string]struct{}
}

func NewWatcher(logger *log.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fs,
		logger: logger,
		events: make(chan RawEvent),
		done:   make(chan struct{}),
		dirs:   make(map[string]struct{}),
	}
	go w.translate()
	return w, nil
}

// Events is the stream of translated change notifications.
func (w *Watcher) Events() <-chan RawEvent {
	return w.events
}

// Errors surfaces watch-level problems. These never stop the stream.
func (w *Watcher) Errors() <-chan error {
	return w.fs.Errors
}

// Subscribe expands the given glob patterns relative to workDir and adds
// every match to the watch set. Pattern roots are watched too so matches
// created later still produce events. A path that cannot be watched is
// logged and skipped; Subscribe fails only on a malformed pattern or when
// nothing at all could be watched.
func (w *Watcher) Subscribe(workDir string, patterns []string) error {
	watched := 0
	for _, pattern := range patterns {
		expanded := pattern
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(workDir, pattern)
		}

		rootDir, _ := doublestar.SplitPattern(expanded)
		if err := w.add(rootDir); err != nil {
			w.logger.Error("Could not watch pattern root", "dir", rootDir, "err", err)
		} else {
			watched++
		}

		matches, err := doublestar.FilepathGlob(expanded)
		if err != nil {
			return err
		}
		for _, path := range matches {
			if err := w.add(path); err != nil {
				w.logger.Error("Could not watch path", "path", path, "err", err)
				continue
			}
			watched++
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.addTree(path)
			}
		}
	}

	if watched == 0 {
		return errors.New("no watchable paths matched the given patterns")
	}
	return nil
}

// Close stops the event stream and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) translate() {
	defer close(w.events)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			raw, ok := w.translateEvent(ev)
			if !ok {
				continue
			}
			select {
			case w.events <- raw:
			case <-w.done:
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) translateEvent(ev fsnotify.Event) (RawEvent, bool) {
	raw := RawEvent{Path: ev.Name, Time: time.Now()}

	switch {
	case ev.Op.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			raw.Kind = KindAddDir
			w.addTree(ev.Name)
		} else {
			raw.Kind = KindAdd
			if err := w.add(ev.Name); err != nil {
				w.logger.Error("Could not watch created path", "path", ev.Name, "err", err)
			}
		}
	case ev.Op.Has(fsnotify.Write):
		raw.Kind = KindChange
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		// The path is gone, so tell the kinds apart by whether we had
		// been watching it as a directory.
		if w.forgetDir(ev.Name) {
			raw.Kind = KindUnlinkDir
		} else {
			raw.Kind = KindUnlink
		}
	default:
		// Chmod noise and anything fsnotify grows later.
		return RawEvent{}, false
	}

	return raw, true
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) {
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Error("Could not walk path", "path", path, "err", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.add(path); err != nil {
			w.logger.Error("Could not watch directory", "path", path, "err", err)
		}
		return nil
	})
	if err != nil {
		w.logger.Error("Could not walk directory tree", "path", root, "err", err)
	}
}

func (w *Watcher) add(path string) error {
	if err := w.fs.Add(path); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
	}
	return nil
}

func (w *Watcher) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[path]; ok {
		delete(w.dirs, path)
		return true
	}
	return false
}
