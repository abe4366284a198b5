// Package watcher turns fsnotify events on the project tree into a
// ports.WatchEvent stream.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// alwaysSkipped are never watched, whatever the configured ignore list says.
var alwaysSkipped = []string{".git", ".jj"}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	hasher    ports.Hasher
	root      string
	ignore    []string
	events    chan ports.WatchEvent
	errs      func(error)

	// digests holds the last seen content hash per file. It is only
	// touched by the event goroutine.
	digests map[string]uint64

	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithErrorHandler receives fsnotify errors. They are dropped by default.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.errs = fn
	}
}

// NewWatcher creates a watcher. When hasher is non-nil, writes that leave a
// file's content unchanged are suppressed.
func NewWatcher(hasher ports.Hasher, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrWatcherStartFailed)
	}
	w := &Watcher{
		fsWatcher: fsw,
		hasher:    hasher,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		errs:      func(error) {},
		digests:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start subscribes to root and every directory below it, then forwards
// events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string, ignore []string) error {
	w.root = filepath.Clean(root)
	w.ignore = append(slices.Clone(alwaysSkipped), ignore...)

	for dir := range w.dirs(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(domain.Wrap(err, domain.ErrWatcherStartFailed), "dir", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop closes the fsnotify subscription, which ends the event stream.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsWatcher.Close()
	})
	return err
}

// Events returns the event stream. Ranging over it a second time yields
// nothing once the stream has ended.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// dirs yields root and every directory below it that is not ignored.
func (w *Watcher) dirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.skip(d.Name()) {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) skip(name string) bool {
	return slices.Contains(w.ignore, name)
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			watchEvent, ok := w.convert(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				_ = w.Stop()
				return
			}

			if watchEvent.Operation == ports.OpCreate {
				w.addCreatedDir(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.errs(err)
		}
	}
}

// addCreatedDir subscribes to a directory created after Start, with its subtree.
func (w *Watcher) addCreatedDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.skip(info.Name()) {
		return
	}
	for dir := range w.dirs(path) {
		_ = w.fsWatcher.Add(dir)
	}
}

// convert maps an fsnotify event. Events inside ignored directories and
// writes that did not change the content are dropped.
func (w *Watcher) convert(event fsnotify.Event) (ports.WatchEvent, bool) {
	if rel, err := filepath.Rel(w.root, filepath.Dir(event.Name)); err == nil {
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			if w.skip(part) {
				return ports.WatchEvent{}, false
			}
		}
	}

	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
		if !w.contentChanged(event.Name) {
			return ports.WatchEvent{}, false
		}
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
		w.contentChanged(event.Name)
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
		delete(w.digests, event.Name)
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
		delete(w.digests, event.Name)
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}

// contentChanged records the file's hash and reports whether it differs
// from the previous one. Files that cannot be hashed count as changed.
func (w *Watcher) contentChanged(path string) bool {
	if w.hasher == nil {
		return true
	}
	sum, err := w.hasher.ComputeFileHash(path)
	if err != nil {
		delete(w.digests, path)
		return true
	}
	prev, seen := w.digests[path]
	w.digests[path] = sum
	return !seen || prev != sum
}
