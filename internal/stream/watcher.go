package stream

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last file event before a
// re-scan fires.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-runs a scan whenever files under the root change. Each re-scan
// produces a fresh Result that supersedes the previous one; results are never
// mutated in place.
type Watcher struct {
	streamer *Streamer
	opts     Options
	debounce time.Duration
	log      *logrus.Logger
	watcher  *fsnotify.Watcher
	filter   *fileFilter
}

// NewWatcher creates a watcher over opts.Root using the same filters as the
// streamer, so excluded directories are never watched.
func NewWatcher(streamer *Streamer, opts Options, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	filter, err := newFileFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		streamer: streamer,
		opts:     opts,
		debounce: debounce,
		log:      streamer.log,
		watcher:  fsw,
		filter:   filter,
	}

	if err := w.addRecursive(opts.Root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Run performs an initial scan, then blocks re-scanning on changes until ctx
// is cancelled. onResult is invoked with every fresh Result, the initial one
// included.
func (w *Watcher) Run(ctx context.Context, onResult func(*Result)) error {
	defer w.watcher.Close()

	result, err := w.streamer.Stream(ctx, w.opts)
	if err != nil {
		return err
	}
	onResult(result)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// New directories need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if fi, statErr := os.Stat(event.Name); statErr == nil && fi.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")

		case <-fire:
			timer = nil
			fire = nil
			result, err := w.streamer.Stream(ctx, w.opts)
			if err != nil {
				return err
			}
			onResult(result)
		}
	}
}

// relevant filters out events for paths the scan would never touch.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.opts.Root, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return !w.filter.SkipDir(rel)
}

// addRecursive watches dir and every non-excluded directory below it.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr // unreadable subtrees are skipped, not fatal
		}
		rel, relErr := filepath.Rel(w.opts.Root, path)
		if relErr == nil && rel != "." && w.filter.SkipDir(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
