package dataset

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/lifelines/pkg/logger"
)

const defaultDebounce = 250 * time.Millisecond

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period after the last file event before a
// change is signalled.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger logs watcher errors to l.
func WithWatchLogger(l logger.Logger) WatchOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// Watcher signals when the dataset file changes. It watches the parent
// directory so editors that replace the file by rename are still seen, and
// SQLite WAL/SHM side files count as changes to the database.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      logger.Logger
	onChange chan struct{}
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewWatcher starts watching path.
func NewWatcher(path string, opts ...WatchOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		path:     path,
		debounce: defaultDebounce,
		onChange: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes returns a channel that receives a signal when the dataset changes.
// Signals coalesce: at most one is pending at a time.
func (w *Watcher) Changes() <-chan struct{} {
	return w.onChange
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	want := filepath.Base(w.path)
	return base == want || base == want+"-wal" || base == want+"-shm"
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: reset timer on each write.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.signal)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warn(context.Background(), "dataset watcher error", logger.String("path", w.path), logger.Error(err))
			}
		}
	}
}

func (w *Watcher) signal() {
	select {
	case <-w.done:
	case w.onChange <- struct{}{}:
	default: // already signalled
	}
}
