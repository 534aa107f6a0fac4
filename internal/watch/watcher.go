package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"trayfolders/internal/errors"
	"trayfolders/internal/log"

	"github.com/fsnotify/fsnotify"
)

// DefaultStopTimeout bounds how long Stop waits for the event loop
const DefaultStopTimeout = 2 * time.Second

// Notifier receives change notifications from the event loop. Coalescer
// implements it.
type Notifier interface {
	Trigger()
}

// Watcher observes root directories recursively with fsnotify and reports
// every change to its Notifier. It never touches menu state itself.
type Watcher struct {
	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	notify Notifier

	// maxDepth limits recursion below each root; negative means unbounded
	maxDepth int

	// Lock for running state and the watched set
	mutex sync.RWMutex

	roots []string
	// watched maps each watched directory to its depth below its root
	watched map[string]int

	stopChan chan struct{}
	done     chan struct{}
	running  bool

	logger *log.Logger
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithMaxDepth limits watching to directories at most depth levels below a
// root.
func WithMaxDepth(depth int) WatcherOption {
	return func(w *Watcher) {
		w.maxDepth = depth
	}
}

// WithWatchLogger sets the watcher's logger
func WithWatchLogger(l *log.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a watcher reporting to notify
func New(notify Notifier, opts ...WatcherOption) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewWatchError("failed to create fsnotify watcher", "", errors.WatchSetupFailed, err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		notify:    notify,
		maxDepth:  -1,
		watched:   make(map[string]int),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    log.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// AddRoot watches root and its subdirectories. A root that cannot be watched
// is reported as a WatchError; subdirectories that fail are logged and
// skipped.
func (w *Watcher) AddRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.NewWatchError("cannot access root", root, errors.WatchSetupFailed, err)
	}
	if !info.IsDir() {
		return errors.NewWatchError("root is not a directory", root, errors.WatchSetupFailed, nil)
	}

	if err := w.fsWatcher.Add(root); err != nil {
		return errors.NewWatchError("failed to watch root", root, errors.WatchSetupFailed, err)
	}

	w.mutex.Lock()
	w.watched[root] = 0
	found := false
	for _, r := range w.roots {
		if r == root {
			found = true
			break
		}
	}
	if !found {
		w.roots = append(w.roots, root)
	}
	w.mutex.Unlock()

	w.addTree(root, 0)
	w.logger.With(log.F("root", root)).Info("Watching root")
	return nil
}

// addTree watches the subdirectories of dir, which sits at depth below its
// root. A symlinked dir is walked through its target but watched under its
// own name, so events carry the paths the menus show.
func (w *Watcher) addTree(dir string, depth int) {
	walkRoot, err := filepath.EvalSymlinks(dir)
	if err != nil {
		walkRoot = dir
	}

	_ = filepath.WalkDir(walkRoot, func(walked string, d fs.DirEntry, err error) error {
		path := underDir(dir, walkRoot, walked)
		if err != nil {
			w.logger.With(log.F("directory", path), log.F("error", err)).Debug("Skipping unreadable directory")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() || walked == walkRoot {
			return nil
		}

		level := depth + relDepth(dir, path)
		if w.maxDepth >= 0 && level > w.maxDepth {
			return fs.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.logger.With(log.F("directory", path), log.F("error", err)).Warn("Failed to watch directory")
			return fs.SkipDir
		}
		w.mutex.Lock()
		w.watched[path] = level
		w.mutex.Unlock()
		return nil
	})
}

// underDir maps walked, found below walkRoot, to the same place below dir
func underDir(dir, walkRoot, walked string) string {
	if walkRoot == dir {
		return walked
	}
	rel, err := filepath.Rel(walkRoot, walked)
	if err != nil {
		return walked
	}
	return filepath.Join(dir, rel)
}

func relDepth(base, path string) int {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// Roots returns the roots added so far
func (w *Watcher) Roots() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return append([]string(nil), w.roots...)
}

// Directories returns every watched directory, sorted
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirs := make([]string, 0, len(w.watched))
	for d := range w.watched {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Start begins the event loop
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mutex.Unlock()

	go w.loop()

	w.logger.Debug("Watcher started")
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// An overflow means events were lost, so a rebuild is due anyway
			w.logger.With(log.F("error", err)).Warn("fsnotify watcher error")
			w.notify.Trigger()

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// Permission and timestamp changes do not alter the menu
	if event.Op == fsnotify.Chmod {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.watchCreated(event.Name)
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.forget(event.Name)
	}

	w.notify.Trigger()
}

// watchCreated extends the watch to a directory that appeared under a
// watched parent.
func (w *Watcher) watchCreated(dir string) {
	w.mutex.RLock()
	parentDepth, ok := w.watched[filepath.Dir(dir)]
	w.mutex.RUnlock()
	if !ok {
		return
	}

	level := parentDepth + 1
	if w.maxDepth >= 0 && level > w.maxDepth {
		return
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		w.logger.With(log.F("directory", dir), log.F("error", err)).Warn("Failed to watch new directory")
		return
	}
	w.mutex.Lock()
	w.watched[dir] = level
	w.mutex.Unlock()
	w.addTree(dir, level)
}

// forget drops dir and everything below it from the watched set. fsnotify
// removes the kernel watches on its own.
func (w *Watcher) forget(dir string) {
	prefix := dir + string(filepath.Separator)
	w.mutex.Lock()
	defer w.mutex.Unlock()
	for d := range w.watched {
		if d == dir || strings.HasPrefix(d, prefix) {
			delete(w.watched, d)
		}
	}
}

// Stop halts the event loop and releases the fsnotify watcher. It waits at
// most timeout for the loop to exit; on timeout it returns a WatchError and
// leaves the loop behind.
func (w *Watcher) Stop(timeout time.Duration) error {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		return w.fsWatcher.Close()
	}
	w.running = false
	close(w.stopChan)
	w.mutex.Unlock()

	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	closed := make(chan error, 1)
	go func() {
		closed <- w.fsWatcher.Close()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
	case <-timer.C:
		return errors.NewWatchError("watcher did not stop in time", strings.Join(w.Roots(), ", "), errors.WatchStopTimeout, nil)
	}

	select {
	case err := <-closed:
		if err != nil {
			w.logger.With(log.F("error", err)).Warn("Error closing fsnotify watcher")
		}
	case <-timer.C:
		return errors.NewWatchError("watcher did not stop in time", strings.Join(w.Roots(), ", "), errors.WatchStopTimeout, nil)
	}

	w.logger.Debug("Watcher stopped")
	return nil
}

// Running reports whether the event loop is active
func (w *Watcher) Running() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}
