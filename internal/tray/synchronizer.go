// Package tray keeps the rendered menu in step with the filesystem.
//
// A Synchronizer owns the root list, the current trees and the watch set.
// Only its owner goroutine changes them: watchers and manual refreshes just
// trigger the coalescer, and every coalesced signal turns into one full
// rebuild handed to the Renderer.
package tray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trayfolders/internal/log"
	"trayfolders/internal/menu"
	"trayfolders/internal/watch"
	"trayfolders/pkg/types"
)

// RootLoader supplies the current root directories
type RootLoader interface {
	Load() ([]string, error)
}

// Renderer displays a freshly built set of trees, one per valid root
type Renderer interface {
	Render(trees []*types.MenuNode)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(trees []*types.MenuNode)

// Render calls f
func (f RendererFunc) Render(trees []*types.MenuNode) {
	f(trees)
}

// SyncStatus represents the current status of the synchronizer
type SyncStatus struct {
	Running          bool          // Whether the owner goroutine is active
	Watching         bool          // Whether filesystem changes trigger rebuilds
	Debounce         time.Duration // Quiet period before a rebuild
	Roots            []string      // Roots from the last load
	WatchDirectories []string      // Directories being watched
	LastBuild        time.Time     // Time of the last rebuild
	Builds           int           // Total rebuilds rendered
}

// Synchronizer rebuilds and re-renders menus on change
type Synchronizer struct {
	loader   RootLoader
	builder  *menu.Builder
	renderer Renderer

	coalescer   *watch.Coalescer
	watching    bool
	stopTimeout time.Duration
	logger      *log.Logger

	// Lock for the snapshot read by Trees, Roots and Status
	mutex     sync.RWMutex
	roots     []string
	trees     []*types.MenuNode
	watcher   *watch.Watcher
	lastBuild time.Time
	builds    int
	running   bool

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithDebounce sets the coalescing interval
func WithDebounce(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.coalescer = watch.NewCoalescer(d)
	}
}

// WithWatching enables or disables filesystem watching. Refresh works
// either way.
func WithWatching(enabled bool) Option {
	return func(s *Synchronizer) {
		s.watching = enabled
	}
}

// WithStopTimeout bounds each wait during Stop
func WithStopTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.stopTimeout = d
	}
}

// WithLogger sets the synchronizer's logger
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = l
	}
}

// NewSynchronizer creates a stopped synchronizer
func NewSynchronizer(loader RootLoader, builder *menu.Builder, renderer Renderer, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		loader:      loader,
		builder:     builder,
		renderer:    renderer,
		coalescer:   watch.NewCoalescer(watch.DefaultDebounce),
		watching:    true,
		stopTimeout: watch.DefaultStopTimeout,
		logger:      log.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start builds and renders once, establishes the watch set and starts the
// owner goroutine. It returns once the first render is done.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mutex.Lock()
	if s.running {
		s.mutex.Unlock()
		return fmt.Errorf("synchronizer already running")
	}
	if s.coalescer.Stopped() {
		s.mutex.Unlock()
		return fmt.Errorf("synchronizer cannot be restarted")
	}
	s.running = true
	s.mutex.Unlock()

	roots := s.loadRoots(nil)
	if s.watching {
		s.establishWatch(roots)
	}
	s.rebuild(roots)

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx)

	s.logger.With(log.F("roots", len(roots)), log.F("watching", s.watching)).Info("Menu synchronizer started")
	return nil
}

// Refresh asks for a rebuild. Rapid calls coalesce with each other and with
// filesystem changes.
func (s *Synchronizer) Refresh() {
	s.coalescer.Trigger()
}

func (s *Synchronizer) loop(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.coalescer.C():
			if s.coalescer.Stopped() {
				return
			}
			s.sync()
		}
	}
}

// sync reloads the roots, re-establishes watching when they changed and
// rebuilds every tree.
func (s *Synchronizer) sync() {
	s.mutex.RLock()
	previous := s.roots
	s.mutex.RUnlock()

	roots := s.loadRoots(previous)
	if s.watching && !sameRoots(previous, roots) {
		s.logger.With(log.F("roots", len(roots))).Info("Root list changed, re-establishing watches")
		s.establishWatch(roots)
	}
	s.rebuild(roots)
}

// loadRoots returns the loader's roots, or fallback when loading fails
func (s *Synchronizer) loadRoots(fallback []string) []string {
	roots, err := s.loader.Load()
	if err != nil {
		s.logger.WithError(err).Warn("Cannot load roots, keeping the previous list")
		return append([]string(nil), fallback...)
	}
	return roots
}

func (s *Synchronizer) rebuild(roots []string) {
	start := time.Now()
	trees := s.builder.BuildAll(roots)

	s.mutex.Lock()
	s.roots = roots
	s.trees = trees
	s.lastBuild = time.Now()
	s.builds++
	s.mutex.Unlock()

	s.logger.With(log.F("roots", len(roots)), log.F("menus", len(trees)), log.F("elapsed", time.Since(start).String())).Debug("Menu rebuilt")
	s.renderer.Render(trees)
}

// establishWatch replaces the watch set with one covering roots. Roots that
// cannot be watched are logged and left out.
func (s *Synchronizer) establishWatch(roots []string) {
	s.stopWatcher()

	w, err := watch.New(s.coalescer,
		watch.WithMaxDepth(s.builder.Options().MaxDepth),
		watch.WithWatchLogger(s.logger))
	if err != nil {
		s.logger.WithError(err).Error("Cannot create watcher, changes will not be picked up")
		return
	}

	for _, root := range roots {
		if err := w.AddRoot(root); err != nil {
			s.logger.WithError(err).Warn("Root excluded from watching")
		}
	}

	if err := w.Start(); err != nil {
		s.logger.WithError(err).Error("Cannot start watcher")
		_ = w.Stop(s.stopTimeout)
		return
	}

	s.mutex.Lock()
	s.watcher = w
	s.mutex.Unlock()
}

// stopWatcher tears down the current watch set, if any
func (s *Synchronizer) stopWatcher() error {
	s.mutex.Lock()
	w := s.watcher
	s.watcher = nil
	s.mutex.Unlock()

	if w == nil {
		return nil
	}
	if err := w.Stop(s.stopTimeout); err != nil {
		s.logger.WithError(err).Warn("Watcher did not stop cleanly")
		return err
	}
	return nil
}

// Stop halts rebuilding. The coalescer stops first so no rebuild starts
// after teardown begins, then the owner goroutine and the watcher are given
// at most timeout each. Timeouts are logged and shutdown continues.
func (s *Synchronizer) Stop(timeout time.Duration) error {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return nil
	}
	s.running = false
	s.mutex.Unlock()

	if timeout <= 0 {
		timeout = s.stopTimeout
	}

	s.coalescer.Stop()
	s.cancel()

	var firstErr error
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
		firstErr = fmt.Errorf("menu rebuild did not finish within %s", timeout)
		s.logger.With(log.F("timeout", timeout.String())).Warn("Rebuild still running at shutdown")
	}

	if err := s.stopWatcher(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.logger.Info("Menu synchronizer stopped")
	return firstErr
}

// Trees returns the last rendered trees
func (s *Synchronizer) Trees() []*types.MenuNode {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]*types.MenuNode(nil), s.trees...)
}

// Roots returns the roots from the last load
func (s *Synchronizer) Roots() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]string(nil), s.roots...)
}

// Status returns the current synchronizer status
func (s *Synchronizer) Status() SyncStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	status := SyncStatus{
		Running:   s.running,
		Watching:  s.watcher != nil && s.watcher.Running(),
		Debounce:  s.coalescer.Interval(),
		Roots:     append([]string(nil), s.roots...),
		LastBuild: s.lastBuild,
		Builds:    s.builds,
	}
	if s.watcher != nil {
		status.WatchDirectories = s.watcher.Directories()
	}
	return status
}

func sameRoots(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
