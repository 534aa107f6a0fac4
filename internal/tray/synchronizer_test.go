package tray

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"trayfolders/internal/log"
	"trayfolders/internal/menu"
	"trayfolders/pkg/testutils"
	"trayfolders/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

// staticLoader returns a mutable list of roots
type staticLoader struct {
	mu    sync.Mutex
	roots []string
	err   error
}

func (l *staticLoader) Load() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return append([]string(nil), l.roots...), nil
}

func (l *staticLoader) set(roots ...string) {
	l.mu.Lock()
	l.roots = roots
	l.mu.Unlock()
}

func (l *staticLoader) fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// recordingRenderer publishes every render on a channel
type recordingRenderer struct {
	renders chan []*types.MenuNode
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{renders: make(chan []*types.MenuNode, 64)}
}

func (r *recordingRenderer) Render(trees []*types.MenuNode) {
	r.renders <- trees
}

func (r *recordingRenderer) next(t *testing.T) []*types.MenuNode {
	t.Helper()
	select {
	case trees := <-r.renders:
		return trees
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a render")
		return nil
	}
}

// count drains renders arriving within d
func (r *recordingRenderer) count(d time.Duration) int {
	n := 0
	deadline := time.After(d)
	for {
		select {
		case <-r.renders:
			n++
		case <-deadline:
			return n
		}
	}
}

// drain discards renders already delivered
func (r *recordingRenderer) drain() {
	for {
		select {
		case <-r.renders:
		default:
			return
		}
	}
}

func newTestSynchronizer(t *testing.T, loader RootLoader, opts ...Option) (*Synchronizer, *recordingRenderer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewLogger(log.WithOutput(&buf))

	builder, err := menu.NewBuilder(menu.DefaultOptions(), menu.WithLogger(logger))
	require.NoError(t, err)

	renderer := newRecordingRenderer()
	all := append([]Option{WithDebounce(testDebounce), WithLogger(logger)}, opts...)
	s := NewSynchronizer(loader, builder, renderer, all...)
	t.Cleanup(func() { _ = s.Stop(time.Second) })
	return s, renderer
}

func TestSynchronizerInitialRender(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateDefaultTree(t, dir)
	missing := filepath.Join(dir, "missing")

	loader := &staticLoader{roots: []string{dir, missing}}
	s, renderer := newTestSynchronizer(t, loader)

	require.NoError(t, s.Start(context.Background()))

	trees := renderer.next(t)
	require.Len(t, trees, 1, "invalid roots are skipped")
	assert.Equal(t, dir, trees[0].Path)
	assert.True(t, types.TreesEqual(trees, s.Trees()))
	assert.Equal(t, []string{dir, missing}, s.Roots())

	status := s.Status()
	assert.True(t, status.Running)
	assert.True(t, status.Watching)
	assert.Equal(t, testDebounce, status.Debounce)
	assert.Equal(t, 1, status.Builds)
	assert.Contains(t, status.WatchDirectories, dir)
	assert.NotContains(t, status.WatchDirectories, missing)

	assert.Error(t, s.Start(context.Background()), "second start")
}

func TestSynchronizerRefreshCoalesces(t *testing.T) {
	dir := t.TempDir()
	loader := &staticLoader{roots: []string{dir}}
	s, renderer := newTestSynchronizer(t, loader, WithWatching(false))

	require.NoError(t, s.Start(context.Background()))
	renderer.next(t)
	assert.False(t, s.Status().Watching)

	for i := 0; i < 10; i++ {
		s.Refresh()
	}
	assert.Equal(t, 1, renderer.count(10*testDebounce))

	s.Refresh()
	assert.Equal(t, 1, renderer.count(10*testDebounce))
	assert.Equal(t, 3, s.Status().Builds)
}

func TestSynchronizerRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateDefaultTree(t, dir)
	loader := &staticLoader{roots: []string{dir}}
	s, renderer := newTestSynchronizer(t, loader)

	require.NoError(t, s.Start(context.Background()))
	first := renderer.next(t)
	require.Len(t, first, 1)

	added := filepath.Join(dir, "Projects", "todo.txt")
	require.NoError(t, os.WriteFile(added, []byte("x"), 0644))

	// Wait for a render that contains the new file
	deadline := time.After(5 * time.Second)
	for {
		select {
		case trees := <-renderer.renders:
			found := false
			trees[0].Walk(func(n *types.MenuNode) bool {
				if n.Path == added {
					found = true
				}
				return !found
			})
			if found {
				return
			}
		case <-deadline:
			t.Fatal("new file never appeared in the menu")
		}
	}
}

func TestSynchronizerRootListChange(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	loader := &staticLoader{roots: []string{first}}
	s, renderer := newTestSynchronizer(t, loader)

	require.NoError(t, s.Start(context.Background()))
	renderer.next(t)

	loader.set(first, second)
	s.Refresh()

	trees := renderer.next(t)
	require.Len(t, trees, 2)
	assert.Equal(t, second, trees[1].Path)
	assert.Contains(t, s.Status().WatchDirectories, second)

	// A failing load keeps the previous roots
	loader.fail(errors.New("disk gone"))
	s.Refresh()
	trees = renderer.next(t)
	assert.Len(t, trees, 2)
	assert.Equal(t, []string{first, second}, s.Roots())
}

func TestSynchronizerNoRenderAfterStop(t *testing.T) {
	dir := t.TempDir()
	loader := &staticLoader{roots: []string{dir}}
	s, renderer := newTestSynchronizer(t, loader)

	require.NoError(t, s.Start(context.Background()))
	renderer.next(t)

	s.Refresh()
	require.NoError(t, s.Stop(time.Second))
	// A rebuild may already have been signalled; drain it before asserting
	renderer.drain()

	status := s.Status()
	assert.False(t, status.Running)
	assert.False(t, status.Watching)

	s.Refresh()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0644))
	assert.Equal(t, 0, renderer.count(5*testDebounce))

	assert.NoError(t, s.Stop(time.Second), "second stop is a no-op")
	assert.Error(t, s.Start(context.Background()), "a stopped synchronizer is not restarted")
}

func TestSynchronizerContextCancel(t *testing.T) {
	dir := t.TempDir()
	loader := &staticLoader{roots: []string{dir}}
	s, renderer := newTestSynchronizer(t, loader, WithWatching(false))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	renderer.next(t)

	cancel()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("owner goroutine ignored cancellation")
	}

	s.Refresh()
	assert.Equal(t, 0, renderer.count(5*testDebounce))
}

func TestRendererFunc(t *testing.T) {
	var got []*types.MenuNode
	r := RendererFunc(func(trees []*types.MenuNode) { got = trees })
	node := &types.MenuNode{Name: "x"}
	r.Render([]*types.MenuNode{node})
	assert.Equal(t, []*types.MenuNode{node}, got)
}
