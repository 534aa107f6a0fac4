package launch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"trayfolders/internal/errors"
	"trayfolders/internal/log"
	"trayfolders/internal/menu"
	"trayfolders/pkg/testutils"
	"trayfolders/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlatform() Platform {
	return Platform{
		Name:         "test",
		IsExecutable: hasExtension(".exe"),
		OpenCommand: func(target string) (string, []string) {
			return "opener", []string{target}
		},
		BrowseCommand: func(dir string) (string, []string) {
			return "browser", []string{dir}
		},
		PathKey: "PATH",
	}
}

// recorder captures started commands instead of running them
type recorder struct {
	mu   sync.Mutex
	cmds []*exec.Cmd
	err  error
}

func (r *recorder) start(cmd *exec.Cmd) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return r.err
}

func (r *recorder) last(t *testing.T) *exec.Cmd {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.cmds, "no command was started")
	return r.cmds[len(r.cmds)-1]
}

type fakeBrowser struct {
	shown []string
	err   error
}

func (b *fakeBrowser) ShowFolder(_ context.Context, dir string) error {
	b.shown = append(b.shown, dir)
	return b.err
}

func newTestResolver(t *testing.T, opts ...Option) (*Resolver, *recorder, *bytes.Buffer) {
	t.Helper()
	rec := &recorder{}
	var buf bytes.Buffer
	base := []Option{
		WithPlatform(testPlatform()),
		WithClassifier(menu.NewClassifierWithExtensions([]string{".lnk"})),
		WithShortcutReader(nil),
		WithBrowser(nil),
		WithStarter(rec.start),
		WithLogger(log.NewLogger(log.WithOutput(&buf))),
	}
	return NewResolver(append(base, opts...)...), rec, &buf
}

func envValue(env []string, key string) (string, bool) {
	for _, kv := range env {
		if name, value, ok := strings.Cut(kv, "="); ok && name == key {
			return value, true
		}
	}
	return "", false
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()
	r, _, _ := newTestResolver(t)

	target, err := r.Resolve(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, types.LaunchBrowse, target.Mode)
	assert.Equal(t, "browser", target.Program)
	assert.Equal(t, []string{dir}, target.Args)
	assert.Equal(t, dir, target.Dir)
	assert.Empty(t, target.SearchPathPrefix)
}

func TestResolveRegularFile(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{"docs/report.pdf": "%PDF", "bin/tool.exe": "MZ"})
	docs := filepath.Join(dir, "docs")
	bin := filepath.Join(dir, "bin")

	r, _, _ := newTestResolver(t)

	t.Run("document goes to default-open", func(t *testing.T) {
		path := filepath.Join(docs, "report.pdf")
		target, err := r.Resolve(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, types.LaunchShellOpen, target.Mode)
		assert.Equal(t, "opener", target.Program)
		assert.Equal(t, []string{path}, target.Args)
		assert.Equal(t, docs, target.Dir)
		assert.Equal(t, docs, target.SearchPathPrefix)
	})

	t.Run("native executable is spawned", func(t *testing.T) {
		path := filepath.Join(bin, "tool.exe")
		target, err := r.Resolve(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, types.LaunchSpawn, target.Mode)
		assert.Equal(t, path, target.Program)
		assert.Empty(t, target.Args)
		assert.Equal(t, bin, target.Dir)
		assert.Equal(t, bin, target.SearchPathPrefix)
	})
}

func TestResolveExecBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not meaningful on windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "run.sh")
	plain := filepath.Join(dir, "notes.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(plain, []byte("#!/bin/sh\n"), 0644))

	p := testPlatform()
	p.IsExecutable = hasExecBit
	r, _, _ := newTestResolver(t, WithPlatform(p))

	target, err := r.Resolve(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, types.LaunchSpawn, target.Mode)

	target, err = r.Resolve(context.Background(), plain)
	require.NoError(t, err)
	assert.Equal(t, types.LaunchShellOpen, target.Mode)
}

func TestResolveShortcut(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{
		"menu/Editor.lnk":    "",
		"apps/editor.exe":    "MZ",
		"apps/manual.pdf":    "%PDF",
		"apps/plugins/x.dll": "",
	})
	link := filepath.Join(dir, "menu", "Editor.lnk")
	apps := filepath.Join(dir, "apps")
	exe := filepath.Join(apps, "editor.exe")

	read := func(sc Shortcut, err error) Option {
		return WithShortcutReader(ShortcutReaderFunc(func(_ context.Context, path string) (Shortcut, error) {
			assert.Equal(t, link, path)
			return sc, err
		}))
	}

	t.Run("working directory defaults to target directory", func(t *testing.T) {
		r, _, _ := newTestResolver(t, read(Shortcut{Target: exe, Arguments: "--new-window  file.txt"}, nil))
		target, err := r.Resolve(context.Background(), link)
		require.NoError(t, err)

		assert.Equal(t, types.LaunchSpawn, target.Mode)
		assert.Equal(t, link, target.Source)
		assert.Equal(t, exe, target.Program)
		assert.Equal(t, []string{"--new-window", "file.txt"}, target.Args)
		assert.Equal(t, apps, target.Dir)
		assert.Equal(t, apps, target.SearchPathPrefix)
	})

	t.Run("recorded working directory wins", func(t *testing.T) {
		plugins := filepath.Join(apps, "plugins")
		r, _, _ := newTestResolver(t, read(Shortcut{Target: exe, WorkingDir: plugins}, nil))
		target, err := r.Resolve(context.Background(), link)
		require.NoError(t, err)

		assert.Equal(t, plugins, target.Dir)
		assert.Equal(t, plugins, target.SearchPathPrefix)
	})

	t.Run("document target uses default-open", func(t *testing.T) {
		manual := filepath.Join(apps, "manual.pdf")
		r, _, _ := newTestResolver(t, read(Shortcut{Target: manual}, nil))
		target, err := r.Resolve(context.Background(), link)
		require.NoError(t, err)

		assert.Equal(t, types.LaunchShellOpen, target.Mode)
		assert.Equal(t, "opener", target.Program)
		assert.Equal(t, []string{manual}, target.Args)
	})

	t.Run("directory target is browsed", func(t *testing.T) {
		r, _, _ := newTestResolver(t, read(Shortcut{Target: apps}, nil))
		target, err := r.Resolve(context.Background(), link)
		require.NoError(t, err)

		assert.Equal(t, types.LaunchBrowse, target.Mode)
		assert.Equal(t, apps, target.Target)
		assert.Equal(t, link, target.Source)
	})

	t.Run("unreadable shortcut", func(t *testing.T) {
		r, _, _ := newTestResolver(t, read(Shortcut{}, fmt.Errorf("bad link")))
		_, err := r.Resolve(context.Background(), link)
		require.Error(t, err)
		assert.Equal(t, errors.ShortcutInvalid, errors.KindOf(err))
	})

	t.Run("empty target", func(t *testing.T) {
		r, _, _ := newTestResolver(t, read(Shortcut{Target: "  "}, nil))
		_, err := r.Resolve(context.Background(), link)
		assert.Equal(t, errors.ShortcutInvalid, errors.KindOf(err))
	})

	t.Run("missing target", func(t *testing.T) {
		missing := filepath.Join(apps, "gone.exe")
		r, _, _ := newTestResolver(t, read(Shortcut{Target: missing}, nil))
		_, err := r.Resolve(context.Background(), link)
		require.Error(t, err)

		var launchErr *errors.LaunchError
		require.True(t, errors.As(err, &launchErr))
		assert.Equal(t, errors.LaunchFailed, launchErr.Kind())
		assert.Equal(t, link, launchErr.Path())
		assert.Equal(t, missing, launchErr.Target())
	})

	t.Run("no reader browses the containing directory", func(t *testing.T) {
		r, _, _ := newTestResolver(t)
		target, err := r.Resolve(context.Background(), link)
		require.NoError(t, err)

		assert.Equal(t, types.LaunchBrowse, target.Mode)
		assert.Equal(t, filepath.Join(dir, "menu"), target.Target)
		assert.Equal(t, link, target.Source)
	})
}

func TestResolveMissing(t *testing.T) {
	r, _, _ := newTestResolver(t)
	_, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "nothing-here"))
	require.Error(t, err)
	assert.True(t, errors.IsLaunchError(err))
	assert.Equal(t, errors.LaunchFailed, errors.KindOf(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLaunchSearchPathIsLaunchLocal(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTree(t, dir, map[string]string{"tool.exe": "MZ", "readme.txt": "hi"})
	before := os.Getenv("PATH")

	t.Run("failing resolution", func(t *testing.T) {
		r, _, _ := newTestResolver(t, WithEnviron(os.Environ))
		err := r.Launch(context.Background(), filepath.Join(dir, "missing.exe"))
		require.Error(t, err)
		assert.Equal(t, before, os.Getenv("PATH"))
	})

	t.Run("failing spawn", func(t *testing.T) {
		r, rec, logs := newTestResolver(t, WithEnviron(os.Environ))
		rec.err = fmt.Errorf("exec format error")

		err := r.Launch(context.Background(), filepath.Join(dir, "tool.exe"))
		require.Error(t, err)
		assert.Equal(t, errors.LaunchFailed, errors.KindOf(err))
		assert.Equal(t, before, os.Getenv("PATH"))
		assert.Contains(t, logs.String(), "Launch failed")

		// the child still received the extended path
		path, ok := envValue(rec.last(t).Env, "PATH")
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(path, dir))
	})

	t.Run("successful spawn", func(t *testing.T) {
		r, rec, _ := newTestResolver(t, WithEnviron(os.Environ))

		require.NoError(t, r.Launch(context.Background(), filepath.Join(dir, "readme.txt")))
		assert.Equal(t, before, os.Getenv("PATH"))

		cmd := rec.last(t)
		assert.Equal(t, dir, cmd.Dir)
		assert.Equal(t, []string{"opener", filepath.Join(dir, "readme.txt")}, cmd.Args)
	})
}

func TestConcurrentLaunches(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for i := 0; i < 16; i++ {
		name := fmt.Sprintf("app%02d/run.exe", i)
		testutils.CreateTree(t, root, map[string]string{name: "MZ"})
		paths = append(paths, filepath.Join(root, filepath.FromSlash(name)))
	}
	before := os.Getenv("PATH")

	r, rec, _ := newTestResolver(t, WithEnviron(func() []string { return []string{"PATH=/usr/bin", "HOME=/home/me"} }))

	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			assert.NoError(t, r.Launch(context.Background(), p))
		}(p)
	}
	wg.Wait()

	require.Len(t, rec.cmds, len(paths))
	for _, cmd := range rec.cmds {
		path, ok := envValue(cmd.Env, "PATH")
		require.True(t, ok)
		assert.Equal(t, cmd.Dir+string(os.PathListSeparator)+"/usr/bin", path, "each child sees only its own directory")
		home, _ := envValue(cmd.Env, "HOME")
		assert.Equal(t, "/home/me", home)
	}
	assert.Equal(t, before, os.Getenv("PATH"))
}

func TestLaunchDirectory(t *testing.T) {
	dir := t.TempDir()

	t.Run("desktop file manager", func(t *testing.T) {
		b := &fakeBrowser{}
		r, rec, _ := newTestResolver(t, WithBrowser(b))

		require.NoError(t, r.Launch(context.Background(), dir))
		assert.Equal(t, []string{dir}, b.shown)
		assert.Empty(t, rec.cmds)
	})

	t.Run("falls back to browse command", func(t *testing.T) {
		b := &fakeBrowser{err: fmt.Errorf("no file manager")}
		r, rec, _ := newTestResolver(t, WithBrowser(b))

		require.NoError(t, r.Launch(context.Background(), dir))
		assert.Equal(t, []string{"browser", dir}, rec.last(t).Args)
		assert.Equal(t, dir, rec.last(t).Dir)
	})
}

// hungBrowser never answers before its context ends
type hungBrowser struct{}

func (hungBrowser) ShowFolder(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestLaunchDirectoryHungFileManager(t *testing.T) {
	dir := t.TempDir()
	r, rec, _ := newTestResolver(t, WithBrowser(hungBrowser{}), WithBrowserTimeout(50*time.Millisecond))

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Activate(dir)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("activation waited on the file manager without limit")
	}
	assert.Equal(t, []string{"browser", dir}, rec.last(t).Args)
}

func TestActivateSwallowsFailures(t *testing.T) {
	r, rec, logs := newTestResolver(t)

	assert.NotPanics(t, func() {
		r.Activate(filepath.Join(t.TempDir(), "missing"))
	})
	assert.Empty(t, rec.cmds)
	assert.Contains(t, logs.String(), "Cannot resolve launch target")

	var activator Activator = r
	assert.NotNil(t, activator)
}

func TestChildEnv(t *testing.T) {
	sep := string(os.PathListSeparator)

	t.Run("prepends to existing path", func(t *testing.T) {
		environ := []string{"HOME=/home/me", "PATH=/usr/bin", "LANG=C"}
		env := testPlatform().ChildEnv(environ, "/opt/app")

		assert.Equal(t, []string{"HOME=/home/me", "PATH=/opt/app" + sep + "/usr/bin", "LANG=C"}, env)
		assert.Equal(t, "PATH=/usr/bin", environ[1], "parent environment slice is untouched")
	})

	t.Run("adds a missing path", func(t *testing.T) {
		env := testPlatform().ChildEnv([]string{"HOME=/home/me"}, "/opt/app")
		assert.Equal(t, []string{"HOME=/home/me", "PATH=/opt/app"}, env)
	})

	t.Run("empty prefix is a copy", func(t *testing.T) {
		environ := []string{"PATH=/usr/bin"}
		assert.Equal(t, environ, testPlatform().ChildEnv(environ, ""))
	})

	t.Run("case-insensitive names", func(t *testing.T) {
		p := testPlatform()
		p.PathKey = "Path"
		p.CaseInsensitiveEnv = true
		env := p.ChildEnv([]string{`PATH=C:\Windows`}, `C:\Tools`)
		assert.Equal(t, []string{`PATH=C:\Tools` + sep + `C:\Windows`}, env)
	})
}

func TestCommand(t *testing.T) {
	r, _, _ := newTestResolver(t, WithEnviron(func() []string { return []string{"PATH=/bin"} }))
	cmd := r.Command(types.LaunchTarget{
		Mode:             types.LaunchSpawn,
		Program:          "/opt/app/run",
		Args:             []string{"-v"},
		Dir:              "/opt/app",
		SearchPathPrefix: "/opt/app",
	})

	assert.Equal(t, []string{"/opt/app/run", "-v"}, cmd.Args)
	assert.Equal(t, "/opt/app", cmd.Dir)
	assert.Equal(t, []string{"PATH=/opt/app" + string(os.PathListSeparator) + "/bin"}, cmd.Env)
}

func TestDefaultPlatform(t *testing.T) {
	p := DefaultPlatform()
	require.NotNil(t, p.IsExecutable)

	program, args := p.OpenCommand("/x/doc.pdf")
	assert.NotEmpty(t, program)
	assert.Contains(t, args, "/x/doc.pdf")

	program, args = p.BrowseCommand("/x")
	assert.NotEmpty(t, program)
	assert.Contains(t, args, "/x")
}
