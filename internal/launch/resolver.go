// Package launch resolves selected menu entries into processes and starts
// them.
//
// The extended search path a launch needs is passed to the child process
// only. The resolver never changes its own process environment, so launches
// may run concurrently.
package launch

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"trayfolders/internal/errors"
	"trayfolders/internal/log"
	"trayfolders/internal/menu"
	"trayfolders/pkg/types"
)

// DefaultBrowserTimeout bounds a request to the desktop file manager
const DefaultBrowserTimeout = 2 * time.Second

// Activator is the single entry point renderers call with the path stored
// in a clicked node.
type Activator interface {
	Activate(path string)
}

// StartFunc starts a prepared command without waiting for it
type StartFunc func(cmd *exec.Cmd) error

// startDetached starts cmd and reaps it in the background
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// Resolver turns paths into LaunchTargets and starts them
type Resolver struct {
	platform   Platform
	classifier *menu.Classifier
	shortcuts  ShortcutReader
	browser    Browser
	// browserTimeout bounds each request to the desktop file manager
	browserTimeout time.Duration
	start          StartFunc
	environ        func() []string
	logger         *log.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithPlatform replaces the host platform description
func WithPlatform(p Platform) Option {
	return func(r *Resolver) {
		r.platform = p
	}
}

// WithClassifier replaces the entry classifier
func WithClassifier(c *menu.Classifier) Option {
	return func(r *Resolver) {
		r.classifier = c
	}
}

// WithShortcutReader sets how link files are read. nil disables shortcut
// resolution.
func WithShortcutReader(sr ShortcutReader) Option {
	return func(r *Resolver) {
		r.shortcuts = sr
	}
}

// WithBrowser sets the desktop service used for directories. nil means the
// platform browse command is always used.
func WithBrowser(b Browser) Option {
	return func(r *Resolver) {
		r.browser = b
	}
}

// WithBrowserTimeout bounds how long a directory waits on the desktop file
// manager before the platform browse command is used instead
func WithBrowserTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.browserTimeout = d
		}
	}
}

// WithStarter replaces process creation
func WithStarter(start StartFunc) Option {
	return func(r *Resolver) {
		r.start = start
	}
}

// WithEnviron replaces the source of the parent environment
func WithEnviron(environ func() []string) Option {
	return func(r *Resolver) {
		r.environ = environ
	}
}

// WithLogger sets the logger receiving launch reports
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a resolver for the current platform
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		platform:       DefaultPlatform(),
		classifier:     menu.NewClassifier(),
		shortcuts:      defaultShortcutReader(),
		browser:        defaultBrowser(),
		browserTimeout: DefaultBrowserTimeout,
		start:          startDetached,
		environ:        os.Environ,
		logger:         log.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve computes the LaunchTarget for path without starting anything
func (r *Resolver) Resolve(ctx context.Context, path string) (types.LaunchTarget, error) {
	entry := r.classifier.Classify(path)
	switch entry.Class {
	case menu.Directory:
		return r.resolveDirectory(path), nil
	case menu.RegularFile:
		return r.resolveFile(path)
	case menu.Shortcut:
		return r.resolveShortcut(ctx, path)
	default:
		return types.LaunchTarget{}, errors.NewLaunchError("entry not found", path, errors.LaunchFailed, os.ErrNotExist)
	}
}

func (r *Resolver) resolveDirectory(dir string) types.LaunchTarget {
	program, args := r.platform.BrowseCommand(dir)
	return types.LaunchTarget{
		Mode:    types.LaunchBrowse,
		Source:  dir,
		Target:  dir,
		Program: program,
		Args:    args,
		Dir:     dir,
	}
}

func (r *Resolver) resolveFile(path string) (types.LaunchTarget, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.LaunchTarget{}, errors.NewLaunchError("cannot stat file", path, errors.LaunchFailed, err)
	}
	dir := filepath.Dir(path)
	return r.targetFor(path, path, info, dir, nil), nil
}

func (r *Resolver) resolveShortcut(ctx context.Context, path string) (types.LaunchTarget, error) {
	if r.shortcuts == nil {
		// Without a reader the best we can do is show where the link lives
		t := r.resolveDirectory(filepath.Dir(path))
		t.Source = path
		return t, nil
	}

	sc, err := r.shortcuts.ReadShortcut(ctx, path)
	if err != nil {
		return types.LaunchTarget{}, errors.NewLaunchError("cannot read shortcut", path, errors.ShortcutInvalid, err)
	}
	if strings.TrimSpace(sc.Target) == "" {
		return types.LaunchTarget{}, errors.NewLaunchError("shortcut has no target", path, errors.ShortcutInvalid, nil)
	}

	info, err := os.Stat(sc.Target)
	if err != nil {
		return types.LaunchTarget{}, errors.NewLaunchError("shortcut target not found", path, errors.LaunchFailed, err).WithTarget(sc.Target)
	}
	if info.IsDir() {
		t := r.resolveDirectory(sc.Target)
		t.Source = path
		return t, nil
	}

	workDir := sc.WorkingDir
	if workDir == "" {
		workDir = filepath.Dir(sc.Target)
	}
	return r.targetFor(path, sc.Target, info, workDir, strings.Fields(sc.Arguments)), nil
}

// targetFor spawns native executables directly and hands anything else to
// the default-open mechanism. Both get workDir on their search path.
func (r *Resolver) targetFor(source, target string, info os.FileInfo, workDir string, args []string) types.LaunchTarget {
	t := types.LaunchTarget{
		Source:           source,
		Target:           target,
		Dir:              workDir,
		SearchPathPrefix: workDir,
	}
	if r.platform.IsExecutable(target, info) {
		t.Mode = types.LaunchSpawn
		t.Program = target
		t.Args = args
		return t
	}
	t.Mode = types.LaunchShellOpen
	t.Program, t.Args = r.platform.OpenCommand(target)
	return t
}

// Command prepares the process for t. The child receives its own copy of
// the environment with the search path extended.
func (r *Resolver) Command(t types.LaunchTarget) *exec.Cmd {
	cmd := exec.Command(t.Program, t.Args...)
	cmd.Dir = t.Dir
	cmd.Env = r.platform.ChildEnv(r.environ(), t.SearchPathPrefix)
	return cmd
}

// Launch resolves path and starts it. Failures are logged and returned as
// LaunchErrors; nothing is retried.
func (r *Resolver) Launch(ctx context.Context, path string) error {
	logger := r.logger.WithContext(ctx).With(log.F("path", path))

	t, err := r.Resolve(ctx, path)
	if err != nil {
		logger.WithError(err).Error("Cannot resolve launch target")
		return err
	}

	if t.Mode == types.LaunchBrowse && r.browser != nil {
		showCtx, cancel := context.WithTimeout(ctx, r.browserTimeout)
		err := r.browser.ShowFolder(showCtx, t.Target)
		cancel()
		if err == nil {
			logger.With(log.F("target", t.Target)).Info("Opened folder")
			return nil
		}
		logger.With(log.F("error", err)).Debug("Desktop file manager unavailable, using browse command")
	}

	if err := r.start(r.Command(t)); err != nil {
		launchErr := errors.NewLaunchError("launch failed", path, errors.LaunchFailed, err).WithTarget(t.Target)
		logger.WithError(launchErr).Error("Launch failed")
		return launchErr
	}

	logger.With(log.F("mode", t.Mode.String()), log.F("program", t.Program)).Info("Launched")
	return nil
}

// Activate launches path and swallows any failure after it is logged. It is
// the callback handed to menu renderers.
func (r *Resolver) Activate(path string) {
	_ = r.Launch(context.Background(), path)
}
