package menu

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"trayfolders/internal/errors"
	"trayfolders/internal/log"
	"trayfolders/pkg/types"

	"github.com/gobwas/glob"
)

// DefaultMaxDepth is the deepest directory level whose contents are listed
const DefaultMaxDepth = 4

// OpenActionLabel is the title of the leaf that opens a directory in the
// platform file browser.
var OpenActionLabel = func() string {
	switch runtime.GOOS {
	case "windows":
		return "Open in Explorer"
	case "darwin":
		return "Open in Finder"
	default:
		return "Open in File Browser"
	}
}()

// Options control the shape of built trees
type Options struct {
	MaxDepth     int
	ShowFiles    bool
	FoldersFirst bool
	// Ignore holds glob patterns matched case-insensitively against base names
	Ignore []string
}

// DefaultOptions returns the options used when no settings file exists
func DefaultOptions() Options {
	return Options{
		MaxDepth:     DefaultMaxDepth,
		ShowFiles:    true,
		FoldersFirst: true,
	}
}

// DirReader lists the entry names of a directory
type DirReader func(dir string) ([]string, error)

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Builder produces MenuNode trees from root directories. A Builder holds no
// per-build state and may be shared.
type Builder struct {
	opts       Options
	ignore     []glob.Glob
	classifier *Classifier
	icons      IconProvider
	readDir    DirReader
	logger     *log.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithClassifier replaces the platform classifier
func WithClassifier(c *Classifier) Option {
	return func(b *Builder) {
		b.classifier = c
	}
}

// WithIcons replaces the extension-based icon provider
func WithIcons(p IconProvider) Option {
	return func(b *Builder) {
		b.icons = p
	}
}

// WithDirReader replaces directory enumeration
func WithDirReader(r DirReader) Option {
	return func(b *Builder) {
		b.readDir = r
	}
}

// WithLogger sets the logger receiving enumeration failures
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// CompileIgnore compiles ignore patterns the way the builder matches them
func CompileIgnore(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, errors.NewConfigError("invalid ignore pattern", p, errors.InvalidConfig, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// NewBuilder creates a builder. It fails only on ignore patterns that do not
// compile.
func NewBuilder(opts Options, options ...Option) (*Builder, error) {
	if opts.MaxDepth < 0 {
		return nil, errors.NewConfigError("max depth must not be negative", "menu.max_depth", errors.InvalidConfig, nil)
	}
	ignore, err := CompileIgnore(opts.Ignore)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		opts:       opts,
		ignore:     ignore,
		classifier: NewClassifier(),
		icons:      ExtensionIcons{},
		readDir:    readDirNames,
		logger:     log.Default(),
	}
	for _, o := range options {
		o(b)
	}
	return b, nil
}

// Options returns the options the builder was created with
func (b *Builder) Options() Options {
	return b.opts
}

// Classifier returns the classifier used for entries
func (b *Builder) Classifier() *Classifier {
	return b.classifier
}

// Build returns the tree for root. Only an invalid root is an error;
// unreadable directories below it appear as empty submenus.
func (b *Builder) Build(root string) (*types.MenuNode, error) {
	entry := b.classifier.Classify(root)
	if entry.Class != Directory {
		return nil, errors.NewFileError("root is not a readable directory", root, errors.InvalidPath, nil)
	}
	return b.buildDir(entry, 0), nil
}

// BuildAll builds one tree per valid root, in order. Invalid roots are logged
// and skipped.
func (b *Builder) BuildAll(roots []string) []*types.MenuNode {
	trees := make([]*types.MenuNode, 0, len(roots))
	for _, root := range roots {
		tree, err := b.Build(root)
		if err != nil {
			b.logger.WithError(err).Warn("Skipping root")
			continue
		}
		trees = append(trees, tree)
	}
	return trees
}

func (b *Builder) buildDir(e Entry, depth int) *types.MenuNode {
	node := &types.MenuNode{
		Name:  e.Name,
		Path:  e.Path,
		Kind:  types.KindDirectory,
		Icon:  b.icons.Icon(e.Path, Directory),
		Depth: depth,
		Children: []*types.MenuNode{
			{Name: OpenActionLabel, Path: e.Path, Kind: types.KindOpenAction, Icon: types.IconFolderOpen, Depth: depth + 1},
			{Kind: types.KindSeparator, Path: e.Path, Depth: depth + 1},
		},
	}
	if depth > b.opts.MaxDepth {
		return node
	}
	node.Expanded = true

	names, err := b.readDir(e.Path)
	if err != nil {
		b.logger.WithError(errors.NewFileError("cannot list directory", e.Path, errors.DirectoryUnreadable, err)).
			Warn("Showing directory as empty")
		return node
	}

	var dirs, files []Entry
	for _, name := range names {
		if b.ignored(name) {
			continue
		}
		child := b.classifier.Classify(filepath.Join(e.Path, name))
		switch child.Class {
		case Directory:
			dirs = append(dirs, child)
		case RegularFile, Shortcut:
			if b.opts.ShowFiles {
				files = append(files, child)
			}
		}
	}

	var ordered []Entry
	if b.opts.FoldersFirst {
		sortEntries(dirs)
		sortEntries(files)
		ordered = append(dirs, files...)
	} else {
		ordered = append(dirs, files...)
		sortEntries(ordered)
	}

	for _, child := range ordered {
		if child.Class == Directory {
			node.Children = append(node.Children, b.buildDir(child, depth+1))
			continue
		}
		kind := types.KindFile
		if child.Class == Shortcut {
			kind = types.KindShortcut
		}
		node.Children = append(node.Children, &types.MenuNode{
			Name:  child.Name,
			Path:  child.Path,
			Kind:  kind,
			Icon:  b.icons.Icon(child.Path, child.Class),
			Depth: depth + 1,
		})
	}
	return node
}

func (b *Builder) ignored(name string) bool {
	lower := strings.ToLower(name)
	for _, g := range b.ignore {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// sortEntries orders case-insensitively; the raw name breaks ties so the
// order is total.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a != b {
			return a < b
		}
		return entries[i].Name < entries[j].Name
	})
}
