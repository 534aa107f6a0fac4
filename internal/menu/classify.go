// Package menu turns configured root directories into MenuNode trees.
//
// Classification and tree building never fail: anything that cannot be read
// is either excluded or shown as an empty submenu, and the problem is logged.
package menu

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Class is the closed set of entry classifications
type Class int

const (
	// Unreadable covers missing entries, stat failures and special files
	Unreadable Class = iota
	Directory
	RegularFile
	Shortcut
)

// String returns the class name
func (c Class) String() string {
	switch c {
	case Directory:
		return "directory"
	case RegularFile:
		return "file"
	case Shortcut:
		return "shortcut"
	default:
		return "unreadable"
	}
}

// Entry is a classified filesystem path
type Entry struct {
	Path  string
	Name  string
	Class Class
}

// DefaultShortcutExtensions returns the link extensions recognized on the
// current platform.
func DefaultShortcutExtensions() []string {
	if runtime.GOOS == "windows" {
		return []string{".lnk"}
	}
	return nil
}

// Classifier maps paths to entries. It is safe for concurrent use.
type Classifier struct {
	shortcutExts map[string]bool
}

// NewClassifier creates a classifier using the platform's shortcut extensions
func NewClassifier() *Classifier {
	return NewClassifierWithExtensions(DefaultShortcutExtensions())
}

// NewClassifierWithExtensions creates a classifier recognizing exts
// (case-insensitive, with leading dot) as shortcuts.
func NewClassifierWithExtensions(exts []string) *Classifier {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return &Classifier{shortcutExts: set}
}

// IsShortcutName reports whether name carries a shortcut extension
func (c *Classifier) IsShortcutName(name string) bool {
	return c.shortcutExts[strings.ToLower(filepath.Ext(name))]
}

// Classify stats path, following symlinks, and returns its classification.
func (c *Classifier) Classify(path string) Entry {
	e := Entry{Path: path, Name: DisplayName(path), Class: Unreadable}

	info, err := os.Stat(path)
	if err != nil {
		return e
	}

	switch {
	case info.IsDir():
		e.Class = Directory
	case info.Mode().IsRegular():
		if c.IsShortcutName(path) {
			e.Class = Shortcut
		} else {
			e.Class = RegularFile
		}
	}
	return e
}

// DisplayName is the final path component, or the whole path when there is
// none (a filesystem or drive root).
func DisplayName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return path
	}
	if vol := filepath.VolumeName(path); vol != "" && len(filepath.Clean(path)) <= len(vol)+1 {
		return path
	}
	return base
}
