package types

import (
	"fmt"
	"strings"
)

// LaunchMode selects how a LaunchTarget is started
type LaunchMode int

const (
	// LaunchSpawn starts Program directly as a native executable
	LaunchSpawn LaunchMode = iota
	// LaunchShellOpen hands the document to the platform default-open handler
	LaunchShellOpen
	// LaunchBrowse opens a directory in the platform file browser
	LaunchBrowse
)

// String returns the mode name
func (m LaunchMode) String() string {
	switch m {
	case LaunchSpawn:
		return "spawn"
	case LaunchShellOpen:
		return "shell-open"
	case LaunchBrowse:
		return "browse"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// LaunchTarget is the resolved form of a selected menu entry. It is computed
// fresh for every launch.
type LaunchTarget struct {
	Mode LaunchMode
	// Source is the path that was selected in the menu
	Source string
	// Target is the executable, document or directory the source resolves to
	Target string
	// Program and Args form the command line to start
	Program string
	Args    []string
	// Dir is the working directory of the started process
	Dir string
	// SearchPathPrefix is prepended to the child's PATH, empty for none
	SearchPathPrefix string
}

// String returns a one-line description for logs and dry runs
func (t LaunchTarget) String() string {
	cmd := strings.TrimSpace(t.Program + " " + strings.Join(t.Args, " "))
	s := fmt.Sprintf("%s %s -> %q in %s", t.Mode, t.Source, cmd, t.Dir)
	if t.SearchPathPrefix != "" {
		s += fmt.Sprintf(" (PATH+=%s)", t.SearchPathPrefix)
	}
	return s
}
