package launch

import (
	"context"
	"os"
	"strings"
)

// Platform describes how the host starts executables, opens documents and
// shows directories. Each supported OS provides one in its own file.
type Platform struct {
	Name string
	// IsExecutable reports whether a regular file is a native executable
	// that should be spawned directly.
	IsExecutable func(path string, info os.FileInfo) bool
	// OpenCommand is the default-open mechanism for documents
	OpenCommand func(target string) (string, []string)
	// BrowseCommand opens a directory in the file browser
	BrowseCommand func(dir string) (string, []string)
	// PathKey is the name of the search path variable
	PathKey string
	// CaseInsensitiveEnv is set where environment names ignore case
	CaseInsensitiveEnv bool
}

// Browser shows a directory through a desktop service rather than a
// command. Launch falls back to BrowseCommand when it fails.
type Browser interface {
	ShowFolder(ctx context.Context, dir string) error
}

func hasExecBit(_ string, info os.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}

func hasExtension(exts ...string) func(string, os.FileInfo) bool {
	return func(path string, info os.FileInfo) bool {
		if !info.Mode().IsRegular() {
			return false
		}
		lower := strings.ToLower(path)
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return false
	}
}

// ChildEnv returns environ with prefix prepended to the search path. The
// slice is a copy; environ is not modified.
func (p Platform) ChildEnv(environ []string, prefix string) []string {
	env := make([]string, 0, len(environ)+1)
	key := p.PathKey
	if key == "" {
		key = "PATH"
	}
	replaced := false
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if ok && !replaced && p.sameKey(name, key) {
			if prefix != "" {
				if value != "" {
					value = prefix + string(os.PathListSeparator) + value
				} else {
					value = prefix
				}
			}
			env = append(env, name+"="+value)
			replaced = true
			continue
		}
		env = append(env, kv)
	}
	if !replaced && prefix != "" {
		env = append(env, key+"="+prefix)
	}
	return env
}

func (p Platform) sameKey(a, b string) bool {
	if p.CaseInsensitiveEnv {
		return strings.EqualFold(a, b)
	}
	return a == b
}
