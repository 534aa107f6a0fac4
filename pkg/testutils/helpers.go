package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTree creates files below dir. Keys are slash-separated relative paths;
// a key ending in "/" creates an empty directory.
func CreateTree(t *testing.T, dir string, entries map[string]string) {
	t.Helper()
	for name, content := range entries {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// CreateDefaultTree creates a small tree with a nested directory
func CreateDefaultTree(t *testing.T, dir string) {
	CreateTree(t, dir, map[string]string{
		"notes.txt":          "test content 1",
		"Projects/plan.md":   "test content 2",
		"Projects/logo.png":  "image content",
		"Archive/":           "",
		"Projects/old/a.txt": "a",
	})
}

// CreateChain creates depth nested directories d1/d2/... below dir, each
// holding one file, and returns the deepest directory.
func CreateChain(t *testing.T, dir string, depth int) string {
	t.Helper()
	current := dir
	for i := 1; i <= depth; i++ {
		current = filepath.Join(current, "d"+strings.Repeat("i", i))
		require.NoError(t, os.MkdirAll(current, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(current, "file.txt"), []byte("x"), 0644))
	}
	return current
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
