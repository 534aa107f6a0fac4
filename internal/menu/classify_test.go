package menu

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"trayfolders/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "readme.txt")
	link := filepath.Join(dir, "Tool.LNK")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(link, []byte("x"), 0644))

	c := NewClassifierWithExtensions([]string{".lnk"})

	tests := []struct {
		name  string
		path  string
		class Class
	}{
		{"directory", dir, Directory},
		{"regular file", file, RegularFile},
		{"shortcut by extension, any case", link, Shortcut},
		{"missing entry", filepath.Join(dir, "gone"), Unreadable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := c.Classify(tt.path)
			assert.Equal(t, tt.class, e.Class)
			assert.Equal(t, tt.path, e.Path)
		})
	}
}

func TestClassifyWithoutShortcutSupport(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "tool.lnk")
	require.NoError(t, os.WriteFile(link, []byte("x"), 0644))

	c := NewClassifierWithExtensions(nil)
	assert.Equal(t, RegularFile, c.Classify(link).Class)
	assert.False(t, c.IsShortcutName("tool.lnk"))
}

func TestClassifyFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(target, 0755))
	link := filepath.Join(dir, "alias")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	c := NewClassifier()
	assert.Equal(t, Directory, c.Classify(link).Class)

	dangling := filepath.Join(dir, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), dangling))
	assert.Equal(t, Unreadable, c.Classify(dangling).Class)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Documents", DisplayName(filepath.Join("home", "me", "Documents")))
	assert.Equal(t, "report.pdf", DisplayName(filepath.Join("home", "report.pdf")))

	root := string(filepath.Separator)
	assert.Equal(t, root, DisplayName(root))

	// A trailing colon is part of an ordinary name
	assert.Equal(t, "todo:", DisplayName(filepath.Join(root, "home", "u", "Documents", "todo:")))
	assert.Equal(t, "a:b", DisplayName(filepath.Join("home", "a:b")))

	if runtime.GOOS == "windows" {
		assert.Equal(t, `C:\`, DisplayName(`C:\`))
		assert.Equal(t, `\\server\share\`, DisplayName(`\\server\share\`))
		assert.Equal(t, "Users", DisplayName(`C:\Users`))
	}
}

func TestExtensionIcons(t *testing.T) {
	icons := ExtensionIcons{}

	assert.Equal(t, types.IconFolder, icons.Icon("/x", Directory))
	assert.Equal(t, types.IconShortcut, icons.Icon("/x/app.lnk", Shortcut))
	assert.Equal(t, types.IconImage, icons.Icon("/x/photo.JPG", RegularFile))
	assert.Equal(t, types.IconDocument, icons.Icon("/x/paper.pdf", RegularFile))
	assert.Equal(t, types.IconExecutable, icons.Icon("/x/setup.exe", RegularFile))
	assert.Equal(t, types.IconFile, icons.Icon("/x/unknown.zzz", RegularFile))
	assert.Equal(t, types.IconFile, icons.Icon("/x/noext", RegularFile))
	assert.Equal(t, types.IconNone, icons.Icon("/x/gone", Unreadable))
}
