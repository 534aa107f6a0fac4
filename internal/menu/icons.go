package menu

import (
	"path/filepath"
	"strings"

	"trayfolders/pkg/types"
)

// IconProvider returns the glyph shown next to an entry. Implementations must
// not fail; unknown entries get a generic icon.
type IconProvider interface {
	Icon(path string, class Class) types.IconRef
}

// ExtensionIcons picks icons from the file extension
type ExtensionIcons struct{}

// Icon implements IconProvider
func (ExtensionIcons) Icon(path string, class Class) types.IconRef {
	switch class {
	case Directory:
		return types.IconFolder
	case Shortcut:
		return types.IconShortcut
	case Unreadable:
		return types.IconNone
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg":
		return types.IconImage
	case ".mp4", ".avi", ".mov", ".mkv", ".webm":
		return types.IconVideo
	case ".mp3", ".wav", ".flac", ".ogg", ".m4a":
		return types.IconAudio
	case ".pdf", ".doc", ".docx", ".odt", ".xls", ".xlsx", ".ppt", ".pptx":
		return types.IconDocument
	case ".zip", ".tar", ".gz", ".rar", ".7z":
		return types.IconArchive
	case ".txt", ".md", ".go", ".js", ".py", ".cfg", ".ini", ".yaml", ".json":
		return types.IconText
	case ".exe", ".com", ".bat", ".cmd", ".sh", ".appimage":
		return types.IconExecutable
	default:
		return types.IconFile
	}
}
