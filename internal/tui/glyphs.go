package tui

import "trayfolders/pkg/types"

// Glyph returns the terminal icon for ref. Open directories get the open
// folder glyph.
func Glyph(ref types.IconRef, open bool) string {
	switch ref {
	case types.IconNone:
		return "  "
	case types.IconFolder:
		if open {
			return "📂"
		}
		return "📁"
	case types.IconFolderOpen:
		return "🗂️"
	case types.IconShortcut:
		return "🔗"
	case types.IconExecutable:
		return "⚙️"
	case types.IconImage:
		return "🖼️"
	case types.IconVideo:
		return "🎬"
	case types.IconAudio:
		return "🎵"
	case types.IconDocument:
		return "📕"
	case types.IconArchive:
		return "🗜️"
	case types.IconText:
		return "📝"
	default:
		return "📄"
	}
}
