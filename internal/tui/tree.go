package tui

import (
	"strings"

	"trayfolders/pkg/types"
)

// RenderTree prints trees the way the menu nests them. Open actions and
// separators are left out; directories past the depth limit show no
// contents.
func RenderTree(trees []*types.MenuNode, styles Styles) string {
	if len(trees) == 0 {
		return styles.Empty.Render("No folders configured") + "\n"
	}

	var b strings.Builder
	for i, root := range trees {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Glyph(root.Icon, root.Expanded) + " " + styles.Directory.Render(root.Name))
		b.WriteString(" " + styles.Branch.Render(root.Path) + "\n")
		writeEntries(&b, root, "", styles)
	}
	return b.String()
}

func writeEntries(b *strings.Builder, node *types.MenuNode, prefix string, styles Styles) {
	entries := node.Entries()
	for i, child := range entries {
		last := i == len(entries)-1
		branch, indent := "├─ ", "│  "
		if last {
			branch, indent = "└─ ", "   "
		}

		name := styles.File.Render(child.Name)
		if child.IsDir() {
			name = styles.Directory.Render(child.Name)
		}
		b.WriteString(styles.Branch.Render(prefix+branch) + Glyph(child.Icon, child.Expanded) + " " + name + "\n")

		if child.IsDir() {
			writeEntries(b, child, prefix+indent, styles)
		}
	}
}
