package types

import (
	"fmt"
	"strings"
)

// NodeKind identifies what a MenuNode represents
type NodeKind int

const (
	// KindDirectory is a submenu mirroring a directory
	KindDirectory NodeKind = iota
	// KindFile is a launchable regular file
	KindFile
	// KindShortcut is a launchable link indirection (.lnk)
	KindShortcut
	// KindOpenAction opens the enclosing directory in the file browser
	KindOpenAction
	// KindSeparator is a visual separator with no action
	KindSeparator
)

// String returns the kind name
func (k NodeKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindShortcut:
		return "shortcut"
	case KindOpenAction:
		return "open"
	case KindSeparator:
		return "separator"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IconRef names a display glyph. Renderers map it to their own resources.
type IconRef string

// Icon references produced by the default icon provider
const (
	IconNone       IconRef = ""
	IconFolder     IconRef = "folder"
	IconFolderOpen IconRef = "folder-open"
	IconFile       IconRef = "file"
	IconShortcut   IconRef = "shortcut"
	IconExecutable IconRef = "executable"
	IconImage      IconRef = "image"
	IconVideo      IconRef = "video"
	IconAudio      IconRef = "audio"
	IconDocument   IconRef = "document"
	IconArchive    IconRef = "archive"
	IconText       IconRef = "text"
)

// MenuNode is one node of an immutable menu tree. Directory nodes carry
// children; every other kind is a leaf.
type MenuNode struct {
	Name  string
	Path  string
	Kind  NodeKind
	Icon  IconRef
	Depth int
	// Expanded reports whether the directory's entries were enumerated.
	// Directories past the depth bound are listed but not expanded.
	Expanded bool
	Children []*MenuNode
}

// IsDir reports whether the node is a submenu
func (n *MenuNode) IsDir() bool {
	return n.Kind == KindDirectory
}

// IsLaunchable reports whether activating the node starts something
func (n *MenuNode) IsLaunchable() bool {
	switch n.Kind {
	case KindFile, KindShortcut, KindOpenAction:
		return true
	}
	return false
}

// Entries returns the children that mirror filesystem entries, skipping the
// leading open action and separator.
func (n *MenuNode) Entries() []*MenuNode {
	entries := make([]*MenuNode, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Kind == KindOpenAction || c.Kind == KindSeparator {
			continue
		}
		entries = append(entries, c)
	}
	return entries
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *MenuNode) Walk(fn func(*MenuNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the tree rooted at n
func (n *MenuNode) Count() int {
	count := 0
	n.Walk(func(*MenuNode) bool {
		count++
		return true
	})
	return count
}

// Equal reports whether two trees would render identically
func (n *MenuNode) Equal(other *MenuNode) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Name != other.Name || n.Kind != other.Kind || n.Path != other.Path {
		return false
	}
	if n.Icon != other.Icon || n.Expanded != other.Expanded {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the tree as indented text, one node per line
func (n *MenuNode) String() string {
	var b strings.Builder
	n.Walk(func(node *MenuNode) bool {
		b.WriteString(strings.Repeat("  ", node.Depth))
		switch node.Kind {
		case KindSeparator:
			b.WriteString("----")
		case KindDirectory:
			b.WriteString(node.Name + "/")
		default:
			b.WriteString(node.Name)
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

// TreesEqual compares two ordered sets of root trees
func TreesEqual(a, b []*MenuNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
