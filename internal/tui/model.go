// Package tui is a terminal rendition of the folder menus. It consumes the
// same trees as the tray and sends activations through the same launcher.
package tui

import (
	"fmt"
	"strings"

	"trayfolders/internal/launch"
	"trayfolders/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// TreesMsg delivers a freshly built set of trees to the model
type TreesMsg struct {
	Trees []*types.MenuNode
}

// ErrMsg reports a failure to show in the status line
type ErrMsg struct {
	Err error
}

// activatedMsg reports that an activation was handed to the launcher
type activatedMsg struct {
	node *types.MenuNode
}

// row is one visible line of the browser
type row struct {
	node  *types.MenuNode
	level int
}

// Model is the menu browser
type Model struct {
	trees []*types.MenuNode
	// Paths of directories the user opened; roots start open
	open map[string]bool

	rows   []row
	cursor int
	offset int
	height int

	keys      KeyMap
	help      help.Model
	styles    Styles
	activator launch.Activator
	refresh   func()

	status   string
	err      error
	showHelp bool
}

// New creates a browser that activates leaves through activator. refresh
// may be nil.
func New(activator launch.Activator, refresh func(), styles Styles) *Model {
	return &Model{
		open:      make(map[string]bool),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		styles:    styles,
		activator: activator,
		refresh:   refresh,
		status:    "Loading folders…",
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TreesMsg:
		m.SetTrees(msg.Trees)
		m.status = fmt.Sprintf("%d folder(s)", len(msg.Trees))
		m.err = nil
		return m, nil

	case activatedMsg:
		m.status = "Opened " + msg.node.Name
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height - 4
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.GotoTop):
		m.cursor = 0
	case key.Matches(msg, m.keys.GotoBottom):
		m.cursor = max(0, len(m.rows)-1)
	case key.Matches(msg, m.keys.Expand):
		if node := m.Current(); node != nil && node.IsDir() && !m.open[node.Path] {
			m.open[node.Path] = true
			m.flatten()
		}
	case key.Matches(msg, m.keys.Collapse):
		m.collapse()
	case key.Matches(msg, m.keys.Activate):
		return m, m.activate()
	case key.Matches(msg, m.keys.Refresh):
		if m.refresh != nil {
			m.status = "Refreshing…"
			refresh := m.refresh
			return m, func() tea.Msg {
				refresh()
				return nil
			}
		}
	}
	m.ensureCursorVisible()
	return m, nil
}

// activate toggles directories and launches everything else
func (m *Model) activate() tea.Cmd {
	node := m.Current()
	if node == nil {
		return nil
	}
	if node.IsDir() {
		m.open[node.Path] = !m.open[node.Path]
		m.flatten()
		return nil
	}
	if !node.IsLaunchable() || m.activator == nil {
		return nil
	}

	activator := m.activator
	m.status = "Opening " + node.Name + "…"
	return func() tea.Msg {
		activator.Activate(node.Path)
		return activatedMsg{node: node}
	}
}

// collapse closes the current directory, or moves to the parent row
func (m *Model) collapse() {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return
	}
	current := m.rows[m.cursor]
	if current.node.IsDir() && m.open[current.node.Path] {
		m.open[current.node.Path] = false
		m.flatten()
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].level == current.level-1 {
			m.cursor = i
			return
		}
	}
}

// SetTrees replaces the trees. Open directories stay open when they still
// exist and the cursor stays on the same path when possible.
func (m *Model) SetTrees(trees []*types.MenuNode) {
	var selected string
	if node := m.Current(); node != nil {
		selected = node.Path
	}

	if m.trees == nil {
		for _, t := range trees {
			m.open[t.Path] = true
		}
	}
	m.trees = trees
	m.flatten()

	for i, r := range m.rows {
		if r.node.Path == selected {
			m.cursor = i
			break
		}
	}
	m.ensureCursorVisible()
}

// flatten recomputes the visible rows from the trees and the open set
func (m *Model) flatten() {
	m.rows = m.rows[:0]
	for _, t := range m.trees {
		m.addRows(t, 0)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

func (m *Model) addRows(node *types.MenuNode, level int) {
	if node.Kind == types.KindSeparator {
		return
	}
	m.rows = append(m.rows, row{node: node, level: level})
	if !node.IsDir() || !m.open[node.Path] {
		return
	}
	for _, child := range node.Children {
		m.addRows(child, level+1)
	}
}

func (m *Model) ensureCursorVisible() {
	if m.height <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("trayfolders") + "\n\n")

	if len(m.rows) == 0 {
		b.WriteString(m.styles.Empty.Render("No folders configured") + "\n")
	}

	end := len(m.rows)
	if m.height > 0 {
		end = min(end, m.offset+m.height)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i) + "\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderRow(i int) string {
	r := m.rows[i]
	node := r.node
	open := node.IsDir() && m.open[node.Path]

	marker := "  "
	if i == m.cursor {
		marker = "▶ "
	}
	line := strings.Repeat("  ", r.level) + marker + Glyph(node.Icon, open) + " " + node.Name
	if node.IsDir() && !node.Expanded {
		line += " …"
	}

	switch {
	case i == m.cursor:
		return m.styles.Cursor.Render(line)
	case node.Kind == types.KindOpenAction:
		return m.styles.Action.Render(line)
	case node.IsDir():
		return m.styles.Directory.Render(line)
	default:
		return m.styles.File.Render(line)
	}
}

// Current returns the node under the cursor, or nil
func (m *Model) Current() *types.MenuNode {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

// Cursor returns the cursor row
func (m *Model) Cursor() int {
	return m.cursor
}

// VisiblePaths returns the path of every visible row, in order
func (m *Model) VisiblePaths() []string {
	paths := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		paths = append(paths, r.node.Path)
	}
	return paths
}

// Status returns the status line text
func (m *Model) Status() string {
	return m.status
}

// ShowHelp reports whether the full help is shown
func (m *Model) ShowHelp() bool {
	return m.showHelp
}
