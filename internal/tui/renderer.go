package tui

import (
	"trayfolders/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender is the part of tea.Program the renderer needs
type Sender interface {
	Send(msg tea.Msg)
}

// Renderer forwards rebuilt trees to a running program. Send blocks until
// the program's event loop is running, so the first Render must not happen
// on the goroutine that starts the program.
type Renderer struct {
	program Sender
}

// NewRenderer creates a renderer for program
func NewRenderer(program Sender) *Renderer {
	return &Renderer{program: program}
}

// Render delivers trees as a TreesMsg
func (r *Renderer) Render(trees []*types.MenuNode) {
	r.program.Send(TreesMsg{Trees: trees})
}
