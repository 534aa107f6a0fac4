package tui

import (
	"trayfolders/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by the browser and the tree printer
type Styles struct {
	Title     lipgloss.Style
	Directory lipgloss.Style
	File      lipgloss.Style
	Action    lipgloss.Style
	Cursor    lipgloss.Style
	Branch    lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Empty     lipgloss.Style
}

// NewStyles builds styles from a named colour theme
func NewStyles(themeName string) Styles {
	theme := config.GetTheme(themeName)
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(theme["primary"])).
			Padding(0, 1),
		Directory: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme["info"])).
			Bold(true),
		File: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D8DEE9")),
		Action: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme["emphasis"])).
			Italic(true),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(theme["border"])).
			Bold(true),
		Branch: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme["success"])),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme["error"])),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true),
	}
}

// DefaultStyles uses the default theme
func DefaultStyles() Styles {
	return NewStyles("default")
}
