//go:build nogui
// +build nogui

package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return false
}

// NewFyneApp is a stub implementation for builds with GUI disabled
func NewFyneApp() (fyne.App, error) {
	return nil, fmt.Errorf("GUI not available in this build, use 'trayfolders browse' instead")
}
