//go:build !nogui
// +build !nogui

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
)

// AppID is the unique application ID used for preferences storage
const AppID = "io.github.trayfolders"

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}

// NewFyneApp creates the fyne application hosting the tray
func NewFyneApp() (fyne.App, error) {
	fyneApp := app.NewWithID(AppID)
	fyneApp.SetIcon(theme.FolderIcon())
	return fyneApp, nil
}
