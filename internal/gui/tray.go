package gui

import (
	"sync"

	"trayfolders/internal/launch"
	"trayfolders/internal/log"
	"trayfolders/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
)

// AppTitle is the tray menu title
const AppTitle = "trayfolders"

// TrayMenuSetter is the part of desktop.App the tray needs
type TrayMenuSetter interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// App shows the folder menus in the system tray
type App struct {
	fyneApp   fyne.App
	tray      TrayMenuSetter
	activator launch.Activator

	refresh     func()
	editFolders string
	onQuit      func()

	logger *log.Logger

	// Lock for the current menu and the trees it shows
	mutex sync.Mutex
	menu  *fyne.Menu
	trees []*types.MenuNode

	quitOnce sync.Once
}

// AppOption configures an App
type AppOption func(*App)

// WithTrayMenuSetter replaces the tray the menu is installed into
func WithTrayMenuSetter(t TrayMenuSetter) AppOption {
	return func(a *App) {
		a.tray = t
	}
}

// WithRefresh adds a Refresh item calling fn
func WithRefresh(fn func()) AppOption {
	return func(a *App) {
		a.refresh = fn
	}
}

// WithEditFolders adds an "Edit Folders…" item opening the roots file
func WithEditFolders(rootsPath string) AppOption {
	return func(a *App) {
		a.editFolders = rootsPath
	}
}

// WithQuit runs fn before the tray loop exits
func WithQuit(fn func()) AppOption {
	return func(a *App) {
		a.onQuit = fn
	}
}

// WithAppLogger sets the tray's logger
func WithAppLogger(l *log.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

// NewApp creates the tray for fyneApp. Menu items call activator with the
// path of the clicked node.
func NewApp(fyneApp fyne.App, activator launch.Activator, opts ...AppOption) *App {
	a := &App{
		fyneApp:   fyneApp,
		activator: activator,
		logger:    log.Default(),
	}
	if deskApp, ok := fyneApp.(desktop.App); ok {
		a.tray = deskApp
	}
	for _, o := range opts {
		o(a)
	}
	if a.tray == nil {
		a.logger.Warn("System tray not supported by this driver, menus will not be shown")
	}
	return a
}

// Render replaces the tray menu with one built from trees,
// unless the trees are unchanged since the last one.
func (a *App) Render(trees []*types.MenuNode) {
	a.mutex.Lock()
	if a.menu != nil && types.TreesEqual(a.trees, trees) {
		a.mutex.Unlock()
		a.logger.Debug("Menu unchanged, keeping the installed one")
		return
	}
	a.mutex.Unlock()

	m := a.BuildMenu(trees)

	a.mutex.Lock()
	a.menu = m
	a.trees = trees
	a.mutex.Unlock()

	if a.tray != nil {
		a.tray.SetSystemTrayMenu(m)
	}
}

// Menu returns the menu installed by the last Render
func (a *App) Menu() *fyne.Menu {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.menu
}

// BuildMenu converts trees into a tray menu: one submenu per root followed
// by the application actions.
func (a *App) BuildMenu(trees []*types.MenuNode) *fyne.Menu {
	items := make([]*fyne.MenuItem, 0, len(trees)+5)
	for _, root := range trees {
		items = append(items, a.item(root))
	}
	if len(trees) == 0 {
		empty := fyne.NewMenuItem("No folders configured", nil)
		empty.Disabled = true
		items = append(items, empty)
	}

	items = append(items, fyne.NewMenuItemSeparator())
	if a.refresh != nil {
		refresh := fyne.NewMenuItem("Refresh", a.refresh)
		refresh.Icon = theme.ViewRefreshIcon()
		items = append(items, refresh)
	}
	if a.editFolders != "" {
		path := a.editFolders
		edit := fyne.NewMenuItem("Edit Folders…", func() {
			a.activator.Activate(path)
		})
		edit.Icon = theme.DocumentCreateIcon()
		items = append(items, edit)
	}
	quit := fyne.NewMenuItem("Quit", a.Quit)
	quit.IsQuit = true
	items = append(items, fyne.NewMenuItemSeparator(), quit)

	return fyne.NewMenu(AppTitle, items...)
}

// item converts one node. Directories become submenus; everything else
// activates its own path.
func (a *App) item(node *types.MenuNode) *fyne.MenuItem {
	if node.Kind == types.KindSeparator {
		return fyne.NewMenuItemSeparator()
	}

	path := node.Path
	if node.IsDir() {
		children := make([]*fyne.MenuItem, 0, len(node.Children))
		for _, child := range node.Children {
			children = append(children, a.item(child))
		}
		it := fyne.NewMenuItem(node.Name, nil)
		it.ChildMenu = fyne.NewMenu(node.Name, children...)
		it.Icon = IconResource(node.Icon)
		return it
	}

	it := fyne.NewMenuItem(node.Name, func() {
		a.activator.Activate(path)
	})
	it.Icon = IconResource(node.Icon)
	return it
}

// IconResource maps an icon reference to a theme resource. IconNone gives
// nil.
func IconResource(ref types.IconRef) fyne.Resource {
	switch ref {
	case types.IconNone:
		return nil
	case types.IconFolder:
		return theme.FolderIcon()
	case types.IconFolderOpen:
		return theme.FolderOpenIcon()
	case types.IconExecutable:
		return theme.FileApplicationIcon()
	case types.IconImage:
		return theme.FileImageIcon()
	case types.IconVideo:
		return theme.FileVideoIcon()
	case types.IconAudio:
		return theme.FileAudioIcon()
	case types.IconDocument:
		return theme.DocumentIcon()
	case types.IconText:
		return theme.FileTextIcon()
	case types.IconShortcut:
		return theme.MailForwardIcon()
	default:
		return theme.FileIcon()
	}
}

// Run shows the tray and blocks until Quit
func (a *App) Run() {
	a.fyneApp.Run()
}

// Quit runs the quit hook and ends the tray loop. Later calls do nothing.
func (a *App) Quit() {
	a.quitOnce.Do(func() {
		if a.onQuit != nil {
			a.onQuit()
		}
		a.logger.Info("Quitting")
		a.fyneApp.Quit()
	})
}
