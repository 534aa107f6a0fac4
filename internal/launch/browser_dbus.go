//go:build !windows && !darwin

package launch

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const (
	fileManagerName = "org.freedesktop.FileManager1"
	fileManagerPath = "/org/freedesktop/FileManager1"
)

// FileManager1 asks the desktop's file manager to show a folder over the
// session bus.
type FileManager1 struct {
	// connect is replaceable in tests
	connect func() (*dbus.Conn, error)
}

// NewFileManager1 creates a browser using the shared session bus
func NewFileManager1() *FileManager1 {
	return &FileManager1{connect: dbus.SessionBus}
}

// ShowFolder implements Browser
func (f *FileManager1) ShowFolder(ctx context.Context, dir string) error {
	conn, err := f.connect()
	if err != nil {
		return fmt.Errorf("show folder: session bus unavailable: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("show folder: %w", err)
	}
	uri := (&url.URL{Scheme: "file", Path: abs}).String()

	call := conn.Object(fileManagerName, dbus.ObjectPath(fileManagerPath)).
		CallWithContext(ctx, fileManagerName+".ShowFolders", 0, []string{uri}, "")
	if call.Err != nil {
		return fmt.Errorf("show folder: %w", call.Err)
	}
	return nil
}

func defaultBrowser() Browser {
	return NewFileManager1()
}
