package launch

import "context"

// Shortcut is the launch metadata recorded in a link file
type Shortcut struct {
	Target     string
	WorkingDir string
	Arguments  string
}

// ShortcutReader reads link files
type ShortcutReader interface {
	ReadShortcut(ctx context.Context, path string) (Shortcut, error)
}

// ShortcutReaderFunc adapts a function to ShortcutReader
type ShortcutReaderFunc func(ctx context.Context, path string) (Shortcut, error)

// ReadShortcut implements ShortcutReader
func (f ShortcutReaderFunc) ReadShortcut(ctx context.Context, path string) (Shortcut, error) {
	return f(ctx, path)
}
