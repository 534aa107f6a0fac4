//go:build !windows

package launch

// Link files are a Windows format; elsewhere shortcuts fall back to browsing
// their directory.
func defaultShortcutReader() ShortcutReader {
	return nil
}
