package launch

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// shellLinkScript prints target, working directory and arguments of the
// link in $args[0], one per line.
const shellLinkScript = `$s = (New-Object -ComObject WScript.Shell).CreateShortcut($args[0])
Write-Output $s.TargetPath
Write-Output $s.WorkingDirectory
Write-Output $s.Arguments`

// PowerShellShortcuts reads .lnk files through the WScript.Shell COM object
type PowerShellShortcuts struct{}

// ReadShortcut implements ShortcutReader
func (PowerShellShortcuts) ReadShortcut(ctx context.Context, path string) (Shortcut, error) {
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", shellLinkScript, path)
	out, err := cmd.Output()
	if err != nil {
		return Shortcut{}, fmt.Errorf("read shortcut: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
	for len(lines) < 3 {
		lines = append(lines, "")
	}
	return Shortcut{
		Target:     strings.TrimSpace(lines[0]),
		WorkingDir: strings.TrimSpace(lines[1]),
		Arguments:  strings.TrimSpace(lines[2]),
	}, nil
}

func defaultShortcutReader() ShortcutReader {
	return PowerShellShortcuts{}
}
