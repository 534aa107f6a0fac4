//go:build !windows && !darwin

package launch

// DefaultPlatform uses xdg-open for documents and directories
func DefaultPlatform() Platform {
	return Platform{
		Name:         "xdg",
		IsExecutable: hasExecBit,
		OpenCommand: func(target string) (string, []string) {
			return "xdg-open", []string{target}
		},
		BrowseCommand: func(dir string) (string, []string) {
			return "xdg-open", []string{dir}
		},
		PathKey: "PATH",
	}
}
