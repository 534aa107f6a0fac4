package launch

// DefaultPlatform opens documents with "cmd /c start" and directories with
// Explorer.
func DefaultPlatform() Platform {
	return Platform{
		Name:         "windows",
		IsExecutable: hasExtension(".exe", ".com"),
		OpenCommand: func(target string) (string, []string) {
			// the empty argument is the window title expected by start
			return "cmd", []string{"/c", "start", "", target}
		},
		BrowseCommand: func(dir string) (string, []string) {
			return "explorer", []string{dir}
		},
		PathKey:            "Path",
		CaseInsensitiveEnv: true,
	}
}

func defaultBrowser() Browser {
	return nil
}
