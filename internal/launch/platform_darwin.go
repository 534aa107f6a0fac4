package launch

// DefaultPlatform hands documents and directories to open(1)
func DefaultPlatform() Platform {
	return Platform{
		Name:         "darwin",
		IsExecutable: hasExecBit,
		OpenCommand: func(target string) (string, []string) {
			return "open", []string{target}
		},
		BrowseCommand: func(dir string) (string, []string) {
			return "open", []string{dir}
		},
		PathKey: "PATH",
	}
}

func defaultBrowser() Browser {
	return nil
}
