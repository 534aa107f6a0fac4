package main

import (
	"fmt"
	"io"

	"trayfolders/internal/config"
	"trayfolders/internal/launch"
	"trayfolders/internal/log"
	"trayfolders/internal/menu"
	"trayfolders/internal/tray"

	"github.com/spf13/cobra"
)

// annotationQuiet marks commands whose terminal output must not carry log
// lines
const annotationQuiet = "quiet"

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configFile string
	rootsFile  string
	debug      bool
	jsonLogs   bool
	maxDepth   int
}

// environment is what every command needs once flags are parsed
type environment struct {
	cfg *config.Config
	// settingsPath is where cfg is read from and init writes it
	settingsPath string
	roots        *config.RootsFile
	// quiet keeps log lines off the terminal, for full-screen commands
	quiet bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	env := &environment{}

	rootCmd := &cobra.Command{
		Use:   "trayfolders",
		Short: "Folder menus in the system tray",
		Long: `trayfolders shows the folders you choose as nested menus in the system
tray. Picking a file opens it, picking a folder opens it in the file browser,
and the menus follow changes on disk.

Folders are listed one per line in the roots file
(default $HOME/.config/trayfolders/folders.cfg).`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.load(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd, env)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "settings file (default is $HOME/.config/trayfolders/settings.yaml)")
	pf.StringVar(&flags.rootsFile, "roots", "", "roots file (default is $HOME/.config/trayfolders/folders.cfg)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&flags.jsonLogs, "json-logs", false, "log one JSON object per line")
	pf.IntVar(&flags.maxDepth, "max-depth", menu.DefaultMaxDepth, "deepest folder level whose contents are listed")

	rootCmd.AddCommand(newTrayCmd(env))
	rootCmd.AddCommand(newBrowseCmd(env))
	rootCmd.AddCommand(newTreeCmd(env))
	rootCmd.AddCommand(newOpenCmd(env))
	rootCmd.AddCommand(newRootsCmd(env))
	rootCmd.AddCommand(newInitCmd(env))

	return rootCmd
}

// load reads the settings, applies flag overrides and configures logging
func (e *environment) load(cmd *cobra.Command, flags *globalFlags) error {
	var err error
	e.settingsPath = flags.configFile
	if e.settingsPath == "" {
		if e.settingsPath, err = config.DefaultSettingsPath(); err != nil {
			return fmt.Errorf("error getting config directory: %w", err)
		}
	}

	e.cfg, err = config.LoadConfigFile(e.settingsPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "Using default settings.")
		e.cfg = config.New()
	}

	f := cmd.Flags()
	if f.Changed("debug") {
		e.cfg.Logging.Debug = flags.debug
	}
	if f.Changed("json-logs") {
		e.cfg.Logging.JSON = flags.jsonLogs
	}
	if f.Changed("max-depth") {
		e.cfg.Menu.MaxDepth = flags.maxDepth
		if err := e.cfg.Validate(); err != nil {
			return err
		}
	}

	e.quiet = cmd.Annotations[annotationQuiet] == "true"
	e.configureLogging(cmd)

	if flags.rootsFile != "" {
		e.roots = config.NewRootsFile(flags.rootsFile)
		return nil
	}
	e.roots, err = config.DefaultRootsFile()
	return err
}

func (e *environment) configureLogging(cmd *cobra.Command) {
	var opts []log.Option
	if e.quiet {
		opts = append(opts, log.WithOutput(io.Discard))
	} else {
		opts = append(opts, log.WithOutput(cmd.ErrOrStderr()))
	}
	if e.cfg.Logging.JSON {
		opts = append(opts, log.WithJSON())
	}
	if e.cfg.Logging.File != "" {
		opts = append(opts, log.WithFile(e.cfg.Logging.File))
	}
	log.Configure(opts...)
	log.SetDebug(e.cfg.Logging.Debug)
}

// builder creates the tree builder described by the settings
func (e *environment) builder() (*menu.Builder, error) {
	return menu.NewBuilder(e.cfg.MenuOptions(), menu.WithClassifier(e.cfg.Classifier()))
}

// resolver creates the launcher described by the settings
func (e *environment) resolver() *launch.Resolver {
	return launch.NewResolver(launch.WithClassifier(e.cfg.Classifier()))
}

// synchronizer wires the roots file, the builder and renderer together
func (e *environment) synchronizer(renderer tray.Renderer) (*tray.Synchronizer, error) {
	builder, err := e.builder()
	if err != nil {
		return nil, err
	}
	return tray.NewSynchronizer(e.roots, builder, renderer,
		tray.WithDebounce(e.cfg.Debounce()),
		tray.WithWatching(e.cfg.Watch.Enabled),
		tray.WithStopTimeout(e.cfg.StopTimeout()),
	), nil
}
