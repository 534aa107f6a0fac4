package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trayfolders/internal/gui"
	"trayfolders/internal/log"
	"trayfolders/internal/tray"

	"github.com/spf13/cobra"
)

func newTrayCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Show the folder menus in the system tray",
		Long:  `Show the folder menus in the system tray. This is the default command.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd, env)
		},
	}
}

// runTray runs the system tray until Quit or a termination signal
func runTray(cmd *cobra.Command, env *environment) error {
	if !gui.IsGUIAvailable() {
		return fmt.Errorf("this build has no system tray support, use 'trayfolders browse'")
	}
	fyneApp, err := gui.NewFyneApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sync *tray.Synchronizer
	stopSync := func() {
		if err := sync.Stop(env.cfg.StopTimeout()); err != nil {
			log.LogError(err, "Menu synchronizer did not stop cleanly")
		}
	}
	app := gui.NewApp(fyneApp, env.resolver(),
		gui.WithRefresh(func() { sync.Refresh() }),
		gui.WithEditFolders(env.roots.Path()),
		gui.WithQuit(stopSync),
	)

	sync, err = env.synchronizer(app)
	if err != nil {
		return err
	}
	if !env.roots.Exists() {
		log.LogWithFields(log.F("roots_file", env.roots.Path())).Warn("Roots file not found, run 'trayfolders init' to create one")
	}
	if err := sync.Start(ctx); err != nil {
		return err
	}

	finished := make(chan struct{})
	go quitOnSignal(ctx, finished, app.Quit)

	app.Run()
	close(finished)
	stopSync()
	return nil
}

// quitOnSignal calls quit when ctx ends, unless finished is closed first
func quitOnSignal(ctx context.Context, finished <-chan struct{}, quit func()) {
	select {
	case <-ctx.Done():
		quit()
	case <-finished:
	}
}
