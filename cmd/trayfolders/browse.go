package main

import (
	"context"

	"trayfolders/internal/log"
	"trayfolders/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:         "browse",
		Short:       "Browse the folder menus in the terminal",
		Long:        `Browse the folder menus in the terminal. Entries open exactly as they do from the tray.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationQuiet: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), env)
		},
	}
}

func runBrowse(ctx context.Context, env *environment) error {
	var refresh func()
	model := tui.New(env.resolver(), func() { refresh() }, tui.NewStyles(env.cfg.Theme.Name))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	sync, err := env.synchronizer(tui.NewRenderer(p))
	if err != nil {
		return err
	}
	refresh = sync.Refresh

	// The first render blocks until the program reads messages
	started := make(chan error, 1)
	go func() {
		err := sync.Start(ctx)
		if err != nil {
			p.Send(tui.ErrMsg{Err: err})
		}
		started <- err
	}()

	_, runErr := p.Run()
	if err := <-started; err == nil {
		if err := sync.Stop(env.cfg.StopTimeout()); err != nil {
			log.LogWithError(err).Warn("Menu synchronizer did not stop cleanly")
		}
	}
	return runErr
}
