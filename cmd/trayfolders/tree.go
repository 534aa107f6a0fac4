package main

import (
	"fmt"

	"trayfolders/internal/tui"

	"github.com/spf13/cobra"
)

func newTreeCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [root...]",
		Short: "Print the folder menus as a tree",
		Long: `Print the menus that would be shown for the given roots, or for the
roots file when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := args
			if len(roots) == 0 {
				var err error
				roots, err = env.roots.Load()
				if err != nil {
					return err
				}
			}

			builder, err := env.builder()
			if err != nil {
				return err
			}

			trees := builder.BuildAll(roots)
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderTree(trees, tui.NewStyles(env.cfg.Theme.Name)))
			return nil
		},
	}
}
