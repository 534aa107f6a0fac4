package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newOpenCmd(env *environment) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "open <path>",
		Short: "Open one entry the way the menu would",
		Long: `Open a file, folder or shortcut exactly as clicking it in the menu would.
With --dry-run the resolved launch is printed instead of started.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("error resolving path: %w", err)
			}

			resolver := env.resolver()
			if dryRun {
				target, err := resolver.Resolve(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), target.String())
				return nil
			}
			return resolver.Launch(cmd.Context(), path)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be started without starting it")

	return cmd
}
