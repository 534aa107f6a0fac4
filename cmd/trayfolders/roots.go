package main

import (
	"fmt"
	"os"

	"trayfolders/internal/config"
	"trayfolders/internal/menu"

	"github.com/spf13/cobra"
)

func newRootsCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List the configured root folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !env.roots.Exists() {
				fmt.Fprintf(out, "No roots file at %s. Run 'trayfolders init' to create one.\n", env.roots.Path())
				return nil
			}

			roots, err := env.roots.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Roots from %s:\n", env.roots.Path())
			if len(roots) == 0 {
				fmt.Fprintln(out, "  (none)")
			}

			classifier := env.cfg.Classifier()
			for _, root := range roots {
				status := "ok"
				if classifier.Classify(root).Class != menu.Directory {
					status = "missing or not a folder, skipped"
				}
				fmt.Fprintf(out, "  %s (%s)\n", root, status)
			}
			return nil
		},
	}
}

func newInitCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the roots file with default folders",
		Long: `Create the roots file listing Documents, Downloads and Desktop from your
home directory, and a settings file when there is none. An existing roots
file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("error getting home directory: %w", err)
			}

			roots, err := env.roots.WriteDefault(home)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s with:\n", env.roots.Path())
			for _, r := range roots {
				fmt.Fprintf(out, "  %s\n", r)
			}

			if _, err := os.Stat(env.settingsPath); err == nil {
				return nil
			}
			if err := config.SaveConfig(env.cfg, env.settingsPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s with the current settings\n", env.settingsPath)
			return nil
		},
	}
}
