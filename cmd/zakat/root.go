package main

import (
	"github.com/spf13/cobra"
)

// newRootCommand creates the root CLI command with all subcommands registered.
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zakat",
		Short: "Zakat calculator and payment tracker with cloud sync",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newSignInCommand())
	rootCmd.AddCommand(newSignOutCommand())
	rootCmd.AddCommand(newResetCommand())

	return rootCmd
}
