package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all local data and sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this erases the local ledger; re-run with --yes to confirm")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			a.store.Reset()
			if err := a.repo.DeleteSnapshot(ctx); err != nil {
				return fmt.Errorf("delete local snapshot: %w", err)
			}
			if a.gate != nil {
				a.gate.SignOut()
			}
			a.engine.SignOut(ctx)

			cmd.Println("Local data erased. The cloud copy, if any, is untouched.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm erasing all local data")
	return cmd
}
