package main

import (
	"github.com/spf13/cobra"
)

func newSignInCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signin",
		Short: "Authorize cloud sync through the browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.gate == nil {
				return errNoCloudSync
			}
			if _, ok := a.gate.CurrentToken(); ok {
				cmd.Println("Already signed in.")
			} else if err := a.gate.SignIn(ctx); err != nil {
				return err
			} else {
				cmd.Println("Signed in.")
			}

			if err := a.engine.Reconcile(ctx); err != nil {
				return err
			}
			return finishSync(ctx, cmd, a, "")
		},
	}
}

func newSignOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Drop the cloud session, keeping local and cloud data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.gate == nil {
				return errNoCloudSync
			}
			a.gate.SignOut()
			a.engine.SignOut(ctx)
			cmd.Println("Signed out. Local data is untouched.")
			return nil
		},
	}
}
