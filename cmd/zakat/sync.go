package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	var resolve string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the local ledger with the cloud copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resolve != "" && resolve != "cloud" && resolve != "local" {
				return fmt.Errorf("--resolve must be 'cloud' or 'local', got %q", resolve)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.gate == nil {
				return errNoCloudSync
			}
			if _, ok := a.gate.CurrentToken(); !ok {
				return fmt.Errorf("not signed in: run 'zakat signin' first")
			}

			if err := a.engine.Reconcile(ctx); err != nil {
				return err
			}
			return finishSync(ctx, cmd, a, resolve)
		},
	}

	cmd.Flags().StringVar(&resolve, "resolve", "", "resolve a conflict by keeping 'cloud' or 'local' data")
	return cmd
}

// finishSync reports the reconciliation result, applying the requested
// conflict resolution when one is pending.
func finishSync(ctx context.Context, cmd *cobra.Command, a *app, resolve string) error {
	conflict := a.engine.Conflict()
	if conflict == nil {
		cmd.Printf("Synced. Status: %s\n", a.engine.Status())
		return nil
	}

	switch resolve {
	case "cloud":
		if err := a.engine.ResolveUseCloud(ctx); err != nil {
			return err
		}
		cmd.Println("Cloud data loaded and kept.")
	case "local":
		if err := a.engine.ResolveKeepLocal(ctx); err != nil {
			return err
		}
		cmd.Println("Local data kept and uploaded.")
	default:
		cmd.Printf("Cloud copy modified at %s differs from this device.\n", conflict.RemoteModified.Format("2006-01-02 15:04:05 MST"))
		cmd.Println("Run 'zakat sync --resolve=cloud' to load it, or 'zakat sync --resolve=local' to overwrite it.")
		return fmt.Errorf("sync conflict requires resolution")
	}
	return nil
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ledger totals and sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			summary := a.store.Summary()
			tracker := a.store.TrackerSummary()

			cmd.Printf("Net wealth:      %s\n", summary.NetWealth.StringFixed(2))
			cmd.Printf("Nisab threshold: %s (met: %v)\n", summary.NisabThreshold.StringFixed(2), summary.NisabMet)
			cmd.Printf("Zakat due:       %s\n", summary.ZakatDue.StringFixed(2))
			cmd.Printf("Paid:            %s (%s%%)\n", tracker.TotalPaid.StringFixed(2), tracker.Progress.StringFixed(0))
			cmd.Printf("Remaining:       %s\n", tracker.Remaining.StringFixed(2))

			if a.gate == nil {
				cmd.Println("Cloud sync:      not configured")
				return nil
			}
			if _, ok := a.gate.CurrentToken(); !ok {
				cmd.Println("Cloud sync:      signed out")
				return nil
			}
			if wm, ok, err := a.repo.LoadSyncMeta(ctx); err == nil && ok {
				cmd.Printf("Cloud sync:      signed in, last synced %s\n", wm.Format("2006-01-02 15:04:05 MST"))
			} else {
				cmd.Println("Cloud sync:      signed in, never synced from this device")
			}
			return nil
		},
	}
}
