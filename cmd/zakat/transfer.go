package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"zakat/internal/ledger"
)

func newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ledger as a JSON export document",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.store.Export(a.cfg.Language).Encode()
			if err != nil {
				return fmt.Errorf("encode export document: %w", err)
			}

			if output == "" || output == "-" {
				cmd.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			cmd.Printf("Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON export document into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			outcome := a.store.ApplyJSON(data)
			switch outcome.Result {
			case ledger.Rejected:
				return fmt.Errorf("import rejected: %s", outcome.Reason)
			case ledger.PartiallyApplied:
				cmd.Printf("Imported with %d field(s) skipped:\n  %s\n",
					len(outcome.Skipped), strings.Join(outcome.Skipped, "\n  "))
			default:
				cmd.Println("Imported.")
			}
			return nil
		},
	}
}
