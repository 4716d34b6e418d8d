package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fraudradar/fraud-radar/internal/cli"
	"github.com/fraudradar/fraud-radar/internal/ledger"
)

func importCmd() *cobra.Command {
	var useSample bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import ledger transactions",
		Long: `Import transactions from a JSON ledger export, or load the embedded
sample ledger with --sample. Re-importing the same export is safe; rows are
upserted by transaction ID.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var source ledger.Source
			switch {
			case useSample:
				source = ledger.NewFixtureSource()
			case len(args) == 1:
				source = ledger.NewFileSource(args[0])
			default:
				return fmt.Errorf("provide a ledger export file or use --sample")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := source.FetchTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch transactions from %s: %w", source.Name(), err)
			}

			if err := store.SaveTransactions(ctx, transactions); err != nil {
				return fmt.Errorf("failed to save transactions: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Imported %d transactions from %s", len(transactions), source.Name())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&useSample, "sample", false, "import the embedded sample ledger")
	return cmd
}
