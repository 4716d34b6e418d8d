package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fraudradar/fraud-radar/internal/cli"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show scan history and dashboard totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			history, err := store.GetScanHistory(ctx)
			if err != nil {
				return fmt.Errorf("failed to get scan history: %w", err)
			}

			if len(history) == 0 {
				fmt.Println(cli.InfoStyle.Render("No scans recorded yet. Run 'radar scan' first."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tANOMALIES\tEXPOSURE\tSTATUS")
			for _, scan := range history {
				fmt.Fprintf(w, "%s\t%s\t%d\t$%.2f\t%s\n",
					scan.ID, scan.Date.Format("2006-01-02"), scan.AnomaliesFound,
					scan.TotalRiskExposure, scan.Status)
			}
			_ = w.Flush()

			summary, err := store.GetScanSummary(ctx)
			if err != nil {
				return fmt.Errorf("failed to compute summary: %w", err)
			}
			fmt.Printf("\n%s %d anomalies across %d scans, $%.2f total exposure\n",
				cli.BoldStyle.Render("Totals:"), summary.TotalAnomalies, summary.ScanCount, summary.TotalExposure)
			return nil
		},
	}
}
