package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fraudradar/fraud-radar/internal/cli"
	"github.com/fraudradar/fraud-radar/internal/detect"
	"github.com/fraudradar/fraud-radar/internal/model"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run anomaly detection over the imported ledger",
		Long: `Run all detection heuristics over the stored transaction set, record the
scan and its anomaly groups, and print a report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			scanner := detect.NewScanner(store, loadThresholds())
			scan, groups, err := scanner.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Scan %s", scan.ID)))
			if len(groups) == 0 {
				fmt.Println(cli.SuccessStyle.Render("No anomalies detected."))
				return nil
			}

			printAnomalyGroups(groups)
			fmt.Printf("\n%s %d anomalies, $%.2f at risk\n",
				cli.BoldStyle.Render("Total:"), scan.AnomaliesFound, scan.TotalRiskExposure)
			return nil
		},
	}
}

func printAnomalyGroups(groups []model.AnomalyGroup) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintln(w, "ID\tCATEGORY\tRISK\tSCORE\tTXNS\tREASON")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			g.ID, g.Category, cli.RenderRiskLevel(g.RiskLevel), g.RiskScore,
			len(g.Transactions), g.Reason)
	}
}
