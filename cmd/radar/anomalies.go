package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fraudradar/fraud-radar/internal/cli"
	"github.com/fraudradar/fraud-radar/internal/model"
)

func anomaliesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Inspect and triage detected anomalies",
	}

	cmd.AddCommand(listAnomaliesCmd())
	cmd.AddCommand(anomalyStatusCmd())

	return cmd
}

func listAnomaliesCmd() *cobra.Command {
	var scanID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List anomaly groups from a scan",
		Long:  `Display the anomaly groups of a scan (the most recent one by default).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			groups, err := store.GetAnomalyGroups(ctx, scanID)
			if err != nil {
				return fmt.Errorf("failed to get anomalies: %w", err)
			}

			if len(groups) == 0 {
				fmt.Println(cli.InfoStyle.Render("No anomalies recorded. Run 'radar scan' first."))
				return nil
			}

			printAnomalyGroups(groups)
			return nil
		},
	}

	cmd.Flags().StringVar(&scanID, "scan", "", "scan ID (default: most recent scan)")
	return cmd
}

func anomalyStatusCmd() *cobra.Command {
	var scanID string

	cmd := &cobra.Command{
		Use:   "status <group-id> <open|investigating|dismissed|resolved>",
		Short: "Update an anomaly group's investigation status",
		Long: `Move an anomaly group through the review workflow. Allowed transitions:
open -> investigating or dismissed; investigating -> resolved or dismissed.
Resolved and dismissed are terminal.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			groupID := args[0]
			status := model.InvestigationStatus(args[1])

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpdateInvestigationStatus(ctx, scanID, groupID, status); err != nil {
				return err
			}

			if err := store.AppendAuditLog(ctx, &model.AuditLogEntry{
				Action:  "anomaly.status",
				Details: fmt.Sprintf("Group %s moved to %s", groupID, status),
				Type:    model.AuditInfo,
			}); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Group %s is now %s", groupID, status)))
			return nil
		},
	}

	cmd.Flags().StringVar(&scanID, "scan", "", "scan ID (default: most recent scan)")
	return cmd
}
