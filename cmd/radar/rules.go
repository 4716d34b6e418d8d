package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fraudradar/fraud-radar/internal/cli"
	"github.com/fraudradar/fraud-radar/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage detection rules",
		Long: `List, add, toggle, and delete detection rules (vendor exclusions, amount
thresholds, account whitelists). Rules affect detection only when
detection.enforce_rules is enabled in the config.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(setRuleActiveCmd("enable", true))
	cmd.AddCommand(setRuleActiveCmd("disable", false))
	cmd.AddCommand(deleteRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all detection rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetDetectionRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Println(cli.InfoStyle.Render("No rules defined. Use 'radar rules add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tTYPE\tVALUE\tACTIVE")
			for _, r := range rules {
				active := cli.SubtleStyle.Render("no")
				if r.IsActive {
					active = cli.SuccessStyle.Render("yes")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Type, r.Value, active)
			}
			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <type> <value>",
		Short: "Add a detection rule",
		Long: `Add a rule. Types:
  ExcludeVendor     <vendor name>    skip splitting detection for this vendor
  AmountThreshold   <amount>         raise the round-payment floor
  AccountWhiteList  <account name>   exempt this account from all heuristics`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rule := model.DetectionRule{
				Type:     model.RuleType(args[0]),
				Value:    args[1],
				IsActive: true,
			}
			if err := rule.Validate(); err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateDetectionRule(ctx, &rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Created rule %d: %s %q", rule.ID, rule.Type, rule.Value)))
			return nil
		},
	}
}

func setRuleActiveCmd(verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a detection rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetDetectionRuleActive(ctx, id, active); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Rule %d %sd", id, verb)))
			return nil
		},
	}
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a detection rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteDetectionRule(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Rule %d deleted", id)))
			return nil
		},
	}
}
