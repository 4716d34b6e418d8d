package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fraudradar/fraud-radar/internal/cli"
	"github.com/fraudradar/fraud-radar/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// initStorage migrates as a side effect; running it is the command.
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
