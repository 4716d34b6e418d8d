package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fraudradar/fraud-radar/internal/server"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the scan and chat-assistant API. The chat endpoint proxies to the
configured AI provider so the API key stays on the server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			assistant, err := initAssistant()
			if err != nil {
				return err
			}
			if assistant == nil {
				slog.Warn("Assistant API key not configured; /api/chat will return 503")
			}

			if addr == "" {
				addr = viper.GetString("server.addr")
			}
			if addr == "" {
				addr = ":3000"
			}

			srv := server.New(store, assistant, loadThresholds())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, else :3000)")
	return cmd
}
