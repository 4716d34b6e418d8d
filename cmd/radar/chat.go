package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fraudradar/fraud-radar/internal/cli"
	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/model"
)

// assistantBusyReply is shown when the AI service cannot be reached, instead
// of surfacing transport errors to the user.
const assistantBusyReply = "I am currently experiencing connection issues with the AI service."

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the fraud-detection assistant",
		Long: `Interactive session with the Fraud Radar assistant. Requires
assistant.api_key in the config (or RADAR_ASSISTANT_API_KEY). Type 'exit'
or press Ctrl-D to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			assistant, err := initAssistant()
			if err != nil {
				return err
			}
			if assistant == nil {
				return common.NewUserError("assistant is not configured: set assistant.api_key", common.ErrMissingConfig)
			}

			fmt.Println(cli.TitleStyle.Render("Fraud Radar Assistant"))
			fmt.Println(cli.SubtleStyle.Render("Ask about anomalies, risk scores, or securing your ledger workflows."))

			var history []model.ChatMessage
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print(cli.BoldStyle.Render("you> "))
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				message := strings.TrimSpace(scanner.Text())
				if message == "" {
					continue
				}
				if message == "exit" || message == "quit" {
					return nil
				}

				reply, chatErr := assistant.Chat(ctx, history, message)
				if chatErr != nil {
					fmt.Println(cli.ErrorStyle.Render(assistantBusyReply))
					continue
				}

				fmt.Printf("%s %s\n", cli.InfoStyle.Render("radar>"), reply)

				now := time.Now()
				history = append(history,
					model.ChatMessage{ID: uuid.NewString(), Role: model.ChatRoleUser, Text: message, Timestamp: now},
					model.ChatMessage{ID: uuid.NewString(), Role: model.ChatRoleModel, Text: reply, Timestamp: now},
				)
			}
		},
	}
}
