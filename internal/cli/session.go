package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create and control game sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create a new session and print its join code",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Code string `json:"code"`
				WS   string `json:"ws"`
			}
			if err := client.Do(http.MethodPost, "/api/v1/sessions", &result); err != nil {
				return err
			}
			fmt.Printf("Session created: %s\n", result.Code)
			fmt.Printf("Websocket endpoint: %s\n", result.WS)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "start <code>",
		Short: "Start the game in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/sessions/" + args[0] + "/start"
			if err := client.Do(http.MethodPost, path, nil); err != nil {
				return err
			}
			fmt.Printf("Session %s started\n", args[0])
			return nil
		},
	})

	return cmd
}
