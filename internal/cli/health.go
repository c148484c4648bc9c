package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Status string `json:"status"`
			}
			if err := client.Do(http.MethodGet, "/api/v1/health", &result); err != nil {
				return err
			}
			fmt.Printf("Server status: %s\n", result.Status)
			return nil
		},
	}
}
