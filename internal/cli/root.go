package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	client    *Client
)

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tunequiz",
		Short: "Client for the tunequiz music trivia server",
		Long: `tunequiz is a client for the tunequiz music trivia server.

It can create and start sessions, join a session as a player, watch a
session's events, and browse the recorded game history.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client = NewClient(serverURL)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		getEnvOrDefault("TUNEQUIZ_SERVER", "http://localhost:8080"),
		"Server URL (env: TUNEQUIZ_SERVER)")

	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
