package cli

import (
	"github.com/spf13/cobra"

	"github.com/tunequiz/tunequiz/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <code>",
		Short: "Watch a session's events without playing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := client.Dial(args[0])
			if err != nil {
				return err
			}
			defer conn.Close()

			for {
				var msg protocol.Message
				if err := conn.ReadJSON(&msg); err != nil {
					return nil
				}
				printEvent(msg)
			}
		},
	}
}
