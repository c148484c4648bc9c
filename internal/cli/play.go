package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/protocol"
)

func newPlayCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play <code>",
		Short: "Join a session as a player",
		Long: `Join a session and play from the terminal.

Commands while playing:
  title <text>    guess the track title
  artist <text>   guess the artist
  repeat          replay the current clip
  advance         close the round and reveal
  quit            leave the session`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := client.Dial(args[0])
			if err != nil {
				return err
			}
			defer conn.Close()

			join := protocol.MustNew(protocol.TypeJoin, protocol.JoinPayload{Name: name})
			if err := conn.WriteJSON(join); err != nil {
				return fmt.Errorf("join failed: %w", err)
			}

			// Server events print as they arrive
			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					var msg protocol.Message
					if err := conn.ReadJSON(&msg); err != nil {
						return
					}
					printEvent(msg)
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				select {
				case <-done:
					return nil
				default:
				}

				msg, quit := parseCommand(scanner.Text())
				if quit {
					_ = conn.WriteJSON(protocol.MustNew(protocol.TypeLeave, nil))
					return nil
				}
				if msg == nil {
					continue
				}
				if err := conn.WriteJSON(*msg); err != nil {
					return fmt.Errorf("send failed: %w", err)
				}
			}

			<-done
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "display name to join with")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// parseCommand turns one input line into a protocol message
func parseCommand(line string) (*protocol.Message, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	verb, rest, _ := strings.Cut(line, " ")
	switch strings.ToLower(verb) {
	case "title":
		msg := protocol.MustNew(protocol.TypeSubmit, protocol.SubmitPayload{
			Field: model.FieldTitle,
			Text:  rest,
		})
		return &msg, false
	case "artist":
		msg := protocol.MustNew(protocol.TypeSubmit, protocol.SubmitPayload{
			Field: model.FieldArtist,
			Text:  rest,
		})
		return &msg, false
	case "repeat":
		msg := protocol.MustNew(protocol.TypeRepeat, nil)
		return &msg, false
	case "advance":
		msg := protocol.MustNew(protocol.TypeAdvance, nil)
		return &msg, false
	case "quit", "exit":
		return nil, true
	default:
		fmt.Printf("Unknown command %q (try: title, artist, repeat, advance, quit)\n", verb)
		return nil, false
	}
}
