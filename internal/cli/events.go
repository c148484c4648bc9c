package cli

import (
	"fmt"

	"github.com/tunequiz/tunequiz/internal/protocol"
)

// printEvent renders one server message as a line of text
func printEvent(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeWelcome:
		var p protocol.WelcomePayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("Joined session %s as player %s\n", p.Session, p.PlayerID)
		}

	case protocol.TypePlayerJoined:
		var p protocol.PlayerJoinedPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("* %s joined\n", p.DisplayName)
		}

	case protocol.TypePlayerLeft:
		var p protocol.PlayerLeftPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("* %s left\n", p.DisplayName)
		}

	case protocol.TypeRoundStarted:
		var p protocol.RoundStartedPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("--- Round %d of %d ---\n", p.RoundNo, p.TotalRounds)
		}

	case protocol.TypeAudioPlay:
		var p protocol.AudioPlayPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("(play %s)\n", p.TrackRef)
		}

	case protocol.TypeAudioStop:
		fmt.Println("(stop playback)")

	case protocol.TypeScoreUpdate:
		var p protocol.ScoreUpdatePayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("Score: %s -> %d\n", p.PlayerID, p.Score)
		}

	case protocol.TypeReveal:
		var p protocol.RevealPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("Round %d was %q by %s\n", p.RoundNo, p.CanonicalTitle, p.CanonicalArtist)
			for _, r := range p.Results {
				marker := "x"
				if r.Correct {
					marker = "+"
				}
				if r.FirstCorrect {
					marker = "*"
				}
				fmt.Printf("  [%s] %s: %d points\n", marker, r.PlayerID, r.Points)
			}
		}

	case protocol.TypeGameEnded:
		var p protocol.GameEndedPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Println("=== Game over ===")
			for i, fs := range p.FinalScores {
				fmt.Printf("%d. %s: %d\n", i+1, fs.DisplayName, fs.Score)
			}
			if !p.Recorded {
				fmt.Println("(warning: this game was not saved to history)")
			}
		}

	case protocol.TypeSnapshot:
		var p protocol.SnapshotPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("Session %s, round %d of %d (%s), %d players\n",
				p.Session, p.RoundNo, p.TotalRounds, p.RoundState, len(p.Players))
		}

	case protocol.TypeError:
		var p protocol.ErrorPayload
		if msg.DecodePayload(&p) == nil {
			fmt.Printf("Error: %s (%s)\n", p.Message, p.Code)
		}

	default:
		fmt.Printf("(%s)\n", msg.Type)
	}
}
