package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tunequiz/tunequiz/internal/model"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Browse recorded game history",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded games",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Games []model.GameRecord `json:"games"`
			}
			if err := client.Do(http.MethodGet, "/api/v1/games", &result); err != nil {
				return err
			}

			if len(result.Games) == 0 {
				fmt.Println("No games recorded yet")
				return nil
			}
			for _, g := range result.Games {
				fmt.Printf("%s  session=%s  rounds=%d  completed=%s\n",
					g.ID, g.Session, len(g.Rounds), g.CompletedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one recorded game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record model.GameRecord
			if err := client.Do(http.MethodGet, "/api/v1/games/"+args[0], &record); err != nil {
				return err
			}

			fmt.Printf("Game %s (session %s)\n", record.ID, record.Session)
			for _, round := range record.Rounds {
				fmt.Printf("  Round %d: %q by %s\n", round.Number, round.CanonicalTitle, round.CanonicalArtist)
			}
			fmt.Println("Final scores:")
			for i, fs := range record.FinalScores {
				fmt.Printf("  %d. %s: %d\n", i+1, fs.DisplayName, fs.Score)
			}
			return nil
		},
	})

	return cmd
}
