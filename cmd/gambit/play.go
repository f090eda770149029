package main

import (
	"errors"

	"github.com/aretw0/gambit/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <scenario>",
	Short: "Play a scenario in the terminal",
	Long: `Walks a scenario interactively. Answer with the option number or its ID; type 'q' to quit.
When a narrative provider is configured, the review is printed after the summary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		user, _ := cmd.Flags().GetString("user")
		plain, _ := cmd.Flags().GetBool("plain")

		out := cmd.OutOrStdout()
		renderer := tui.RendererFor(out)
		if plain {
			renderer = tui.PlainRenderer
		} else {
			tui.PrintBanner(out)
		}

		player := tui.NewPlayer(a.engine, cmd.InOrStdin(), out,
			tui.WithUserID(user),
			tui.WithRenderer(renderer),
			tui.WithAnalysis(a.narrated),
		)
		if _, err := player.Play(cmd.Context(), args[0]); err != nil && !errors.Is(err, tui.ErrQuit) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("user", "local", "User ID the progress is stored under")
	playCmd.Flags().Bool("plain", false, "Disable Markdown rendering and the banner")
}
