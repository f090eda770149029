package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/gambit/internal/presentation/graph"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <scenario>",
	Short: "Export a scenario graph as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the scenario steps and options.
With --user, the steps visited by that user and their current step are highlighted
from the configured progress store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		scenarioID := args[0]

		steps, err := a.engine.Steps(ctx, scenarioID)
		if err != nil {
			return fmt.Errorf("error inspecting scenario: %w", err)
		}

		var overlay *graph.Overlay
		if user, _ := cmd.Flags().GetString("user"); user != "" {
			p, err := a.engine.Store().Load(ctx, user, scenarioID)
			switch {
			case errors.Is(err, domain.ErrProgressNotFound):
				a.logger.Warn("no progress to overlay", "user_id", user, "scenario_id", scenarioID)
			case err != nil:
				return err
			default:
				overlay = graph.OverlayFromProgress(p)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(steps, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("user", "", "Highlight the traversal of this user")
}
