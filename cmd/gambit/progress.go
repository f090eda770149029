package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect stored traversals",
	Long:  `List and inspect the progress records kept in the configured store.`,
}

var progressLsCmd = &cobra.Command{
	Use:   "ls <user-id>",
	Short: "List every traversal of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.engine.History(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error listing progress: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No progress found.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tPHASE\tSCORE\tDECISIONS\tBAD\tUPDATED")
		for _, p := range records {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
				p.ScenarioID, p.Phase(), p.Score, len(p.Decisions), p.BadDecisionCount,
				p.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var progressInspectCmd = &cobra.Command{
	Use:   "inspect <user-id> <scenario>",
	Short: "Print a progress record as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.engine.Progress(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("error loading progress: %w", err)
		}

		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling progress: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressLsCmd)
	progressCmd.AddCommand(progressInspectCmd)
}
