package main

import (
	"fmt"

	"github.com/aretw0/gambit/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [catalog]",
	Short: "Check the scenario catalog for consistency",
	Long: `Loads the catalog and checks every scenario: exactly one root step, no dangling
next-step references, no unreachable steps, no duplicate option IDs and a known difficulty.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 && !cmd.Flags().Changed("catalog") {
			cfg.CatalogPath = args[0]
		}

		catalog, err := openCatalog(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		if err := validator.ValidateCatalog(cmd.Context(), catalog); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
