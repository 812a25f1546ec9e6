package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wtharvey/chestkeeper/internal/cli"
	"github.com/wtharvey/chestkeeper/internal/validation"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate entries against the configured validation lists",
		Long: `Check every entry field that has a validation list. With fuzzy matching
enabled, values close enough to a list member (by normalized edit distance)
also count as valid.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ws, err := openWorkspace(ctx)
			if err != nil {
				return err
			}

			fuzzy := viper.GetBool("validation.fuzzy")
			threshold := viper.GetFloat64("validation.threshold")

			engine := validation.New(ws.store)
			result, err := engine.Validate(ctx, fuzzy, threshold)
			if err != nil {
				ws.close()
				return err
			}

			if err := ws.saveAndClose(ctx); err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle("Validation complete"))
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("  %s %d valid", cli.SuccessIcon, result.Valid)))
			if result.Invalid > 0 {
				fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("  %s %d invalid", cli.ErrorIcon, result.Invalid)))
			}
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("  %d entries checked", result.Total)))
			return nil
		},
	}

	cmd.Flags().Bool("fuzzy", true, "enable fuzzy matching")
	cmd.Flags().Float64("threshold", 0.8, "fuzzy similarity threshold (0..1)")
	_ = viper.BindPFlag("validation.fuzzy", cmd.Flags().Lookup("fuzzy"))
	_ = viper.BindPFlag("validation.threshold", cmd.Flags().Lookup("threshold"))

	return cmd
}
