package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wtharvey/chestkeeper/internal/cli"
	"github.com/wtharvey/chestkeeper/internal/correction"
)

func correctCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correct",
		Short: "Apply correction rules to all entries",
		Long: `Run every enabled correction rule over every entry. Original values are
preserved so corrections can be undone with 'chestkeeper reset'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ws, err := openWorkspace(ctx)
			if err != nil {
				return err
			}

			engine := correction.New(ws.store)
			result, err := engine.Apply(ctx)
			if err != nil {
				ws.close()
				return err
			}

			if err := ws.saveAndClose(ctx); err != nil {
				return err
			}

			if result.TotalCorrections == 0 {
				fmt.Println(cli.FormatSuccess("No corrections needed"))
				return nil
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Applied %d corrections across %d entries",
				result.TotalCorrections, result.EntriesModified)))
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var entryID string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Undo applied corrections",
		Long:  `Restore corrected fields to their original OCR values, for one entry or all.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ws, err := openWorkspace(ctx)
			if err != nil {
				return err
			}

			engine := correction.New(ws.store)
			if entryID != "" {
				if !engine.Reset(entryID) {
					ws.close()
					return fmt.Errorf("entry %q has no corrections to reset", entryID)
				}
				if err := ws.saveAndClose(ctx); err != nil {
					return err
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Reset corrections on %s", entryID)))
				return nil
			}

			n, err := engine.ResetAll()
			if err != nil {
				ws.close()
				return err
			}
			if err := ws.saveAndClose(ctx); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Reset corrections on %d entries", n)))
			return nil
		},
	}

	cmd.Flags().StringVar(&entryID, "entry", "", "reset a single entry by id")
	return cmd
}
