package main

import (
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wtharvey/chestkeeper/internal/cli"
	"github.com/wtharvey/chestkeeper/internal/ingest"
)

func importCmd() *cobra.Command {
	var (
		entriesFile string
		rulesFile   string
		listFiles   []string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import chest log entries, correction rules and validation lists",
		Long: `Read OCR chest log exports (CSV), correction rule files (CSV) and
validation list files (one value per line) into the store, then save a
snapshot. List files are given as name=path, e.g. --list player=players.txt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if entriesFile == "" && rulesFile == "" && len(listFiles) == 0 {
				return fmt.Errorf("nothing to import: provide --entries, --rules or --list")
			}
			ctx := cmd.Context()

			ws, err := openWorkspace(ctx)
			if err != nil {
				return err
			}

			// One explicit transaction around the whole import: one
			// EntriesUpdated however many rows come in.
			if err := ws.store.BeginTransaction(); err != nil {
				ws.close()
				return err
			}

			imported := 0
			if entriesFile != "" {
				entries, err := ingest.ReadEntriesFile(entriesFile)
				if err != nil {
					_ = ws.store.RollbackTransaction()
					ws.close()
					return err
				}
				bar := progressbar.Default(int64(len(entries)), "importing entries")
				for _, e := range entries {
					if err := ws.store.AddEntry(e); err != nil {
						_ = ws.store.RollbackTransaction()
						ws.close()
						return fmt.Errorf("failed to import entry: %w", err)
					}
					_ = bar.Add(1)
				}
				imported = len(entries)
			}

			if rulesFile != "" {
				rules, err := ingest.ReadRulesFile(rulesFile)
				if err != nil {
					_ = ws.store.RollbackTransaction()
					ws.close()
					return err
				}
				if err := ws.store.SetCorrectionRules(rules); err != nil {
					_ = ws.store.RollbackTransaction()
					ws.close()
					return err
				}
			}

			for _, arg := range listFiles {
				name, path, ok := strings.Cut(arg, "=")
				if !ok {
					_ = ws.store.RollbackTransaction()
					ws.close()
					return fmt.Errorf("invalid --list %q: expected name=path", arg)
				}
				values, err := ingest.ReadListFile(path)
				if err != nil {
					_ = ws.store.RollbackTransaction()
					ws.close()
					return err
				}
				if err := ws.store.SetValidationList(name, values); err != nil {
					_ = ws.store.RollbackTransaction()
					ws.close()
					return err
				}
			}

			if err := ws.store.CommitTransaction(); err != nil {
				ws.close()
				return err
			}
			if err := ws.saveAndClose(ctx); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Imported %d entries (%d total in store)", imported, ws.store.EntryCount())))
			return nil
		},
	}

	cmd.Flags().StringVar(&entriesFile, "entries", "", "CSV chest log export to import")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "CSV correction rule file to import")
	cmd.Flags().StringArrayVar(&listFiles, "list", nil, "validation list as name=path (repeatable)")

	return cmd
}
