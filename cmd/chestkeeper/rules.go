package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wtharvey/chestkeeper/internal/cli"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage correction rules",
	}
	cmd.AddCommand(listRulesCmd())
	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all correction rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.close()

			rules := ws.store.GetCorrectionRules()
			if len(rules) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No correction rules. Use 'chestkeeper import --rules' to load some."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("From"),
				cli.TableHeaderStyle.Render("To"),
				cli.TableHeaderStyle.Render("Field"),
				cli.TableHeaderStyle.Render("Priority"),
				cli.TableHeaderStyle.Render("Enabled"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 20),
				strings.Repeat("-", 20),
				strings.Repeat("-", 12),
				strings.Repeat("-", 8),
				strings.Repeat("-", 7))

			for _, r := range rules {
				field := r.FieldCategory
				if field == "" {
					field = cli.SubtleStyle.Render("(any)")
				}
				enabled := cli.SuccessIcon
				if !r.Enabled {
					enabled = cli.SubtleStyle.Render(cli.ErrorIcon)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.FromText, r.ToText, field, r.Priority, enabled)
			}
			return nil
		},
	}
}
