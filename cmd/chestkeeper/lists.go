package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wtharvey/chestkeeper/internal/cli"
)

func listsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage validation lists",
	}
	cmd.AddCommand(showListsCmd())
	cmd.AddCommand(addListValueCmd())
	cmd.AddCommand(removeListValueCmd())
	return cmd
}

func showListsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every validation list and its values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.close()

			names := ws.store.ValidationListNames()
			if len(names) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No validation lists. Use 'chestkeeper import --list' to load some."))
				return nil
			}

			for _, name := range names {
				values, _ := ws.store.GetValidationList(name)
				fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s (%d)", name, len(values))))
				for _, v := range values {
					fmt.Printf("  %s\n", v)
				}
			}
			return nil
		},
	}
}

func addListValueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <list> <value>",
		Short: "Add a value to a validation list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, value := args[0], args[1]

			ws, err := openWorkspace(ctx)
			if err != nil {
				return err
			}

			added, err := ws.store.AddValidationEntry(name, value)
			if err != nil {
				ws.close()
				return err
			}
			if !added {
				ws.close()
				fmt.Println(cli.FormatWarning(fmt.Sprintf("%q is already in %s", value, name)))
				return nil
			}

			if err := ws.saveAndClose(ctx); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %q to %s", value, name)))
			return nil
		},
	}
}

func removeListValueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <list> <value>",
		Short: "Remove a value from a validation list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, value := args[0], args[1]

			ws, err := openWorkspace(ctx)
			if err != nil {
				return err
			}

			removed, err := ws.store.RemoveValidationEntry(name, value)
			if err != nil {
				ws.close()
				return err
			}
			if !removed {
				ws.close()
				fmt.Println(cli.FormatWarning(fmt.Sprintf("%q is not in %s", value, name)))
				return nil
			}

			if err := ws.saveAndClose(ctx); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed %q from %s", value, name)))
			return nil
		},
	}
}
