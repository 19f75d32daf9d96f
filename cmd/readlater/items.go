package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ReadLater/internal/app"
	"ReadLater/internal/config"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Inspect saved items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved items, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return withApp(cmd.Context(), cfg, cliLogger(cfg), func(ctx context.Context, a *app.Application) error {
			items, err := a.Items.List(ctx, userID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				printer().Info("no items saved for %s", userID)
				return nil
			}
			return printer().ItemsTable(items)
		})
	},
}

var itemsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an item's markdown content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return withApp(cmd.Context(), cfg, cliLogger(cfg), func(ctx context.Context, a *app.Application) error {
			item, err := a.Items.Get(ctx, userID, args[0])
			if err != nil {
				return err
			}
			p := printer()
			if item.Title != nil {
				p.Info("# %s", *item.Title)
			}
			p.Info("%s [%s]", item.URL, p.StatusBadge(item.Status))
			if item.Content != nil {
				fmt.Fprintln(p.Out(), *item.Content)
			}
			return nil
		})
	},
}

func init() {
	itemsCmd.AddCommand(itemsListCmd, itemsShowCmd)
}
