package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ReadLater/internal/app"
	"ReadLater/internal/config"
)

var mapFilter string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find URLs worth importing",
}

var discoverMapCmd = &cobra.Command{
	Use:   "map <url>",
	Short: "List links found under a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return withApp(cmd.Context(), cfg, cliLogger(cfg), func(ctx context.Context, a *app.Application) error {
			links, err := a.Discovery.MapSite(ctx, args[0], mapFilter)
			if err != nil {
				return err
			}
			p := printer()
			for _, link := range links {
				fmt.Fprintln(p.Out(), link)
			}
			if len(links) == 0 {
				p.Warning("no links found")
			}
			return nil
		})
	},
}

var discoverSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the web for recent pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return withApp(cmd.Context(), cfg, cliLogger(cfg), func(ctx context.Context, a *app.Application) error {
			results, err := a.Discovery.SearchWeb(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printer().SearchTable(results)
		})
	},
}

func init() {
	discoverMapCmd.Flags().StringVarP(&mapFilter, "search", "s", "", "Only keep links matching this text")
	discoverCmd.AddCommand(discoverMapCmd, discoverSearchCmd)
}
