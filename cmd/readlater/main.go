package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ReadLater/internal/app"
	"ReadLater/internal/config"
	"ReadLater/internal/logging"
	"ReadLater/internal/output"
)

var (
	userID  string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:           "readlater",
	Short:         "Save web pages to read later",
	Long:          `Import web pages as clean markdown, summarize them and discover new links to read.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		return withApp(cmd.Context(), cfg, logger, func(ctx context.Context, a *app.Application) error {
			return a.Serve(ctx)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the item store schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return withApp(cmd.Context(), cfg, cliLogger(cfg), func(context.Context, *app.Application) error {
			printer().Success("schema is up to date (%s)", cfg.Database.Driver)
			return nil
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Mark items stuck in PENDING or PROCESSING as FAILED",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return withApp(cmd.Context(), cfg, cliLogger(cfg), func(ctx context.Context, a *app.Application) error {
			n, err := a.ReconcileOnce(ctx)
			if err != nil {
				return err
			}
			printer().Success("%d stale items marked failed", n)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userID, "user", "local", "User id that owns imported items")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd, importCmd, itemsCmd, discoverCmd)
}

func withApp(ctx context.Context, cfg config.Config, logger *slog.Logger, run func(context.Context, *app.Application) error) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()
	return run(ctx, a)
}

// cliLogger keeps stdout free for command output.
func cliLogger(cfg config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if level == "info" {
		level = "warn"
	}
	return logging.NewWithWriter(os.Stderr, level, cfg.Logging.Format)
}

func printer() *output.Printer {
	return output.NewPrinter(output.UseColors(noColor))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
