package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ReadLater/internal/app"
	"ReadLater/internal/config"
	"ReadLater/internal/domain"
)

var urlFile string

var importCmd = &cobra.Command{
	Use:   "import [urls...]",
	Short: "Import one or more URLs",
	Long: `Import URLs given as arguments and/or read from --file (one per line,
blank lines and lines starting with # are ignored). A single URL is imported
interactively; several URLs run as a bulk import with one progress line each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := append([]string(nil), args...)
		if urlFile != "" {
			fromFile, err := readURLFile(urlFile)
			if err != nil {
				return err
			}
			urls = append(urls, fromFile...)
		}
		if len(urls) == 0 {
			return errors.New("no urls given: pass them as arguments or with --file")
		}

		cfg := config.Load()
		return withApp(cmd.Context(), cfg, cliLogger(cfg), func(ctx context.Context, a *app.Application) error {
			if len(urls) == 1 {
				return importSingle(ctx, a, urls[0])
			}
			return importBulk(ctx, a, urls)
		})
	},
}

func init() {
	importCmd.Flags().StringVarP(&urlFile, "file", "f", "", "File with one URL per line")
}

func importSingle(ctx context.Context, a *app.Application, rawURL string) error {
	p := printer()
	item, err := a.Importer.ImportOne(ctx, userID, rawURL)
	if err != nil {
		return err
	}
	if item.Status != domain.StatusCompleted {
		p.Warning("%s could not be extracted (item %s is %s)", item.URL, item.ID, item.Status)
		return nil
	}
	title := item.URL
	if item.Title != nil {
		title = *item.Title
	}
	p.Success("saved %q as %s", title, item.ID)
	return nil
}

func importBulk(ctx context.Context, a *app.Application, urls []string) error {
	p := printer()
	seq, err := a.Bulk.Run(ctx, userID, urls)
	if err != nil {
		return err
	}

	var summary domain.BulkSummary
	for ev := range seq {
		summary.Add(ev)
		p.Progress(ev)
	}
	p.Summary(summary)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import interrupted after %d urls: %w", summary.Total(), err)
	}
	if notifier := a.Notifier(); notifier != nil {
		if err := notifier.Notify(ctx, summary.Message()); err != nil {
			p.Warning("notification failed: %v", err)
		}
	}
	return nil
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()
	return parseURLList(f)
}

func parseURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}
