package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"ReadLater/internal/domain"
	"ReadLater/internal/extraction"
	"ReadLater/internal/metrics"
	"ReadLater/internal/ports"
)

const (
	modeInteractive = "interactive"
	modeBulk        = "bulk"
)

// ImporterDeps wires the driven adapters used by a single-item import.
type ImporterDeps struct {
	Store     ports.ItemStore
	Extractor ports.Extractor
	Logger    *slog.Logger
}

// Importer turns a URL into a saved item in a terminal status.
type Importer struct {
	store     ports.ItemStore
	extractor ports.Extractor
	logger    *slog.Logger
}

// NewImporter constructs the single-item import use case.
func NewImporter(deps ImporterDeps) *Importer {
	return &Importer{
		store:     deps.Store,
		extractor: deps.Extractor,
		logger:    deps.Logger,
	}
}

// ImportOne imports rawURL interactively: the item is created in PROCESSING.
// Extraction failures are absorbed into a FAILED item; only invalid input and
// store failures are returned as errors.
func (i *Importer) ImportOne(ctx context.Context, userID, rawURL string) (domain.SavedItem, error) {
	url, err := NormalizeURL(rawURL)
	if err != nil {
		return domain.SavedItem{}, err
	}
	return i.importURL(ctx, userID, url, domain.StatusProcessing, modeInteractive)
}

func (i *Importer) importURL(ctx context.Context, userID, url string, initial domain.Status, mode string) (domain.SavedItem, error) {
	if i.store == nil || i.extractor == nil {
		return domain.SavedItem{}, errors.New("importer is not configured")
	}

	item, err := i.store.Create(ctx, userID, url, initial)
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("create item: %w", err)
	}
	log := i.log().With("item_id", item.ID, "url", url, "mode", mode)

	started := time.Now()
	result, scrapeErr := i.extractor.Scrape(ctx, url, extraction.ArticleOptions())
	elapsed := time.Since(started).Seconds()

	// The terminal write must land even if the caller went away mid-scrape.
	writeCtx := context.WithoutCancel(ctx)

	if scrapeErr != nil {
		metrics.RecordExtraction("error", elapsed)
		log.Warn("extraction failed", "error", scrapeErr)
		return i.fail(writeCtx, item, mode)
	}
	metrics.RecordExtraction("ok", elapsed)

	completed, err := i.store.Update(writeCtx, item.ID, userID, completionFrom(result))
	if err != nil {
		log.Error("complete item", "error", err)
		if failed, fErr := i.fail(writeCtx, item, mode); fErr == nil {
			return failed, nil
		}
		return item, fmt.Errorf("complete item %s: %w", item.ID, err)
	}

	metrics.RecordImport(mode, string(completed.Status))
	log.Debug("item completed", "title", deref(completed.Title), "has_published_at", completed.PublishedAt != nil)
	return completed, nil
}

func (i *Importer) fail(ctx context.Context, item domain.SavedItem, mode string) (domain.SavedItem, error) {
	failed, err := i.store.Update(ctx, item.ID, item.UserID, domain.FailureUpdate())
	if err != nil {
		return item, fmt.Errorf("mark item %s failed: %w", item.ID, err)
	}
	metrics.RecordImport(mode, string(failed.Status))
	return failed, nil
}

// completionFrom maps a scrape result to the COMPLETED update. A missing or
// unparseable publication date is stored as NULL and never blocks completion.
func completionFrom(res domain.ScrapeResult) domain.ItemUpdate {
	title := res.Metadata.Title
	if title == "" {
		title = res.Extracted.Title
	}
	return domain.CompletionUpdate(
		optional(title),
		optional(res.Markdown),
		optional(res.Metadata.OGImage),
		optional(res.Extracted.Author),
		ParsePublishedAt(res.Extracted.PublishedAt),
	)
}

// ParsePublishedAt parses a calendar date in any common layout, returning nil when it cannot.
func ParsePublishedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (i *Importer) log() *slog.Logger {
	if i.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return i.logger
}
