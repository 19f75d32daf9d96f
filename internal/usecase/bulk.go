package usecase

import (
	"context"
	"iter"
	"log/slog"
	"sync/atomic"

	"ReadLater/internal/domain"
	"ReadLater/internal/metrics"
)

// BulkImporter drives the single-item import over a list of URLs, one at a time.
type BulkImporter struct {
	importer *Importer
	logger   *slog.Logger
}

// NewBulkImporter wraps an Importer.
func NewBulkImporter(importer *Importer, logger *slog.Logger) *BulkImporter {
	return &BulkImporter{importer: importer, logger: logger}
}

// Run validates and deduplicates urls, then returns a lazy, single-use sequence
// yielding one progress event per URL in input order. Nothing is written until
// the sequence is ranged over; stopping the range, or cancelling ctx, stops
// processing after the current item. Items already processed stay committed.
func (b *BulkImporter) Run(ctx context.Context, userID string, urls []string) (iter.Seq[domain.BulkProgress], error) {
	normalized, err := NormalizeURLs(urls)
	if err != nil {
		return nil, err
	}

	total := len(normalized)
	log := b.log().With("user_id", userID, "total", total)
	var consumed atomic.Bool

	return func(yield func(domain.BulkProgress) bool) {
		if consumed.Swap(true) {
			log.Warn("bulk import sequence reused")
			return
		}
		metrics.BulkImportSize.Observe(float64(total))
		log.Info("bulk import started")

		var summary domain.BulkSummary
		defer func() {
			log.Info("bulk import finished",
				"processed", summary.Total(),
				"succeeded", summary.Succeeded,
				"failed", summary.Failed)
		}()

		for i, url := range normalized {
			if err := ctx.Err(); err != nil {
				log.Info("bulk import cancelled", "error", err)
				return
			}

			progress := domain.BulkProgress{
				Completed: i + 1,
				Total:     total,
				URL:       url,
				Status:    b.importOne(ctx, userID, url),
			}
			summary.Add(progress)

			if !yield(progress) {
				return
			}
		}
	}, nil
}

func (b *BulkImporter) importOne(ctx context.Context, userID, url string) domain.Outcome {
	item, err := b.importer.importURL(ctx, userID, url, domain.StatusPending, modeBulk)
	if err != nil {
		b.log().Error("bulk item import failed", "url", url, "error", err)
		return domain.OutcomeFailed
	}
	return domain.OutcomeFor(item.Status)
}

func (b *BulkImporter) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// Collect drains seq and aggregates the outcomes.
func Collect(seq iter.Seq[domain.BulkProgress]) domain.BulkSummary {
	var summary domain.BulkSummary
	for p := range seq {
		summary.Add(p)
	}
	return summary
}
