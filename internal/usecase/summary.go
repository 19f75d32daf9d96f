package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"ReadLater/internal/domain"
	"ReadLater/internal/ports"
)

const maxTags = 5

const tagSystemPrompt = `You are a helpful assistant that extracts relevant tags from content summaries.
Extract 3-5 short, relevant tags that categorize the content.
Return ONLY a comma-separated list of tags, nothing else.
Example: technology, programming, web development, javascript`

// Summaries stores user summaries and derives tags from them.
type Summaries struct {
	store      ports.ItemStore
	summarizer ports.Summarizer
	logger     *slog.Logger
}

// NewSummaries constructs the summary use case.
func NewSummaries(store ports.ItemStore, summarizer ports.Summarizer, logger *slog.Logger) *Summaries {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Summaries{store: store, summarizer: summarizer, logger: logger}
}

// StreamSummary streams a fresh summary of the item's content.
func (s *Summaries) StreamSummary(ctx context.Context, userID, itemID string) (iter.Seq2[string, error], error) {
	if s.summarizer == nil {
		return nil, errors.New("summarizer is not configured")
	}

	item, err := s.store.FindOne(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if item.Content == nil || strings.TrimSpace(*item.Content) == "" {
		return nil, domain.ErrNoItemContent
	}
	return s.summarizer.StreamSummary(ctx, *item.Content), nil
}

// SaveSummary persists summary on the item together with generated tags.
// Nothing is written when the item is missing or tag generation fails.
func (s *Summaries) SaveSummary(ctx context.Context, userID, itemID, summary string) (domain.SavedItem, error) {
	if strings.TrimSpace(summary) == "" {
		return domain.SavedItem{}, &domain.ValidationError{Field: "summary", Reason: "must not be empty"}
	}
	if s.summarizer == nil {
		return domain.SavedItem{}, errors.New("summarizer is not configured")
	}

	if _, err := s.store.FindOne(ctx, itemID, userID); err != nil {
		return domain.SavedItem{}, err
	}

	text, err := s.summarizer.GenerateText(ctx, tagSystemPrompt, tagPrompt(summary))
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("generate tags: %w", err)
	}
	tags := ParseTags(text)
	s.logger.Debug("tags generated", "item_id", itemID, "tags", tags)

	item, err := s.store.Update(ctx, itemID, userID, domain.SummaryUpdate(summary, tags))
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("save summary: %w", err)
	}
	return item, nil
}

func tagPrompt(summary string) string {
	return "Extract tags from this summary: \n\n" + summary
}

// ParseTags splits a comma separated completion into at most five lower-case tags.
// Empty entries and case-insensitive repeats are dropped; order is preserved.
func ParseTags(text string) []string {
	tags := make([]string, 0, maxTags)
	seen := map[string]struct{}{}
	for _, part := range strings.Split(text, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
