package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReadLater/internal/domain"
)

func newTestImporter(store *memStore, extractor *fakeExtractor) *Importer {
	return NewImporter(ImporterDeps{Store: store, Extractor: extractor})
}

func TestImportOneCompletesItem(t *testing.T) {
	store := newMemStore()
	extractor := newFakeExtractor()
	extractor.results["https://blog.test/post"] = domain.ScrapeResult{
		Markdown: "# Post\n\nBody",
		Metadata: domain.PageMetadata{Title: "Post", OGImage: "https://blog.test/cover.png"},
		Extracted: domain.ExtractedFields{
			Title:       "Ignored",
			Author:      "Ada",
			PublishedAt: "2024-03-05",
		},
	}

	item, err := newTestImporter(store, extractor).ImportOne(context.Background(), "user-1", "  https://blog.test/post ")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, item.Status)
	assert.Equal(t, []domain.Status{domain.StatusProcessing}, store.initial)
	assert.Equal(t, "Post", deref(item.Title))
	assert.Equal(t, "# Post\n\nBody", deref(item.Content))
	assert.Equal(t, "https://blog.test/cover.png", deref(item.OGImage))
	assert.Equal(t, "Ada", deref(item.Author))
	require.NotNil(t, item.PublishedAt)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *item.PublishedAt)

	require.Len(t, extractor.opts, 1)
	assert.True(t, extractor.opts[0].OnlyMainContent)
	assert.Equal(t, "auto", extractor.opts[0].Proxy)
	assert.Equal(t, domain.DefaultLocale, extractor.opts[0].Location)
}

func TestImportOneFallsBackToExtractedTitle(t *testing.T) {
	store := newMemStore()
	extractor := newFakeExtractor()
	extractor.results["https://a.test"] = domain.ScrapeResult{
		Markdown:  "text",
		Extracted: domain.ExtractedFields{Title: "From schema"},
	}

	item, err := newTestImporter(store, extractor).ImportOne(context.Background(), "u", "https://a.test")
	require.NoError(t, err)
	assert.Equal(t, "From schema", deref(item.Title))
}

func TestImportOneWithoutPublishedDateIsCompleted(t *testing.T) {
	store := newMemStore()
	extractor := newFakeExtractor()
	extractor.results["https://a.test"] = domain.ScrapeResult{
		Markdown: "text",
		Metadata: domain.PageMetadata{Title: "No date"},
	}

	item, err := newTestImporter(store, extractor).ImportOne(context.Background(), "u", "https://a.test")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, item.Status)
	assert.Nil(t, item.PublishedAt)
	assert.Equal(t, "No date", deref(item.Title))
}

func TestImportOneUnparseableDateStoredAsNull(t *testing.T) {
	store := newMemStore()
	extractor := newFakeExtractor()
	extractor.results["https://a.test"] = domain.ScrapeResult{
		Markdown:  "text",
		Extracted: domain.ExtractedFields{PublishedAt: "not a date"},
	}

	item, err := newTestImporter(store, extractor).ImportOne(context.Background(), "u", "https://a.test")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, item.Status)
	assert.Nil(t, item.PublishedAt)
}

func TestImportOneExtractionErrorMarksFailed(t *testing.T) {
	store := newMemStore()
	extractor := newFakeExtractor()
	extractor.errs["https://down.test"] = &domain.ExternalHTTPError{Service: "firecrawl", StatusCode: 502}

	item, err := newTestImporter(store, extractor).ImportOne(context.Background(), "u", "https://down.test")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, item.Status)
	assert.Nil(t, item.Title)
	assert.Nil(t, item.Content)
	assert.Nil(t, item.PublishedAt)
}

func TestImportOneRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://a.test/file", "not a url", "https://"} {
		store := newMemStore()
		extractor := newFakeExtractor()

		_, err := newTestImporter(store, extractor).ImportOne(context.Background(), "u", raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)

		var vErr *domain.ValidationError
		assert.True(t, errors.As(err, &vErr), raw)
		assert.Zero(t, store.writes, raw)
		assert.Empty(t, extractor.calls, raw)
	}
}

func TestImportOneCreateErrorIsReturned(t *testing.T) {
	store := newMemStore()
	store.failOn["https://a.test"] = errors.New("db down")

	_, err := newTestImporter(store, newFakeExtractor()).ImportOne(context.Background(), "u", "https://a.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestImportOneTerminalWriteSurvivesCancellation(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	extractor := &cancellingExtractor{cancel: cancel}

	item, err := NewImporter(ImporterDeps{Store: store, Extractor: extractor}).ImportOne(ctx, "u", "https://a.test")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, item.Status)
}

// cancellingExtractor cancels the caller's context in the middle of a scrape.
type cancellingExtractor struct {
	cancel context.CancelFunc
}

func (c *cancellingExtractor) Scrape(context.Context, string, domain.ScrapeOptions) (domain.ScrapeResult, error) {
	c.cancel()
	return domain.ScrapeResult{Markdown: "late"}, nil
}

func TestParsePublishedAt(t *testing.T) {
	cases := []struct {
		raw  string
		want *time.Time
	}{
		{raw: "", want: nil},
		{raw: "   ", want: nil},
		{raw: "yesterday-ish", want: nil},
		{raw: "2024-03-05", want: ptrTime(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))},
		{raw: "2024-03-05T10:30:00Z", want: ptrTime(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))},
		{raw: "March 5, 2024", want: ptrTime(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))},
	}

	for _, tc := range cases {
		got := ParsePublishedAt(tc.raw)
		if tc.want == nil {
			assert.Nil(t, got, tc.raw)
			continue
		}
		if assert.NotNil(t, got, tc.raw) {
			assert.True(t, tc.want.Equal(*got), "%s: got %v", tc.raw, *got)
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
