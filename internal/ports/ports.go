package ports

import (
	"context"
	"iter"
	"time"

	"ReadLater/internal/domain"
)

// ItemStore persists saved items. Every read and write is scoped to the owning user.
type ItemStore interface {
	Create(ctx context.Context, userID, url string, status domain.Status) (domain.SavedItem, error)
	Update(ctx context.Context, id, userID string, upd domain.ItemUpdate) (domain.SavedItem, error)
	FindMany(ctx context.Context, userID string) ([]domain.SavedItem, error)
	FindOne(ctx context.Context, id, userID string) (domain.SavedItem, error)
}

// StaleItemSweeper fails items that never left a pre-terminal status.
type StaleItemSweeper interface {
	FailStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// Extractor fetches a URL and returns normalised content.
type Extractor interface {
	Scrape(ctx context.Context, url string, opts domain.ScrapeOptions) (domain.ScrapeResult, error)
}

// SiteMapper lists links discovered under a seed URL.
type SiteMapper interface {
	Map(ctx context.Context, url string, opts domain.MapOptions) ([]string, error)
}

// WebSearcher runs a free-text web search.
type WebSearcher interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// Summarizer talks to the language model.
type Summarizer interface {
	StreamSummary(ctx context.Context, content string) iter.Seq2[string, error]
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DiscoveryCache memoises discovery results.
type DiscoveryCache interface {
	GetLinks(ctx context.Context, key string) ([]string, bool, error)
	SetLinks(ctx context.Context, key string, links []string) error
	GetResults(ctx context.Context, key string) ([]domain.SearchResult, bool, error)
	SetResults(ctx context.Context, key string, results []domain.SearchResult) error
}

// Notifier publishes short operator messages (Telegram, etc.).
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
