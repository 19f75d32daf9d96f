package extraction

import "ReadLater/internal/domain"

// ArticleSchema is the JSON schema for the structured side-channel extraction.
var ArticleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string"},
		"author":      map[string]any{"type": "string"},
		"publishedAt": map[string]any{"type": "string"},
	},
}

// ArticleOptions are the fixed scrape options used for every import.
func ArticleOptions() domain.ScrapeOptions {
	return domain.ScrapeOptions{
		Formats:         []string{"markdown", "json"},
		Schema:          ArticleSchema,
		OnlyMainContent: true,
		Proxy:           "auto",
		Location:        domain.DefaultLocale,
	}
}
