package domain

// Locale narrows content localisation on the extraction service.
type Locale struct {
	Country   string   `json:"country"`
	Languages []string `json:"languages"`
}

// DefaultLocale is used for every scrape and map request.
var DefaultLocale = Locale{Country: "US", Languages: []string{"en"}}

// ScrapeOptions describes what the extraction service should return.
type ScrapeOptions struct {
	Formats         []string
	Schema          map[string]any
	OnlyMainContent bool
	Proxy           string
	Location        Locale
}

// PageMetadata is the page level metadata reported by the extraction service.
type PageMetadata struct {
	Title       string
	Description string
	OGImage     string
	Language    string
	SourceURL   string
	StatusCode  int
}

// ExtractedFields is the structured side-channel extraction.
type ExtractedFields struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// ScrapeResult is the normalised output of a scrape.
type ScrapeResult struct {
	Markdown  string
	Metadata  PageMetadata
	Extracted ExtractedFields
}

// MapOptions configures site-map discovery.
type MapOptions struct {
	Limit    int
	Search   string
	Location Locale
}

// SearchOptions configures web search discovery.
type SearchOptions struct {
	Limit int
	// TBS is the recency window, e.g. "qdr:y" for the past year.
	TBS string
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
