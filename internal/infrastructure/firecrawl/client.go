package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ReadLater/internal/domain"
	"ReadLater/internal/extraction"
	"ReadLater/internal/ports"
)

// Client talks to the Firecrawl v2 REST API for scraping, site maps and search.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var (
	_ extraction.Provider = (*Client)(nil)
	_ ports.WebSearcher   = (*Client)(nil)
)

// Options configures a Client.
type Options struct {
	Endpoint          string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// NewClient creates a reusable HTTP client. A non-positive RequestsPerMinute disables throttling.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &Client{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		apiKey:   opts.APIKey,
		http:     httpClient,
		limiter:  limiter,
		logger:   opts.Logger,
	}
}

// Name identifies the provider inside the extraction registry.
func (c *Client) Name() string {
	return "firecrawl"
}

type locationPayload struct {
	Country   string   `json:"country,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

type scrapeRequest struct {
	URL             string           `json:"url"`
	Formats         []any            `json:"formats"`
	OnlyMainContent bool             `json:"onlyMainContent"`
	Proxy           string           `json:"proxy,omitempty"`
	Location        *locationPayload `json:"location,omitempty"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string          `json:"markdown"`
		JSON     json.RawMessage `json:"json"`
		Metadata struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OGImage     string `json:"ogImage"`
			Language    string `json:"language"`
			SourceURL   string `json:"sourceURL"`
			StatusCode  int    `json:"statusCode"`
		} `json:"metadata"`
	} `json:"data"`
}

// Scrape fetches url through Firecrawl and normalises the payload.
func (c *Client) Scrape(ctx context.Context, url string, opts domain.ScrapeOptions) (domain.ScrapeResult, error) {
	payload := scrapeRequest{
		URL:             url,
		Formats:         buildFormats(opts),
		OnlyMainContent: opts.OnlyMainContent,
		Proxy:           opts.Proxy,
		Location:        toLocation(opts.Location),
	}

	var resp scrapeResponse
	if err := c.post(ctx, "/v2/scrape", payload, &resp); err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("scrape %s: %w", url, err)
	}
	if !resp.Success {
		return domain.ScrapeResult{}, fmt.Errorf("scrape %s: %s", url, failureReason(resp.Error))
	}

	result := domain.ScrapeResult{
		Markdown: resp.Data.Markdown,
		Metadata: domain.PageMetadata{
			Title:       resp.Data.Metadata.Title,
			Description: resp.Data.Metadata.Description,
			OGImage:     resp.Data.Metadata.OGImage,
			Language:    resp.Data.Metadata.Language,
			SourceURL:   resp.Data.Metadata.SourceURL,
			StatusCode:  resp.Data.Metadata.StatusCode,
		},
	}

	if len(resp.Data.JSON) > 0 && string(resp.Data.JSON) != "null" {
		if err := json.Unmarshal(resp.Data.JSON, &result.Extracted); err != nil {
			return domain.ScrapeResult{}, fmt.Errorf("scrape %s: decode structured extraction: %w", url, err)
		}
	}

	return result, nil
}

type mapRequest struct {
	URL      string           `json:"url"`
	Limit    int              `json:"limit,omitempty"`
	Search   string           `json:"search,omitempty"`
	Location *locationPayload `json:"location,omitempty"`
}

// mapLink accepts both the object form ({"url": ...}) and a bare string.
type mapLink struct {
	URL string `json:"url"`
}

func (l *mapLink) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		l.URL = s
		return nil
	}
	type plain mapLink
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	*l = mapLink(p)
	return nil
}

type mapResponse struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Links   []mapLink `json:"links"`
}

// Map lists links discovered under url.
func (c *Client) Map(ctx context.Context, url string, opts domain.MapOptions) ([]string, error) {
	payload := mapRequest{
		URL:      url,
		Limit:    opts.Limit,
		Search:   opts.Search,
		Location: toLocation(opts.Location),
	}

	var resp mapResponse
	if err := c.post(ctx, "/v2/map", payload, &resp); err != nil {
		return nil, fmt.Errorf("map %s: %w", url, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("map %s: %s", url, failureReason(resp.Error))
	}

	links := make([]string, 0, len(resp.Links))
	for _, link := range resp.Links {
		links = append(links, link.URL)
	}
	return links, nil
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	TBS   string `json:"tbs,omitempty"`
}

type searchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Web []domain.SearchResult `json:"web"`
	} `json:"data"`
}

// Search runs a web search constrained by opts.
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	payload := searchRequest{Query: query, Limit: opts.Limit, TBS: opts.TBS}

	var resp searchResponse
	if err := c.post(ctx, "/v2/search", payload, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("search %q: %s", query, failureReason(resp.Error))
	}
	return resp.Data.Web, nil
}

func buildFormats(opts domain.ScrapeOptions) []any {
	formats := make([]any, 0, len(opts.Formats))
	for _, f := range opts.Formats {
		if f == "json" {
			formats = append(formats, map[string]any{"type": "json", "schema": opts.Schema})
			continue
		}
		formats = append(formats, f)
	}
	return formats
}

func toLocation(l domain.Locale) *locationPayload {
	if l.Country == "" && len(l.Languages) == 0 {
		return nil
	}
	return &locationPayload{Country: l.Country, Languages: l.Languages}
}

func failureReason(msg string) string {
	if msg == "" {
		return "request was not successful"
	}
	return msg
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	if c.apiKey == "" || c.endpoint == "" {
		return errors.New("firecrawl client misconfigured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	c.debug("firecrawl call", "path", path, "status", resp.StatusCode, "duration_ms", time.Since(started).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.ExternalHTTPError{
			Service:    "firecrawl",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
