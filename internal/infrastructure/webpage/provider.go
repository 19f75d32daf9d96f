package webpage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"ReadLater/internal/domain"
	"ReadLater/internal/extraction"
)

const maxPageBytes = 5 << 20

// Provider extracts articles by fetching pages directly instead of calling a crawling API.
type Provider struct {
	client    *http.Client
	userAgent string
	sanitizer *bluemonday.Policy
	converter *md.Converter
	logger    *slog.Logger
}

var _ extraction.Provider = (*Provider)(nil)

// NewProvider wires an HTTP client; a nil client gets a 20s timeout.
func NewProvider(client *http.Client, userAgent string, logger *slog.Logger) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = "ReadLater/1.0"
	}
	return &Provider{
		client:    client,
		userAgent: userAgent,
		sanitizer: bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}
}

// Name identifies the provider inside the extraction registry.
func (p *Provider) Name() string {
	return "local"
}

// Scrape downloads the page, isolates the main content and renders it as markdown.
func (p *Provider) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) (domain.ScrapeResult, error) {
	pageURL, body, status, err := p.fetch(ctx, rawURL)
	if err != nil {
		return domain.ScrapeResult{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("parse document: %w", err)
	}
	meta := readMeta(doc, pageURL)

	contentHTML, err := doc.Find("body").Html()
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("read body: %w", err)
	}

	if opts.OnlyMainContent {
		article, rErr := readability.FromReader(bytes.NewReader(body), pageURL)
		if rErr != nil {
			p.debug("readability failed, using full body", "url", rawURL, "error", rErr)
		} else {
			contentHTML = article.Content
			if meta.title == "" {
				meta.title = strings.TrimSpace(article.Title)
			}
			if meta.author == "" {
				meta.author = strings.TrimSpace(article.Byline)
			}
			if meta.image == "" {
				meta.image = strings.TrimSpace(article.Image)
			}
		}
	}

	markdown, err := p.converter.ConvertString(p.sanitizer.Sanitize(contentHTML))
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("convert markdown: %w", err)
	}

	return domain.ScrapeResult{
		Markdown: strings.TrimSpace(markdown),
		Metadata: domain.PageMetadata{
			Title:       meta.title,
			Description: meta.description,
			OGImage:     meta.image,
			Language:    meta.language,
			SourceURL:   pageURL.String(),
			StatusCode:  status,
		},
		Extracted: domain.ExtractedFields{
			Title:       meta.title,
			Author:      meta.author,
			PublishedAt: meta.publishedAt,
		},
	}, nil
}

// Map collects same-site links from the seed page, filtered by opts.Search.
func (p *Provider) Map(ctx context.Context, rawURL string, opts domain.MapOptions) ([]string, error) {
	pageURL, body, _, err := p.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return collectLinks(doc, pageURL, opts), nil
}

func collectLinks(doc *goquery.Document, base *url.URL, opts domain.MapOptions) []string {
	filter := strings.ToLower(strings.TrimSpace(opts.Search))
	seen := map[string]struct{}{}
	links := make([]string, 0)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return true
		}
		if !sameSite(abs.Hostname(), base.Hostname()) {
			return true
		}
		abs.Fragment = ""
		link := abs.String()

		if filter != "" {
			text := strings.ToLower(a.Text())
			if !strings.Contains(strings.ToLower(link), filter) && !strings.Contains(text, filter) {
				return true
			}
		}

		if _, ok := seen[link]; ok {
			return true
		}
		seen[link] = struct{}{}
		links = append(links, link)

		return opts.Limit <= 0 || len(links) < opts.Limit
	})

	return links
}

func sameSite(host, seed string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	seed = strings.TrimPrefix(strings.ToLower(seed), "www.")
	return host == seed || strings.HasSuffix(host, "."+seed)
}

type pageMeta struct {
	title       string
	description string
	image       string
	author      string
	publishedAt string
	language    string
}

func readMeta(doc *goquery.Document, base *url.URL) pageMeta {
	meta := pageMeta{
		title: firstNonEmpty(
			metaContent(doc, `meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		description: firstNonEmpty(
			metaContent(doc, `meta[property="og:description"]`),
			metaContent(doc, `meta[name="description"]`),
		),
		image: metaContent(doc, `meta[property="og:image"]`),
		author: firstNonEmpty(
			metaContent(doc, `meta[name="author"]`),
			metaContent(doc, `meta[property="article:author"]`),
		),
		publishedAt: firstNonEmpty(
			metaContent(doc, `meta[property="article:published_time"]`),
			metaContent(doc, `meta[name="date"]`),
			attr(doc, "time[datetime]", "datetime"),
		),
		language: attr(doc, "html", "lang"),
	}

	if meta.image != "" {
		if ref, err := url.Parse(meta.image); err == nil {
			meta.image = base.ResolveReference(ref).String()
		}
	}
	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	return attr(doc, selector, "content")
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (p *Provider) fetch(ctx context.Context, rawURL string) (*url.URL, []byte, int, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, resp.StatusCode, &domain.ExternalHTTPError{Service: pageURL.Host, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, nil, resp.StatusCode, fmt.Errorf("read document: %w", err)
	}

	// Redirects change the base for relative links.
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}
	return pageURL, body, resp.StatusCode, nil
}

func (p *Provider) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
