package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ReadLater/internal/domain"
	"ReadLater/internal/metrics"
	"ReadLater/internal/ports"
)

const (
	defaultMapLimit    = 25
	defaultSearchLimit = 15
	defaultSearchTBS   = "qdr:y"
)

// DiscoveryDeps wires the read-only discovery collaborators.
type DiscoveryDeps struct {
	Mapper      ports.SiteMapper
	Searcher    ports.WebSearcher
	Cache       ports.DiscoveryCache
	MapLimit    int
	SearchLimit int
	SearchTBS   string
	Logger      *slog.Logger
}

// Discovery finds candidate URLs for import. It never writes to the item store
// and never retries; upstream failures are returned to the caller.
type Discovery struct {
	mapper      ports.SiteMapper
	searcher    ports.WebSearcher
	cache       ports.DiscoveryCache
	mapLimit    int
	searchLimit int
	searchTBS   string
	logger      *slog.Logger
}

// NewDiscovery constructs the discovery use case with limit defaults.
func NewDiscovery(deps DiscoveryDeps) *Discovery {
	d := &Discovery{
		mapper:      deps.Mapper,
		searcher:    deps.Searcher,
		cache:       deps.Cache,
		mapLimit:    deps.MapLimit,
		searchLimit: deps.SearchLimit,
		searchTBS:   deps.SearchTBS,
		logger:      deps.Logger,
	}
	if d.mapLimit <= 0 {
		d.mapLimit = defaultMapLimit
	}
	if d.searchLimit <= 0 {
		d.searchLimit = defaultSearchLimit
	}
	if d.searchTBS == "" {
		d.searchTBS = defaultSearchTBS
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// MapSite lists deduplicated links under seedURL matching filter.
func (d *Discovery) MapSite(ctx context.Context, seedURL, filter string) ([]string, error) {
	seed, err := NormalizeURL(seedURL)
	if err != nil {
		return nil, err
	}
	if d.mapper == nil {
		return nil, errors.New("site mapper is not configured")
	}
	filter = strings.TrimSpace(filter)

	key := "map:" + seed + "|" + strings.ToLower(filter)
	if d.cache != nil {
		links, ok, err := d.cache.GetLinks(ctx, key)
		if err != nil {
			d.logger.Warn("discovery cache read failed", "key", key, "error", err)
		} else if ok {
			metrics.RecordDiscovery("map", "cached")
			return links, nil
		}
	}

	raw, err := d.mapper.Map(ctx, seed, domain.MapOptions{
		Limit:    d.mapLimit,
		Search:   filter,
		Location: domain.DefaultLocale,
	})
	if err != nil {
		metrics.RecordDiscovery("map", "error")
		return nil, fmt.Errorf("map site %s: %w", seed, err)
	}

	links := dedupeLinks(raw, d.mapLimit)
	metrics.RecordDiscovery("map", "ok")

	if d.cache != nil {
		if err := d.cache.SetLinks(ctx, key, links); err != nil {
			d.logger.Warn("discovery cache write failed", "key", key, "error", err)
		}
	}
	return links, nil
}

// SearchWeb returns recent web results for query. Results without a URL are dropped.
func (d *Discovery) SearchWeb(ctx context.Context, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Field: "query", Value: query, Reason: "must not be empty"}
	}
	if d.searcher == nil {
		return nil, errors.New("web searcher is not configured")
	}

	key := "search:" + d.searchTBS + "|" + strings.ToLower(query)
	if d.cache != nil {
		results, ok, err := d.cache.GetResults(ctx, key)
		if err != nil {
			d.logger.Warn("discovery cache read failed", "key", key, "error", err)
		} else if ok {
			metrics.RecordDiscovery("search", "cached")
			return results, nil
		}
	}

	raw, err := d.searcher.Search(ctx, query, domain.SearchOptions{Limit: d.searchLimit, TBS: d.searchTBS})
	if err != nil {
		metrics.RecordDiscovery("search", "error")
		return nil, fmt.Errorf("search web: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		results = append(results, r)
		if len(results) == d.searchLimit {
			break
		}
	}
	metrics.RecordDiscovery("search", "ok")

	if d.cache != nil {
		if err := d.cache.SetResults(ctx, key, results); err != nil {
			d.logger.Warn("discovery cache write failed", "key", key, "error", err)
		}
	}
	return results, nil
}

func dedupeLinks(raw []string, limit int) []string {
	seen := make(map[string]struct{}, len(raw))
	links := make([]string, 0, len(raw))
	for _, link := range raw {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
		if limit > 0 && len(links) == limit {
			break
		}
	}
	return links
}
