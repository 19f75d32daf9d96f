package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"ReadLater/internal/domain"
)

type memStore struct {
	mu      sync.Mutex
	seq     int
	items   map[string]domain.SavedItem
	order   []string
	writes  int
	failOn  map[string]error // url -> error returned by Create
	updates []domain.ItemUpdate
	initial []domain.Status
}

func newMemStore() *memStore {
	return &memStore{items: map[string]domain.SavedItem{}, failOn: map[string]error{}}
}

func (s *memStore) Create(_ context.Context, userID, url string, status domain.Status) (domain.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[url]; err != nil {
		return domain.SavedItem{}, err
	}
	s.seq++
	s.writes++
	s.initial = append(s.initial, status)
	item := domain.SavedItem{
		ID:        fmt.Sprintf("item-%d", s.seq),
		UserID:    userID,
		URL:       url,
		Status:    status,
		Tags:      []string{},
		CreatedAt: time.Unix(int64(s.seq), 0).UTC(),
	}
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item, nil
}

func (s *memStore) Update(_ context.Context, id, userID string, upd domain.ItemUpdate) (domain.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return domain.SavedItem{}, domain.ErrItemNotFound
	}
	if upd.Status != nil && item.Status.IsTerminal() {
		return item, errors.New("item status is terminal")
	}
	s.writes++
	s.updates = append(s.updates, upd)
	if upd.Status != nil {
		item.Status = *upd.Status
	}
	if upd.ClearExtracted {
		item.Title, item.Content, item.OGImage, item.Author, item.PublishedAt = nil, nil, nil, nil, nil
	} else {
		if upd.Title != nil {
			item.Title = upd.Title
		}
		if upd.Content != nil {
			item.Content = upd.Content
		}
		if upd.OGImage != nil {
			item.OGImage = upd.OGImage
		}
		if upd.Author != nil {
			item.Author = upd.Author
		}
		if upd.PublishedAt != nil {
			item.PublishedAt = upd.PublishedAt
		}
	}
	if upd.Summary != nil {
		item.Summary = upd.Summary
	}
	if upd.SetTags {
		item.Tags = upd.Tags
	}
	s.items[id] = item
	return item, nil
}

func (s *memStore) FindMany(_ context.Context, userID string) ([]domain.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SavedItem{}
	for i := len(s.order) - 1; i >= 0; i-- {
		if item := s.items[s.order[i]]; item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memStore) FindOne(_ context.Context, id, userID string) (domain.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return domain.SavedItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *memStore) byURL(url string) domain.SavedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if s.items[id].URL == url {
			return s.items[id]
		}
	}
	return domain.SavedItem{}
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]domain.ScrapeResult
	errs    map[string]error
	calls   []string
	opts    []domain.ScrapeOptions
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{results: map[string]domain.ScrapeResult{}, errs: map[string]error{}}
}

func (f *fakeExtractor) Scrape(_ context.Context, url string, opts domain.ScrapeOptions) (domain.ScrapeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.opts = append(f.opts, opts)
	if err := f.errs[url]; err != nil {
		return domain.ScrapeResult{}, err
	}
	if res, ok := f.results[url]; ok {
		return res, nil
	}
	return domain.ScrapeResult{Markdown: "body of " + url, Metadata: domain.PageMetadata{Title: "Title of " + url}}, nil
}

type fakeMapper struct {
	links []string
	err   error
	calls int
	opts  domain.MapOptions
}

func (f *fakeMapper) Map(_ context.Context, _ string, opts domain.MapOptions) ([]string, error) {
	f.calls++
	f.opts = opts
	return f.links, f.err
}

type fakeSearcher struct {
	results []domain.SearchResult
	err     error
	calls   int
	opts    domain.SearchOptions
}

func (f *fakeSearcher) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	f.calls++
	f.opts = opts
	return f.results, f.err
}

type fakeSummarizer struct {
	chunks      []string
	text        string
	err         error
	systemSeen  string
	promptSeen  string
	contentSeen string
}

func (f *fakeSummarizer) StreamSummary(_ context.Context, content string) iter.Seq2[string, error] {
	f.contentSeen = content
	return func(yield func(string, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (f *fakeSummarizer) GenerateText(_ context.Context, system, prompt string) (string, error) {
	f.systemSeen, f.promptSeen = system, prompt
	return f.text, f.err
}

type memCache struct {
	links   map[string][]string
	results map[string][]domain.SearchResult
}

func newMemCache() *memCache {
	return &memCache{links: map[string][]string{}, results: map[string][]domain.SearchResult{}}
}

func (c *memCache) GetLinks(_ context.Context, key string) ([]string, bool, error) {
	v, ok := c.links[key]
	return v, ok, nil
}

func (c *memCache) SetLinks(_ context.Context, key string, links []string) error {
	c.links[key] = links
	return nil
}

func (c *memCache) GetResults(_ context.Context, key string) ([]domain.SearchResult, bool, error) {
	v, ok := c.results[key]
	return v, ok, nil
}

func (c *memCache) SetResults(_ context.Context, key string, results []domain.SearchResult) error {
	c.results[key] = results
	return nil
}

type fakeSweeper struct {
	cutoff time.Time
	n      int64
	err    error
}

func (f *fakeSweeper) FailStale(_ context.Context, olderThan time.Time) (int64, error) {
	f.cutoff = olderThan
	return f.n, f.err
}
