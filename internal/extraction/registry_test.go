package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReadLater/internal/domain"
)

type namedProvider struct{ name string }

func (p namedProvider) Name() string { return p.name }

func (namedProvider) Scrape(context.Context, string, domain.ScrapeOptions) (domain.ScrapeResult, error) {
	return domain.ScrapeResult{}, nil
}

func (namedProvider) Map(context.Context, string, domain.MapOptions) ([]string, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedProvider{name: "local"})
	reg.Register(namedProvider{name: "firecrawl"})

	p, err := reg.Resolve("local")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())
	assert.Equal(t, []string{"firecrawl", "local"}, reg.Names())

	_, err = reg.Resolve("jina")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jina")
}

func TestArticleOptions(t *testing.T) {
	t.Parallel()

	opts := ArticleOptions()
	assert.True(t, opts.OnlyMainContent)
	assert.Equal(t, "auto", opts.Proxy)
	assert.Equal(t, []string{"markdown", "json"}, opts.Formats)
	assert.Equal(t, "US", opts.Location.Country)
	assert.Equal(t, []string{"en"}, opts.Location.Languages)
	assert.Contains(t, opts.Schema["properties"], "publishedAt")
}
