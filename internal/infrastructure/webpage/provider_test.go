package webpage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReadLater/internal/domain"
	"ReadLater/internal/extraction"
)

const articleHTML = `<!doctype html>
<html lang="en">
<head>
  <title>Fallback title</title>
  <meta property="og:title" content="Understanding Go Iterators">
  <meta property="og:image" content="/img/cover.png">
  <meta name="author" content="Ada Lovelace">
  <meta property="article:published_time" content="2024-09-12T08:30:00Z">
</head>
<body>
  <nav><a href="/">Home</a> <a href="/blog/">Blog</a> <a href="https://elsewhere.test/x">Elsewhere</a></nav>
  <article>
    <h1>Understanding Go Iterators</h1>
    <p>Range-over-func iterators arrived in Go 1.23 and they change how libraries expose lazy sequences to callers.
    A push iterator is a function that receives a yield callback and calls it once per element until yield returns false.</p>
    <p>Stopping early is cooperative: when the loop body breaks, yield returns false and the producer must return promptly.
    This makes iterators a natural fit for pipelines that stream progress to a consumer.</p>
    <script>alert("x")</script>
    <a href="/blog/iterators-part-2#comments">Part two</a>
    <a href="/blog/iterators-part-2">Part two again</a>
    <a href="mailto:ada@example.test">Mail</a>
  </article>
</body>
</html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/post":
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(articleHTML))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeExtractsMetadataAndMarkdown(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t)
	p := NewProvider(srv.Client(), "test-agent", nil)

	res, err := p.Scrape(context.Background(), srv.URL+"/post", extraction.ArticleOptions())
	require.NoError(t, err)

	assert.Equal(t, "Understanding Go Iterators", res.Metadata.Title)
	assert.Equal(t, srv.URL+"/img/cover.png", res.Metadata.OGImage)
	assert.Equal(t, "en", res.Metadata.Language)
	assert.Equal(t, "Ada Lovelace", res.Extracted.Author)
	assert.Equal(t, "2024-09-12T08:30:00Z", res.Extracted.PublishedAt)
	assert.Contains(t, res.Markdown, "Range-over-func iterators")
	assert.NotContains(t, res.Markdown, "alert(")
}

func TestScrapeFullBody(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t)
	p := NewProvider(srv.Client(), "test-agent", nil)

	opts := extraction.ArticleOptions()
	opts.OnlyMainContent = false
	res, err := p.Scrape(context.Background(), srv.URL+"/post", opts)
	require.NoError(t, err)

	assert.Contains(t, res.Markdown, "Home")
	assert.Contains(t, res.Markdown, "Stopping early is cooperative")
}

func TestScrapeNotFound(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t)
	p := NewProvider(srv.Client(), "test-agent", nil)

	_, err := p.Scrape(context.Background(), srv.URL+"/missing", extraction.ArticleOptions())
	var httpErr *domain.ExternalHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestMapCollectsSameSiteLinks(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t)
	p := NewProvider(srv.Client(), "test-agent", nil)

	links, err := p.Map(context.Background(), srv.URL+"/post", domain.MapOptions{Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/",
		srv.URL + "/blog/",
		srv.URL + "/blog/iterators-part-2",
	}, links)

	filtered, err := p.Map(context.Background(), srv.URL+"/post", domain.MapOptions{Limit: 25, Search: "PART"})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/blog/iterators-part-2"}, filtered)

	limited, err := p.Map(context.Background(), srv.URL+"/post", domain.MapOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSameSite(t *testing.T) {
	t.Parallel()

	assert.True(t, sameSite("www.example.test", "example.test"))
	assert.True(t, sameSite("blog.example.test", "example.test"))
	assert.False(t, sameSite("example.test.evil", "example.test"))
	assert.False(t, sameSite(strings.ToUpper("other.test"), "example.test"))
}
