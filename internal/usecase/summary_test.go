package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReadLater/internal/domain"
)

func TestParseTags(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "capped at five",
			in:   "Technology, Programming, Web Dev, JavaScript, CSS, HTML",
			want: []string{"technology", "programming", "web dev", "javascript", "css"},
		},
		{name: "empty", in: "", want: []string{}},
		{name: "blanks dropped", in: " , go,, ,rust ", want: []string{"go", "rust"}},
		{name: "case-insensitive repeats", in: "Go, go, GO, Rust", want: []string{"go", "rust"}},
		{name: "multiline answer", in: "ai,\nmachine learning\n", want: []string{"ai", "machine learning"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseTags(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, ParseTags(strings.Join(got, ", ")), "parse must be idempotent")
		})
	}
}

func seedCompleted(t *testing.T, store *memStore, userID, content string) domain.SavedItem {
	t.Helper()
	item, err := store.Create(context.Background(), userID, "https://a.test", domain.StatusProcessing)
	require.NoError(t, err)
	item, err = store.Update(context.Background(), item.ID, userID,
		domain.CompletionUpdate(nil, &content, nil, nil, nil))
	require.NoError(t, err)
	return item
}

func TestSaveSummaryStoresSummaryAndTags(t *testing.T) {
	store := newMemStore()
	item := seedCompleted(t, store, "u", "body")
	summarizer := &fakeSummarizer{text: "Go, Concurrency, go"}

	saved, err := NewSummaries(store, summarizer, nil).SaveSummary(context.Background(), "u", item.ID, "Goroutines are cheap.")
	require.NoError(t, err)

	assert.Equal(t, "Goroutines are cheap.", deref(saved.Summary))
	assert.Equal(t, []string{"go", "concurrency"}, saved.Tags)
	assert.Equal(t, domain.StatusCompleted, saved.Status)
	assert.Equal(t, tagSystemPrompt, summarizer.systemSeen)
	assert.Equal(t, "Extract tags from this summary: \n\nGoroutines are cheap.", summarizer.promptSeen)
}

func TestSaveSummaryMissingItemWritesNothing(t *testing.T) {
	store := newMemStore()
	summarizer := &fakeSummarizer{text: "go"}

	_, err := NewSummaries(store, summarizer, nil).SaveSummary(context.Background(), "u", "nope", "text")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Zero(t, store.writes)
	assert.Empty(t, summarizer.promptSeen)
}

func TestSaveSummaryOtherUsersItemIsNotFound(t *testing.T) {
	store := newMemStore()
	item := seedCompleted(t, store, "owner", "body")
	writes := store.writes

	_, err := NewSummaries(store, &fakeSummarizer{text: "go"}, nil).SaveSummary(context.Background(), "intruder", item.ID, "text")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Equal(t, writes, store.writes)
}

func TestSaveSummaryTagFailureWritesNothing(t *testing.T) {
	store := newMemStore()
	item := seedCompleted(t, store, "u", "body")
	writes := store.writes

	_, err := NewSummaries(store, &fakeSummarizer{err: errors.New("rate limited")}, nil).
		SaveSummary(context.Background(), "u", item.ID, "text")
	require.Error(t, err)
	assert.Equal(t, writes, store.writes)

	found, err := store.FindOne(context.Background(), item.ID, "u")
	require.NoError(t, err)
	assert.Nil(t, found.Summary)
}

func TestSaveSummaryRejectsEmpty(t *testing.T) {
	_, err := NewSummaries(newMemStore(), &fakeSummarizer{}, nil).SaveSummary(context.Background(), "u", "id", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStreamSummaryYieldsChunks(t *testing.T) {
	store := newMemStore()
	item := seedCompleted(t, store, "u", "long article")
	summarizer := &fakeSummarizer{chunks: []string{"Short ", "summary."}}

	seq, err := NewSummaries(store, summarizer, nil).StreamSummary(context.Background(), "u", item.ID)
	require.NoError(t, err)

	var b strings.Builder
	for chunk, err := range seq {
		require.NoError(t, err)
		b.WriteString(chunk)
	}
	assert.Equal(t, "Short summary.", b.String())
	assert.Equal(t, "long article", summarizer.contentSeen)
}

func TestStreamSummaryRequiresContent(t *testing.T) {
	store := newMemStore()
	item, err := store.Create(context.Background(), "u", "https://a.test", domain.StatusPending)
	require.NoError(t, err)

	_, err = NewSummaries(store, &fakeSummarizer{}, nil).StreamSummary(context.Background(), "u", item.ID)
	assert.ErrorIs(t, err, domain.ErrNoItemContent)
}
